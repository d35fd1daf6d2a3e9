// Package random implements the RANDOM eviction strategy.
package random

import (
	"math/rand/v2"

	"github.com/IvanBrykalov/ttlcache/policy"
)

// globalRand adapts the goroutine-safe top-level math/rand/v2 functions.
type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

type random struct{ r policy.Rand }

// New returns the RANDOM strategy drawing from r.
// A nil r uses the process-wide math/rand/v2 source.
//
// Concurrency: the store calls Evict under its lock, so r need not be
// goroutine-safe unless it is shared with other users.
func New(r policy.Rand) policy.Strategy {
	if r == nil {
		r = globalRand{}
	}
	return &random{r: r}
}

// UsesMetadata implements policy.MetadataUser.
func (*random) UsesMetadata() bool { return false }

// Evict returns keys[r.IntN(len(keys))].
func (s *random) Evict(keys []string, _ policy.Metadata) (string, error) {
	if len(keys) == 0 {
		return "", policy.ErrEmptyKeys
	}
	return keys[s.r.IntN(len(keys))], nil
}
