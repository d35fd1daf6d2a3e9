// Package fifo implements the FIFO eviction strategy.
package fifo

import "github.com/IvanBrykalov/ttlcache/policy"

type fifo struct{}

// New returns the First-In-First-Out strategy.
func New() policy.Strategy { return fifo{} }

// UsesMetadata implements policy.MetadataUser. FIFO only needs key order.
func (fifo) UsesMetadata() bool { return false }

// Evict returns the first key: the oldest insertion still present.
func (fifo) Evict(keys []string, _ policy.Metadata) (string, error) {
	if len(keys) == 0 {
		return "", policy.ErrEmptyKeys
	}
	return keys[0], nil
}
