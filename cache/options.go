package cache

import (
	"regexp"
	"time"

	"github.com/IvanBrykalov/ttlcache/clock"
	"github.com/IvanBrykalov/ttlcache/logging"
	"github.com/IvanBrykalov/ttlcache/metrics"
	"github.com/IvanBrykalov/ttlcache/policy"
	"github.com/IvanBrykalov/ttlcache/store"
)

// Defaults applied by New.
const (
	DefaultCleanInterval = 60 * time.Second
	DefaultTTL           = 60 * time.Second
)

// Options configures the cache behavior. Zero values are safe;
// sane defaults are applied in New():
//   - CleanInterval 0 => DefaultCleanInterval
//   - DefaultTTL 0    => DefaultTTL
//   - nil Metrics     => only the built-in counter
//   - nil Clock       => system clock
type Options[V any] struct {
	// UseLogger enables activity logging. Logger is used when set, otherwise a
	// text logger on stderr. With UseLogger false nothing is logged.
	UseLogger bool
	Logger    logging.Logger

	// CleanInterval is the period of the background expiry sweep.
	CleanInterval time.Duration

	// MaxSize and EvictionPolicy bound the cache. Set both or neither.
	MaxSize        int
	EvictionPolicy policy.Name

	// DefaultTTL applies to Set and Add.
	DefaultTTL time.Duration

	// Rand drives the RANDOM strategy; nil uses math/rand/v2.
	Rand policy.Rand

	// KeyPattern, when set, is required of every written key.
	KeyPattern *regexp.Regexp

	// Hooks observes mutations with the unwrapped value.
	// Evicted and swept keys are reported through OnDelete. Swept keys are
	// reported from the cleaner goroutine, so hooks must not call
	// StopCleaner or Close.
	Hooks store.Hooks[V]

	// Metrics receives Hit/Miss/Evict/Size signals in addition to the
	// built-in counter behind Stats.
	Metrics metrics.Metrics

	// Clock allows overriding time source (tests). Nil => system clock.
	Clock clock.Clock
}
