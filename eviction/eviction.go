// Package eviction binds a capacity limit to a named strategy.
package eviction

import (
	"fmt"

	"github.com/IvanBrykalov/ttlcache/policy"
	"github.com/IvanBrykalov/ttlcache/policy/fifo"
	"github.com/IvanBrykalov/ttlcache/policy/lfu"
	"github.com/IvanBrykalov/ttlcache/policy/lru"
	"github.com/IvanBrykalov/ttlcache/policy/mru"
	"github.com/IvanBrykalov/ttlcache/policy/random"
	"github.com/IvanBrykalov/ttlcache/validate"
)

// Policy decides whether a store is full and which key leaves it.
// A Policy is immutable after New and safe for concurrent use as long as the
// injected Rand is (the store only calls it under its own lock).
type Policy struct {
	maxSize  int
	name     policy.Name
	strategy policy.Strategy
}

// Option configures New.
type Option func(*config)

type config struct {
	rnd policy.Rand
}

// WithRand sets the randomness source used by the RANDOM strategy.
func WithRand(r policy.Rand) Option {
	return func(c *config) { c.rnd = r }
}

// New validates maxSize and name and instantiates the strategy.
func New(maxSize int, name policy.Name, opts ...Option) (*Policy, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("%w: maxSize must be positive, got %d", validate.ErrInvalidConfig, maxSize)
	}
	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	var s policy.Strategy
	switch name {
	case policy.FIFO:
		s = fifo.New()
	case policy.LRU:
		s = lru.New()
	case policy.LFU:
		s = lfu.New()
	case policy.MRU:
		s = mru.New()
	case policy.RANDOM:
		s = random.New(cfg.rnd)
	default:
		return nil, fmt.Errorf("%w: unsupported eviction policy %q", validate.ErrInvalidConfig, name)
	}
	return &Policy{maxSize: maxSize, name: name, strategy: s}, nil
}

// MaxSize returns the configured capacity.
func (p *Policy) MaxSize() int { return p.maxSize }

// Name returns the active strategy name.
func (p *Policy) Name() policy.Name { return p.name }

// ShouldEvict reports whether a store holding currentSize keys must make room
// before admitting another one.
func (p *Policy) ShouldEvict(currentSize int) (bool, error) {
	if currentSize < 0 {
		return false, fmt.Errorf("%w: size must be non-negative, got %d", validate.ErrInvalidArgument, currentSize)
	}
	return currentSize >= p.maxSize, nil
}

// Evict returns the key the strategy selects from keys.
func (p *Policy) Evict(keys []string, meta policy.Metadata) (string, error) {
	return p.strategy.Evict(keys, meta)
}

// NeedsMetadata reports whether Evict reads meta; callers may pass nil otherwise.
func (p *Policy) NeedsMetadata() bool {
	if mu, ok := p.strategy.(policy.MetadataUser); ok {
		return mu.UsesMetadata()
	}
	return true
}
