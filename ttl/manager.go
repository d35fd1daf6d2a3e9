package ttl

import (
	"context"
	"fmt"
	"time"

	"github.com/IvanBrykalov/ttlcache/clock"
	"github.com/IvanBrykalov/ttlcache/logging"
	"github.com/IvanBrykalov/ttlcache/metrics"
	"github.com/IvanBrykalov/ttlcache/validate"
)

// Store is the minimal key/entry map the Manager reads and writes.
// *store.Store[*Entry[V]] satisfies it.
type Store[V any] interface {
	Get(key string) (*Entry[V], bool)
	Set(key string, e *Entry[V]) error
}

// FetchFunc produces a fresh value on a miss.
type FetchFunc[V any] func(ctx context.Context) (V, error)

// Option configures a Manager.
type Option func(*config)

type config struct {
	clk     clock.Clock
	log     logging.Logger
	metrics metrics.Metrics
}

// WithClock sets the clock new entries are bound to.
func WithClock(c clock.Clock) Option { return func(cfg *config) { cfg.clk = c } }

// WithLogger routes hit/miss lines to l.
func WithLogger(l logging.Logger) Option { return func(cfg *config) { cfg.log = l } }

// WithMetrics reports hits and misses to m.
func WithMetrics(m metrics.Metrics) Option { return func(cfg *config) { cfg.metrics = m } }

// Manager implements get-or-fetch over a Store.
//
// Concurrent misses for one key are not coalesced: each caller runs its own
// fetch and the last Set wins. Wrap the fetch with flight.Group when that matters.
type Manager[V any] struct {
	store   Store[V]
	clk     clock.Clock
	log     logging.Logger
	metrics metrics.Metrics
}

// NewManager returns a Manager over s.
func NewManager[V any](s Store[V], opts ...Option) *Manager[V] {
	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Manager[V]{
		store:   s,
		clk:     clock.OrSystem(cfg.clk),
		log:     logging.OrNop(cfg.log),
		metrics: metrics.OrNoop(cfg.metrics),
	}
}

// GetOrFetch returns the live value for key, or fetches, stores and returns a
// new one that lives for ttl.
//
// ttl is validated before anything else, so a bad ttl never runs fetch.
// fetch runs without any store lock held. A fetch error is returned as is
// and nothing is written.
func (m *Manager[V]) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc[V]) (V, error) {
	var zero V
	if ttl <= 0 {
		return zero, fmt.Errorf("%w, got %s", ErrInvalidTTL, ttl)
	}
	if fetch == nil {
		return zero, fmt.Errorf("%w: fetch must not be nil", validate.ErrInvalidArgument)
	}

	if e, ok := m.store.Get(key); ok && !m.IsExpired(e) {
		e.Touch()
		m.metrics.Hit()
		m.log.Log("hit", "key", key)
		return e.Value, nil
	}
	m.metrics.Miss()
	m.log.Log("miss", "key", key)

	v, err := fetch(ctx)
	if err != nil {
		return zero, err
	}
	e, err := m.CreateEntry(v, ttl)
	if err != nil {
		return zero, err
	}
	if err := m.store.Set(key, e); err != nil {
		return zero, err
	}
	return v, nil
}

// CreateEntry wraps v with the Manager's clock.
func (m *Manager[V]) CreateEntry(v V, ttl time.Duration) (*Entry[V], error) {
	return NewEntry(v, ttl, m.clk)
}

// IsExpired treats a nil entry as expired.
func (m *Manager[V]) IsExpired(e *Entry[V]) bool {
	return e == nil || e.IsExpired()
}
