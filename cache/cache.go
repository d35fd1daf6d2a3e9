package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/IvanBrykalov/ttlcache/cleaner"
	"github.com/IvanBrykalov/ttlcache/clock"
	"github.com/IvanBrykalov/ttlcache/eviction"
	"github.com/IvanBrykalov/ttlcache/logging"
	"github.com/IvanBrykalov/ttlcache/metrics"
	"github.com/IvanBrykalov/ttlcache/policy"
	"github.com/IvanBrykalov/ttlcache/store"
	"github.com/IvanBrykalov/ttlcache/ttl"
	"github.com/IvanBrykalov/ttlcache/validate"
)

// ErrClosed is returned by mutating calls after Close.
var ErrClosed = errors.New("cache: closed")

// cache is the Cache implementation.
type cache[V any] struct {
	store   *store.Store[*ttl.Entry[V]]
	ttl     *ttl.Manager[V]
	cleaner *cleaner.Cleaner[*ttl.Entry[V]]

	stats   *metrics.Counter
	metrics metrics.Metrics // stats + Options.Metrics
	clk     clock.Clock
	log     logging.Logger
	opt     Options[V]
	closed  atomic.Bool
}

// New validates opt, builds the cache and starts its cleaner.
func New[V any](opt Options[V]) (Cache[V], error) {
	if err := normalize(&opt); err != nil {
		return nil, err
	}

	clk := clock.OrSystem(opt.Clock)
	stats := metrics.NewCounter(clk)
	m := metrics.Multi(stats, opt.Metrics)
	log := newLogger(opt)

	sopts := []store.Option[*ttl.Entry[V]]{
		store.WithClock[*ttl.Entry[V]](clk),
		store.WithLogger[*ttl.Entry[V]](log.With("Store")),
		store.WithMetrics[*ttl.Entry[V]](m),
		store.WithKeyPattern[*ttl.Entry[V]](opt.KeyPattern),
	}
	if opt.Hooks != nil {
		sopts = append(sopts, store.WithHooks[*ttl.Entry[V]](unwrapHooks[V]{opt.Hooks}))
	}
	if opt.MaxSize > 0 {
		p, err := eviction.New(opt.MaxSize, opt.EvictionPolicy, eviction.WithRand(opt.Rand))
		if err != nil {
			return nil, err
		}
		sopts = append(sopts, store.WithEviction[*ttl.Entry[V]](p))
	}
	st, err := store.New(sopts...)
	if err != nil {
		return nil, err
	}

	c := &cache[V]{
		store:   st,
		ttl:     ttl.NewManager[V](st, ttl.WithClock(clk), ttl.WithMetrics(m), ttl.WithLogger(log.With("TTLManager"))),
		cleaner: cleaner.New[*ttl.Entry[V]](st, cleaner.WithLogger(log.With("Cleaner")), cleaner.WithMetrics(m)),
		stats:   stats,
		metrics: m,
		clk:     clk,
		log:     log.With("Cache"),
		opt:     opt,
	}
	if err := c.cleaner.Start(opt.CleanInterval); err != nil {
		return nil, err
	}
	return c, nil
}

// ---- Cache[V] implementation ----

func (c *cache[V]) Set(key string, v V) error {
	return c.SetWithTTL(key, v, c.opt.DefaultTTL)
}

func (c *cache[V]) SetWithTTL(key string, v V, d time.Duration) error {
	if c.closed.Load() {
		return ErrClosed
	}
	e, err := ttl.NewEntry(v, d, c.clk)
	if err != nil {
		return err
	}
	return c.store.Set(key, e)
}

// Add inserts only if key is absent. A present but expired entry is dropped
// first and the insert retried once.
func (c *cache[V]) Add(key string, v V) (bool, error) {
	if c.closed.Load() {
		return false, ErrClosed
	}
	e, err := ttl.NewEntry(v, c.opt.DefaultTTL, c.clk)
	if err != nil {
		return false, err
	}
	ok, err := c.store.Add(key, e)
	if ok || err != nil {
		return ok, err
	}
	if c.dropExpired(key) {
		return c.store.Add(key, e)
	}
	return false, nil
}

func (c *cache[V]) Get(key string) (V, bool) {
	var zero V
	if c.closed.Load() {
		return zero, false
	}
	e, ok := c.store.Get(key)
	if !ok {
		c.metrics.Miss()
		return zero, false
	}
	if e.IsExpired() {
		c.dropExpired(key)
		c.metrics.Miss()
		return zero, false
	}
	e.Touch()
	c.metrics.Hit()
	return e.Value, true
}

func (c *cache[V]) Has(key string) bool {
	e, ok := c.store.Peek(key)
	return ok && !e.IsExpired()
}

func (c *cache[V]) GetOrFetch(ctx context.Context, key string, d time.Duration, fetch ttl.FetchFunc[V]) (V, error) {
	if c.closed.Load() {
		var zero V
		return zero, ErrClosed
	}
	return c.ttl.GetOrFetch(ctx, key, d, fetch)
}

func (c *cache[V]) Delete(key string) bool {
	if c.closed.Load() {
		return false
	}
	return c.store.Delete(key)
}

func (c *cache[V]) Clear() {
	if c.closed.Load() {
		return
	}
	c.store.Clear()
}

func (c *cache[V]) Len() int { return c.store.Len() }

func (c *cache[V]) Keys() []string { return c.store.Keys() }

func (c *cache[V]) StopCleaner() { c.cleaner.Stop() }

func (c *cache[V]) StartCleaner() error {
	if c.closed.Load() {
		return ErrClosed
	}
	return c.cleaner.Start(c.opt.CleanInterval)
}

func (c *cache[V]) MarshalJSON() ([]byte, error) { return c.store.MarshalJSON() }

// RestoreJSON rebinds every restored entry to the cache clock.
func (c *cache[V]) RestoreJSON(data []byte) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if err := c.store.RestoreJSONFunc(data, notNull[V]); err != nil {
		return err
	}
	c.store.ForEach(func(_ string, e *ttl.Entry[V]) { e.Rebind(c.clk) })
	c.log.Info("restored", "entries", c.store.Len())
	return nil
}

// errNullEntry rejects a snapshot member holding JSON null instead of an entry.
var errNullEntry = errors.New("entry is null")

func notNull[V any](_ string, e *ttl.Entry[V]) error {
	if e == nil {
		return errNullEntry
	}
	return nil
}

func (c *cache[V]) Stats() metrics.Snapshot { return c.stats.Snapshot() }

// Close stops the cleaner and marks the cache closed. Repeated calls return nil.
func (c *cache[V]) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	c.cleaner.Stop()
	c.log.Info("closed")
	return nil
}

// ---- helpers ----

func (c *cache[V]) dropExpired(key string) bool {
	if c.store.DeleteFunc(key, func(e *ttl.Entry[V]) bool { return e.IsExpired() }) {
		c.metrics.Evict(metrics.EvictTTL)
		return true
	}
	return false
}

// normalize applies defaults and rejects inconsistent options.
func normalize[V any](opt *Options[V]) error {
	if opt.CleanInterval < 0 {
		return fmt.Errorf("%w: clean interval must be positive, got %s", validate.ErrInvalidConfig, opt.CleanInterval)
	}
	if opt.DefaultTTL < 0 {
		return fmt.Errorf("%w: default ttl must be positive, got %s", validate.ErrInvalidConfig, opt.DefaultTTL)
	}
	if opt.CleanInterval == 0 {
		opt.CleanInterval = DefaultCleanInterval
	}
	if opt.DefaultTTL == 0 {
		opt.DefaultTTL = DefaultTTL
	}

	if opt.MaxSize < 0 {
		return fmt.Errorf("%w: maxSize must be positive, got %d", validate.ErrInvalidConfig, opt.MaxSize)
	}
	if (opt.MaxSize > 0) != (opt.EvictionPolicy != "") {
		return fmt.Errorf("%w: maxSize and evictionPolicy must be set together", validate.ErrInvalidConfig)
	}
	if opt.EvictionPolicy != "" {
		name, err := policy.ParseName(string(opt.EvictionPolicy))
		if err != nil {
			return err
		}
		opt.EvictionPolicy = name
	}
	return nil
}

func newLogger[V any](opt Options[V]) logging.Logger {
	if !opt.UseLogger {
		return logging.Nop()
	}
	if opt.Logger != nil {
		return opt.Logger
	}
	l, err := logging.New(logging.Options{Enabled: true, Prefix: "Cache"})
	if err != nil {
		return logging.Nop()
	}
	return l
}

// unwrapHooks forwards store notifications with the entry payload.
type unwrapHooks[V any] struct{ h store.Hooks[V] }

func (u unwrapHooks[V]) OnSet(key string, e *ttl.Entry[V]) { u.h.OnSet(key, e.Value) }
func (u unwrapHooks[V]) OnDelete(key string)               { u.h.OnDelete(key) }
func (u unwrapHooks[V]) OnClear()                          { u.h.OnClear() }

var _ Cache[int] = (*cache[int])(nil)
