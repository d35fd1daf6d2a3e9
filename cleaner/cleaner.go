// Package cleaner periodically removes expired entries from a store.
//
// A Cleaner is either Stopped or Running. Start on a running Cleaner keeps
// the original schedule; Stop on a stopped one does nothing. Stop lets a sweep
// already in progress finish before it returns.
package cleaner

import (
	"context"
	"fmt"
	"iter"
	"sync"
	"time"

	"github.com/IvanBrykalov/ttlcache/logging"
	"github.com/IvanBrykalov/ttlcache/metrics"
	"github.com/IvanBrykalov/ttlcache/validate"
)

// ErrInvalidInterval is returned by Start for a non-positive interval.
var ErrInvalidInterval = fmt.Errorf("%w: clean interval must be positive", validate.ErrInvalidArgument)

// Source is what a Cleaner scans and deletes from.
type Source[V any] interface {
	Entries() iter.Seq2[string, V]
	Delete(key string) bool
}

// conditionalDeleter lets the expiry check run again under the source's own
// lock, so an entry replaced between scan and delete survives.
type conditionalDeleter[V any] interface {
	DeleteFunc(key string, fn func(V) bool) bool
}

// expirer is implemented by values that can expire. Other values are left alone.
type expirer interface{ IsExpired() bool }

// Option configures a Cleaner.
type Option func(*config)

type config struct {
	log     logging.Logger
	metrics metrics.Metrics
}

// WithLogger routes sweep summaries to l.
func WithLogger(l logging.Logger) Option { return func(c *config) { c.log = l } }

// WithMetrics reports each removal as an EvictTTL eviction.
func WithMetrics(m metrics.Metrics) Option { return func(c *config) { c.metrics = m } }

// Cleaner owns at most one background sweep goroutine.
type Cleaner[V any] struct {
	src     Source[V]
	cond    conditionalDeleter[V]
	log     logging.Logger
	metrics metrics.Metrics

	// ---- guarded by mu ----
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{} // closed when the latest loop goroutine exits
}

// New returns a stopped Cleaner over src.
func New[V any](src Source[V], opts ...Option) *Cleaner[V] {
	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	c := &Cleaner[V]{
		src:     src,
		log:     logging.OrNop(cfg.log),
		metrics: metrics.OrNoop(cfg.metrics),
	}
	c.cond, _ = src.(conditionalDeleter[V])
	return c
}

// Start begins sweeping every interval. It is a no-op while running.
func (c *Cleaner[V]) Start(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("%w, got %s", ErrInvalidInterval, interval)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.cancel, c.done = cancel, done
	go c.loop(ctx, interval, done)
	c.log.Info("cleaner started", "interval", interval)
	return nil
}

// Stop halts sweeping and waits for an in-flight sweep. Safe to call repeatedly.
//
// The wait happens without holding the Cleaner's lock, so Running and Start
// stay responsive meanwhile. Stop must not be called from the sweep itself
// (for example from a store hook fired by a sweep deletion): it would wait on
// its own goroutine.
func (c *Cleaner[V]) Stop() {
	c.mu.Lock()
	cancelled := c.cancel != nil
	if cancelled {
		c.cancel()
		c.cancel = nil
	}
	done := c.done
	c.mu.Unlock()

	if done != nil {
		<-done
	}
	if cancelled {
		c.log.Info("cleaner stopped")
	}
}

// Running reports whether the background loop is active.
func (c *Cleaner[V]) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel != nil
}

// Sweep runs one pass synchronously and returns how many entries it removed.
func (c *Cleaner[V]) Sweep() int {
	removed := 0
	for k, v := range c.src.Entries() {
		if !isExpired(v) {
			continue
		}
		var ok bool
		if c.cond != nil {
			ok = c.cond.DeleteFunc(k, isExpired[V])
		} else {
			ok = c.src.Delete(k)
		}
		if ok {
			removed++
			c.metrics.Evict(metrics.EvictTTL)
		}
	}
	if removed > 0 {
		c.log.Log("sweep", "removed", removed)
	}
	return removed
}

func (c *Cleaner[V]) loop(ctx context.Context, interval time.Duration, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}

func isExpired[V any](v V) bool {
	e, ok := any(v).(expirer)
	return ok && e.IsExpired()
}
