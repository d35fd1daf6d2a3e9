package metrics

import (
	"sync/atomic"
	"time"

	"github.com/IvanBrykalov/ttlcache/clock"
	"github.com/IvanBrykalov/ttlcache/internal/util"
)

// Counter tracks hits, misses and removals, plus the time of the last lookup.
// It implements Metrics so it can sit next to an exporter behind Multi.
type Counter struct {
	clk clock.Clock

	// ---- hot counters (separate cache lines to avoid false sharing) ----
	_      util.CacheLinePad
	hits   util.PaddedAtomicUint64
	misses util.PaddedAtomicUint64

	evictions   atomic.Uint64
	expirations atomic.Uint64
	size        atomic.Int64
	lastAccess  atomic.Int64 // UnixNano, 0 = never
}

// Snapshot is a point-in-time copy of a Counter.
type Snapshot struct {
	Hits        uint64    `json:"hit"`
	Misses      uint64    `json:"miss"`
	Total       uint64    `json:"total"`
	HitRatio    float64   `json:"hitRatio"`
	Evictions   uint64    `json:"evictions"`
	Expirations uint64    `json:"expirations"`
	Size        int       `json:"size"`
	LastAccess  time.Time `json:"lastAccess,omitzero"`
}

// NewCounter returns a zeroed Counter. A nil clk uses the system clock.
func NewCounter(clk clock.Clock) *Counter {
	return &Counter{clk: clock.OrSystem(clk)}
}

// Hit records a successful lookup.
func (c *Counter) Hit() {
	c.hits.Add(1)
	c.lastAccess.Store(c.clk.NowUnixNano())
}

// Miss records a failed lookup.
func (c *Counter) Miss() {
	c.misses.Add(1)
	c.lastAccess.Store(c.clk.NowUnixNano())
}

// Evict records a removal by reason.
func (c *Counter) Evict(r EvictReason) {
	if r == EvictTTL {
		c.expirations.Add(1)
		return
	}
	c.evictions.Add(1)
}

// Size records the current number of entries.
func (c *Counter) Size(n int) { c.size.Store(int64(n)) }

// HitRatio returns hits/(hits+misses), or 0 before the first lookup.
func (c *Counter) HitRatio() float64 {
	h, m := c.hits.Load(), c.misses.Load()
	if h+m == 0 {
		return 0
	}
	return float64(h) / float64(h+m)
}

// Reset zeroes every counter and forgets the last access time.
// Size is a gauge, not a counter, and is left alone.
func (c *Counter) Reset() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
	c.expirations.Store(0)
	c.lastAccess.Store(0)
}

// Snapshot copies the counters. Fields are read individually, so a snapshot
// taken under concurrent traffic may be off by in-flight updates.
func (c *Counter) Snapshot() Snapshot {
	h, m := c.hits.Load(), c.misses.Load()
	s := Snapshot{
		Hits:        h,
		Misses:      m,
		Total:       h + m,
		Evictions:   c.evictions.Load(),
		Expirations: c.expirations.Load(),
		Size:        int(c.size.Load()),
	}
	if s.Total > 0 {
		s.HitRatio = float64(h) / float64(s.Total)
	}
	if ts := c.lastAccess.Load(); ts != 0 {
		s.LastAccess = time.Unix(0, ts)
	}
	return s
}

var _ Metrics = (*Counter)(nil)
