// Package cache composes the store, the TTL manager and the cleaner into one
// embeddable in-process cache.
//
// Design
//
//   - Storage: a single store.Store keeps key -> *ttl.Entry[V] in insertion
//     order under one mutex. The capacity check, victim selection and removal
//     happen in the same critical section as the insert.
//
//   - Eviction: optional and bounded by entry count. MaxSize and
//     EvictionPolicy (FIFO, LRU, LFU, MRU, RANDOM) must be set together.
//
//   - TTL: every entry carries an absolute expiry. Reads never extend it.
//     Expired entries are removed lazily by Get and proactively by the
//     cleaner every CleanInterval.
//
//   - GetOrFetch: cache-aside population. Fetch runs without any lock, and
//     concurrent misses for the same key each run their own fetch. Wrap the
//     fetch with flight.Group to coalesce them.
//
//   - Observability: Stats exposes a built-in counter; Options.Metrics receives
//     the same signals (see metrics/prom and metrics/otelmetric).
//
// Basic usage
//
//	c, err := cache.New(cache.Options[string]{
//	    MaxSize:        1024,
//	    EvictionPolicy: policy.LRU,
//	    DefaultTTL:     time.Minute,
//	})
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	_ = c.Set("a", "1")
//	if v, ok := c.Get("a"); ok {
//	    _ = v
//	}
//
// Cache-aside
//
//	v, err := c.GetOrFetch(ctx, "user:42", 30*time.Second, func(ctx context.Context) (string, error) {
//	    return db.LoadUser(ctx, 42)
//	})
//
// Snapshots
//
//	data, _ := c.MarshalJSON()
//	_ = persist.Save("cache.json", json.RawMessage(data))
package cache
