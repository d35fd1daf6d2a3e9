// Package store is the authoritative key/value map behind the cache.
//
// A Store keeps a map plus an intrusive list in insertion order under a single
// mutex. The same critical section covers the capacity check, victim
// selection and removal, so concurrent inserts never overshoot maxSize.
// Hooks, logging and other observer calls happen after the lock is released.
package store

import (
	"fmt"
	"iter"
	"maps"
	"regexp"
	"slices"
	"sync"

	"github.com/IvanBrykalov/ttlcache/clock"
	"github.com/IvanBrykalov/ttlcache/eviction"
	"github.com/IvanBrykalov/ttlcache/logging"
	"github.com/IvanBrykalov/ttlcache/metrics"
	"github.com/IvanBrykalov/ttlcache/policy"
	"github.com/IvanBrykalov/ttlcache/validate"
)

// Store is a concurrency-safe string-keyed map with optional bounded size.
type Store[V any] struct {
	// ---- guarded by mu ----
	mu   sync.Mutex
	m    map[string]*node[V]
	head *node[V] // oldest
	tail *node[V] // newest

	// ---- immutable after New ----
	pol     *eviction.Policy
	hooks   Hooks[V]
	clk     clock.Clock
	log     logging.Logger
	metrics metrics.Metrics
	pattern *regexp.Regexp
}

// New builds an empty Store.
func New[V any](opts ...Option[V]) (*Store[V], error) {
	var cfg config[V]
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.hooks == nil {
		cfg.hooks = NoopHooks[V]{}
	}
	size := 0
	if cfg.pol != nil {
		size = cfg.pol.MaxSize()
	}
	return &Store[V]{
		m:       make(map[string]*node[V], size),
		pol:     cfg.pol,
		hooks:   cfg.hooks,
		clk:     clock.OrSystem(cfg.clk),
		log:     logging.OrNop(cfg.log),
		metrics: metrics.OrNoop(cfg.metrics),
		pattern: cfg.pattern,
	}, nil
}

// Set inserts or updates key.
//
// A new key first makes room: while the policy reports the store full, the
// strategy picks a victim and the victim is removed. A strategy error aborts
// the insert. Updating an existing key never evicts; it keeps the key's
// position and access count and refreshes its access time.
func (s *Store[V]) Set(key string, v V) error {
	_, err := s.put(key, v, false)
	return err
}

// Add inserts key only if it is absent and reports whether it did.
func (s *Store[V]) Add(key string, v V) (bool, error) {
	return s.put(key, v, true)
}

func (s *Store[V]) put(key string, v V, onlyNew bool) (bool, error) {
	if err := s.checkKey(key); err != nil {
		return false, err
	}

	s.mu.Lock()
	now := s.clk.NowUnixNano()
	if n, ok := s.m[key]; ok {
		if onlyNew {
			s.mu.Unlock()
			return false, nil
		}
		n.val = v
		n.lastAccess = now
		s.metrics.Size(len(s.m))
		s.mu.Unlock()

		s.log.Log("set", "key", key, "update", true)
		s.hooks.OnSet(key, v)
		return true, nil
	}

	evicted, err := s.makeRoomLocked()
	if err == nil {
		s.pushBack(&node[V]{key: key, val: v, lastAccess: now})
	}
	s.metrics.Size(len(s.m))
	s.mu.Unlock()

	s.notifyEvicted(evicted)
	if err != nil {
		s.log.Warn("set aborted", "key", key, "err", err)
		return false, err
	}
	s.log.Log("set", "key", key)
	s.hooks.OnSet(key, v)
	return true, nil
}

// Get returns the value for key, refreshing its access time and count.
func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.Lock()
	n, ok := s.m[key]
	if !ok {
		s.mu.Unlock()
		s.log.Log("get", "key", key, "found", false)
		var zero V
		return zero, false
	}
	n.lastAccess = s.clk.NowUnixNano()
	n.accessCount++
	v := n.val
	s.mu.Unlock()

	s.log.Log("get", "key", key, "found", true)
	return v, true
}

// Peek returns the value for key without touching its metadata.
func (s *Store[V]) Peek(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.m[key]; ok {
		return n.val, true
	}
	var zero V
	return zero, false
}

// Has reports whether key is present.
func (s *Store[V]) Has(key string) bool {
	s.mu.Lock()
	_, ok := s.m[key]
	s.mu.Unlock()
	return ok
}

// Delete removes key and reports whether it existed. OnDelete fires only then.
func (s *Store[V]) Delete(key string) bool {
	return s.DeleteFunc(key, nil)
}

// DeleteFunc removes key only if fn (evaluated under the store lock) returns
// true for its current value. A nil fn always deletes.
func (s *Store[V]) DeleteFunc(key string, fn func(V) bool) bool {
	s.mu.Lock()
	n, ok := s.m[key]
	if !ok || (fn != nil && !fn(n.val)) {
		s.mu.Unlock()
		return false
	}
	s.unlink(n)
	s.metrics.Size(len(s.m))
	s.mu.Unlock()

	s.log.Log("delete", "key", key)
	s.hooks.OnDelete(key)
	return true
}

// Clear drops every key and always fires OnClear.
func (s *Store[V]) Clear() {
	s.mu.Lock()
	s.clearLocked()
	s.metrics.Size(0)
	s.mu.Unlock()

	s.log.Log("clear")
	s.hooks.OnClear()
}

// Len returns the number of keys.
func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

// Keys returns the keys oldest first.
func (s *Store[V]) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keysLocked()
}

// Values returns the values in key insertion order.
func (s *Store[V]) Values() []V {
	_, vals := s.snapshot()
	return vals
}

// Entries yields key/value pairs in insertion order. The pairs are copied
// under the lock when Entries is called; later mutations are not observed and
// the sequence may be ranged over more than once.
func (s *Store[V]) Entries() iter.Seq2[string, V] {
	keys, vals := s.snapshot()
	return func(yield func(string, V) bool) {
		for i, k := range keys {
			if !yield(k, vals[i]) {
				return
			}
		}
	}
}

// ForEach calls fn for every pair of a point-in-time copy. fn may mutate the store.
func (s *Store[V]) ForEach(fn func(key string, v V)) {
	for k, v := range s.Entries() {
		fn(k, v)
	}
}

// Snapshot returns a copy of the map.
func (s *Store[V]) Snapshot() map[string]V {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]V, len(s.m))
	for k, n := range s.m {
		out[k] = n.val
	}
	return out
}

// Restore replaces the contents with m. Keys are validated before anything is
// cleared; they are then inserted in sorted order through Set, so a bounded
// store evicts while restoring.
func (s *Store[V]) Restore(m map[string]V) error {
	keys := slices.Sorted(maps.Keys(m))
	for _, k := range keys {
		if err := s.checkKey(k); err != nil {
			return fmt.Errorf("%w: %w", validate.ErrDeserialization, err)
		}
	}
	vals := make([]V, len(keys))
	for i, k := range keys {
		vals[i] = m[k]
	}
	return s.replace(keys, vals)
}

// -------------------- internals --------------------

func (s *Store[V]) checkKey(key string) error {
	return validate.Key(key, validate.Pattern(s.pattern))
}

func (s *Store[V]) snapshot() ([]string, []V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.m))
	vals := make([]V, 0, len(s.m))
	for n := s.head; n != nil; n = n.next {
		keys = append(keys, n.key)
		vals = append(vals, n.val)
	}
	return keys, vals
}

func (s *Store[V]) replace(keys []string, vals []V) error {
	s.Clear()
	for i, k := range keys {
		if err := s.Set(k, vals[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store[V]) clearLocked() {
	for n := s.head; n != nil; {
		next := n.next
		n.prev, n.next = nil, nil
		n = next
	}
	s.head, s.tail = nil, nil
	clear(s.m)
}

// makeRoomLocked evicts until the policy no longer reports the store full.
// It returns the evicted keys even when it fails part way.
func (s *Store[V]) makeRoomLocked() ([]string, error) {
	if s.pol == nil {
		return nil, nil
	}
	var evicted []string
	for {
		full, err := s.pol.ShouldEvict(len(s.m))
		if err != nil {
			return evicted, err
		}
		if !full || len(s.m) == 0 {
			return evicted, nil
		}

		var meta policy.Metadata
		if s.pol.NeedsMetadata() {
			meta = s.metaLocked()
		}
		victim, err := s.pol.Evict(s.keysLocked(), meta)
		if err != nil {
			return evicted, err
		}
		n, ok := s.m[victim]
		if !ok {
			return evicted, fmt.Errorf("%w: strategy %s chose absent key %q", validate.ErrInvalidArgument, s.pol.Name(), victim)
		}
		s.unlink(n)
		s.metrics.Evict(metrics.EvictCapacity)
		evicted = append(evicted, victim)
	}
}

func (s *Store[V]) notifyEvicted(keys []string) {
	for _, k := range keys {
		s.log.Log("evicted", "key", k, "policy", s.pol.Name())
		s.hooks.OnDelete(k)
	}
}
