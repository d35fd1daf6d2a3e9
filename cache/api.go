package cache

import (
	"context"
	"time"

	"github.com/IvanBrykalov/ttlcache/metrics"
	"github.com/IvanBrykalov/ttlcache/ttl"
)

// Cache is an in-process key/value cache with expiring entries.
// All methods are safe for concurrent use by multiple goroutines.
//
// Eviction strategies scan the key set, so a full-store insert costs O(n);
// every other operation is a map lookup under a single mutex.
type Cache[V any] interface {
	// Set inserts or updates key with the default TTL.
	Set(key string, v V) error

	// SetWithTTL inserts or updates key with its own TTL (must be positive).
	SetWithTTL(key string, v V, ttl time.Duration) error

	// Add inserts key only if it is absent or expired, using the default TTL.
	// Returns false if a live entry exists (no update is performed).
	Add(key string, v V) (bool, error)

	// Get returns the live value for key. An expired entry is removed and
	// reported as a miss.
	Get(key string) (V, bool)

	// Has reports whether a live entry exists. It does not count as an access.
	Has(key string) bool

	// GetOrFetch returns the live value for key or populates it from fetch.
	// Concurrent misses are not coalesced; see flight.Group.
	GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch ttl.FetchFunc[V]) (V, error)

	// Delete removes key and reports whether it existed.
	Delete(key string) bool

	// Clear removes every entry.
	Clear()

	// Len returns the number of stored entries, including expired ones not yet swept.
	Len() int

	// Keys returns stored keys in insertion order.
	Keys() []string

	// StopCleaner halts the background sweep. StartCleaner resumes it.
	StopCleaner()
	StartCleaner() error

	// MarshalJSON encodes every entry as {"value","expiresAt","metadata"}.
	MarshalJSON() ([]byte, error)

	// RestoreJSON replaces the contents with a snapshot produced by
	// MarshalJSON. Expiry instants are kept as they were.
	RestoreJSON(data []byte) error

	// Stats returns hit/miss and eviction counters.
	Stats() metrics.Snapshot

	// Close stops the cleaner. Later mutating calls return ErrClosed.
	Close() error
}
