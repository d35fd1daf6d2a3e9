// Package lru implements the LRU eviction strategy.
package lru

import "github.com/IvanBrykalov/ttlcache/policy"

// lru picks the key with the smallest LastAccess.
type lru struct{}

// New returns the Least-Recently-Used strategy.
func New() policy.Strategy { return lru{} }

// UsesMetadata implements policy.MetadataUser.
func (lru) UsesMetadata() bool { return true }

// Evict validates metadata for every candidate first, then scans once.
// Strict "<" keeps the earliest key on ties.
func (lru) Evict(keys []string, meta policy.Metadata) (string, error) {
	if len(keys) == 0 {
		return "", policy.ErrEmptyKeys
	}
	for _, k := range keys {
		if _, ok := meta[k]; !ok {
			return "", policy.MissingMeta(policy.LRU, k, "lastAccess")
		}
	}
	victim := keys[0]
	for _, k := range keys[1:] {
		if meta[k].LastAccess < meta[victim].LastAccess {
			victim = k
		}
	}
	return victim, nil
}
