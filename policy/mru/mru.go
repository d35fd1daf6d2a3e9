// Package mru implements the MRU eviction strategy.
package mru

import "github.com/IvanBrykalov/ttlcache/policy"

type mru struct{}

// New returns the Most-Recently-Used strategy.
func New() policy.Strategy { return mru{} }

// UsesMetadata implements policy.MetadataUser.
func (mru) UsesMetadata() bool { return true }

// Evict returns the key with the largest LastAccess; earliest key on ties.
func (mru) Evict(keys []string, meta policy.Metadata) (string, error) {
	if len(keys) == 0 {
		return "", policy.ErrEmptyKeys
	}
	for _, k := range keys {
		if _, ok := meta[k]; !ok {
			return "", policy.MissingMeta(policy.MRU, k, "lastAccess")
		}
	}
	victim := keys[0]
	for _, k := range keys[1:] {
		if meta[k].LastAccess > meta[victim].LastAccess {
			victim = k
		}
	}
	return victim, nil
}
