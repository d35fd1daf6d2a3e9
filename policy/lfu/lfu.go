// Package lfu implements the LFU eviction strategy.
package lfu

import "github.com/IvanBrykalov/ttlcache/policy"

type lfu struct{}

// New returns the Least-Frequently-Used strategy.
func New() policy.Strategy { return lfu{} }

// UsesMetadata implements policy.MetadataUser.
func (lfu) UsesMetadata() bool { return true }

// Evict returns the key with the smallest AccessCount; earliest key on ties.
// A zero count is a valid value (never read since insertion).
func (lfu) Evict(keys []string, meta policy.Metadata) (string, error) {
	if len(keys) == 0 {
		return "", policy.ErrEmptyKeys
	}
	for _, k := range keys {
		if _, ok := meta[k]; !ok {
			return "", policy.MissingMeta(policy.LFU, k, "accessCount")
		}
	}
	victim := keys[0]
	for _, k := range keys[1:] {
		if meta[k].AccessCount < meta[victim].AccessCount {
			victim = k
		}
	}
	return victim, nil
}
