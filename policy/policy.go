// Package policy defines the contract between the store and its eviction strategies.
//
// A Strategy is a pure selection function: given the current keys in
// insertion order and per-key metadata, it names exactly one victim. It never
// mutates the store; the store removes the victim itself while still holding
// its lock.
package policy

import (
	"fmt"
	"strings"

	"github.com/IvanBrykalov/ttlcache/validate"
)

// Name identifies a supported eviction strategy.
type Name string

const (
	// FIFO evicts the oldest inserted key still present.
	FIFO Name = "FIFO"
	// LRU evicts the key with the oldest access timestamp.
	LRU Name = "LRU"
	// LFU evicts the key with the lowest access count.
	LFU Name = "LFU"
	// MRU evicts the key with the newest access timestamp.
	MRU Name = "MRU"
	// RANDOM evicts a uniformly chosen key.
	RANDOM Name = "RANDOM"
)

// Names lists every supported strategy in a stable order.
var Names = []Name{FIFO, LRU, LFU, MRU, RANDOM}

// ParseName maps s (case-insensitive, surrounding spaces ignored) to a Name.
func ParseName(s string) (Name, error) {
	n := Name(strings.ToUpper(strings.TrimSpace(s)))
	if !n.Valid() {
		return "", fmt.Errorf("%w: unsupported eviction policy %q", validate.ErrInvalidConfig, s)
	}
	return n, nil
}

// Valid reports whether n is one of the supported strategies.
func (n Name) Valid() bool {
	for _, v := range Names {
		if n == v {
			return true
		}
	}
	return false
}

// Meta holds the per-key facts metadata-aware strategies read.
type Meta struct {
	// LastAccess is the UnixNano of the last read or write. Zero is a valid
	// stamp (a clock at the Unix epoch); a key without metadata is one absent
	// from Metadata.
	LastAccess int64
	// AccessCount is the number of reads since insertion.
	AccessCount uint64
}

// Metadata maps a key to its Meta. Strategies that need metadata fail with
// ErrInvalidMetadata for any candidate key missing from the map.
type Metadata map[string]Meta

// Strategy selects one key to evict.
//
// keys is in insertion order (oldest first). On exact ties the key that
// appears first in keys wins, so every strategy except RANDOM is deterministic.
type Strategy interface {
	Evict(keys []string, meta Metadata) (string, error)
}

// MetadataUser is implemented by strategies that read Metadata.
// The store skips building metadata for strategies that do not.
type MetadataUser interface {
	UsesMetadata() bool
}

// Rand is the randomness source used by RANDOM.
// *math/rand/v2.Rand satisfies it; so does a seeded generator in tests.
type Rand interface {
	IntN(n int) int
}

// ErrEmptyKeys is returned by every strategy when asked to choose from nothing.
var ErrEmptyKeys = fmt.Errorf("%w: keys must be a non-empty sequence", validate.ErrInvalidArgument)

// MissingMeta builds the ErrInvalidMetadata error for key and field.
func MissingMeta(strategy Name, key, field string) error {
	return fmt.Errorf("%w: %s needs numeric %s for key %q", validate.ErrInvalidMetadata, strategy, field, key)
}
