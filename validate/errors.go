package validate

import "errors"

// Error taxonomy shared by every package of the module.
// Package-local sentinels wrap one of these, so callers can match a whole
// class of faults with errors.Is regardless of which component raised it.
var (
	// ErrInvalidKey: non-string key, empty key where one is required, or pattern mismatch.
	ErrInvalidKey = errors.New("ttlcache: invalid key")

	// ErrInvalidConfig: bad construction parameters (maxSize, policy name, ttl, intervals).
	ErrInvalidConfig = errors.New("ttlcache: invalid config")

	// ErrInvalidArgument: a call argument outside its domain (negative size, empty key set).
	ErrInvalidArgument = errors.New("ttlcache: invalid argument")

	// ErrInvalidMetadata: an eviction strategy was given a key without the metadata it needs.
	ErrInvalidMetadata = errors.New("ttlcache: invalid metadata")

	// ErrDeserialization: snapshot input is not a JSON object.
	ErrDeserialization = errors.New("ttlcache: deserialization failed")
)
