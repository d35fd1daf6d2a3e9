// Package ttl wraps values with an absolute expiry and implements cache-aside
// population on top of any store that keeps such entries.
package ttl

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/IvanBrykalov/ttlcache/clock"
	"github.com/IvanBrykalov/ttlcache/validate"
)

// ErrInvalidTTL is returned for a zero or negative time to live.
var ErrInvalidTTL = fmt.Errorf("%w: ttl must be positive", validate.ErrInvalidConfig)

// Entry is a value with a fixed expiry. Reading an entry never extends it.
// IsExpired and Touch are safe for concurrent use; Value must not be
// reassigned once the entry is shared.
type Entry[V any] struct {
	Value V

	expiresAt    int64 // UnixNano
	lastAccessed atomic.Int64
	clk          atomic.Pointer[clockRef]
}

// atomic.Pointer needs one concrete type regardless of the Clock implementation.
type clockRef struct{ c clock.Clock }

// NewEntry wraps v so that it expires ttl after now. A nil clk uses the system clock.
func NewEntry[V any](v V, ttl time.Duration, clk clock.Clock) (*Entry[V], error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("%w, got %s", ErrInvalidTTL, ttl)
	}
	clk = clock.OrSystem(clk)
	now := clk.NowUnixNano()
	e := &Entry[V]{Value: v, expiresAt: now + int64(ttl)}
	e.lastAccessed.Store(now)
	e.clk.Store(&clockRef{clk})
	return e, nil
}

// IsExpired reports whether now is strictly after the expiry instant.
func (e *Entry[V]) IsExpired() bool {
	return e.now() > e.expiresAt
}

// Touch records an access. The expiry is unchanged.
func (e *Entry[V]) Touch() {
	e.lastAccessed.Store(e.now())
}

// Rebind switches the time source, e.g. after the entry was decoded.
func (e *Entry[V]) Rebind(clk clock.Clock) {
	e.clk.Store(&clockRef{clock.OrSystem(clk)})
}

// ExpiresAt returns the expiry instant.
func (e *Entry[V]) ExpiresAt() time.Time { return time.Unix(0, e.expiresAt) }

// LastAccessed returns the instant of creation or of the latest Touch.
func (e *Entry[V]) LastAccessed() time.Time { return time.Unix(0, e.lastAccessed.Load()) }

// TTL returns the time left before expiry; negative once expired.
func (e *Entry[V]) TTL() time.Duration { return time.Duration(e.expiresAt - e.now()) }

func (e *Entry[V]) now() int64 {
	if r := e.clk.Load(); r != nil {
		return r.c.NowUnixNano()
	}
	return clock.System{}.NowUnixNano()
}

// ---- JSON ----

type entryJSON[V any] struct {
	Value     V        `json:"value"`
	ExpiresAt int64    `json:"expiresAt"`
	Metadata  metaJSON `json:"metadata"`
}

type metaJSON struct {
	LastAccessed int64 `json:"lastAccessed"`
}

// MarshalJSON encodes {"value", "expiresAt", "metadata": {"lastAccessed"}}
// with timestamps in Unix milliseconds.
func (e *Entry[V]) MarshalJSON() ([]byte, error) {
	return json.Marshal(entryJSON[V]{
		Value:     e.Value,
		ExpiresAt: time.Unix(0, e.expiresAt).UnixMilli(),
		Metadata:  metaJSON{LastAccessed: time.Unix(0, e.lastAccessed.Load()).UnixMilli()},
	})
}

// UnmarshalJSON restores an entry verbatim; an already expired entry stays
// expired. The entry uses the system clock until Rebind.
func (e *Entry[V]) UnmarshalJSON(data []byte) error {
	var raw entryJSON[V]
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Value = raw.Value
	e.expiresAt = time.UnixMilli(raw.ExpiresAt).UnixNano()
	e.lastAccessed.Store(time.UnixMilli(raw.Metadata.LastAccessed).UnixNano())
	e.clk.Store(&clockRef{clock.System{}})
	return nil
}
