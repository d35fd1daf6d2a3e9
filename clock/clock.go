// Package clock abstracts the time source used for expiry and access stamps.
package clock

import (
	"sync/atomic"
	"time"
)

// Clock provides time in UnixNano; useful for deterministic tests.
type Clock interface{ NowUnixNano() int64 }

// System reads the wall clock.
type System struct{}

// NowUnixNano implements Clock.
func (System) NowUnixNano() int64 { return time.Now().UnixNano() }

// OrSystem returns c, or System when c is nil.
func OrSystem(c Clock) Clock {
	if c == nil {
		return System{}
	}
	return c
}

// Manual is a Clock that only moves when told to.
// Safe for concurrent use.
type Manual struct{ t atomic.Int64 }

// NewManual returns a Manual clock set to start.
func NewManual(start time.Time) *Manual {
	m := &Manual{}
	m.t.Store(start.UnixNano())
	return m
}

// NowUnixNano implements Clock.
func (m *Manual) NowUnixNano() int64 { return m.t.Load() }

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) { m.t.Add(int64(d)) }

// Set pins the clock to t.
func (m *Manual) Set(t time.Time) { m.t.Store(t.UnixNano()) }
