package ttl

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IvanBrykalov/ttlcache/clock"
	"github.com/IvanBrykalov/ttlcache/validate"
)

var epoch = time.UnixMilli(1_700_000_000_000)

func TestNewEntry_RejectsNonPositiveTTL(t *testing.T) {
	t.Parallel()

	for _, d := range []time.Duration{0, -time.Second} {
		_, err := NewEntry("v", d, nil)
		require.ErrorIs(t, err, ErrInvalidTTL)
		require.True(t, errors.Is(err, validate.ErrInvalidConfig))
	}
}

func TestEntry_ExpiryBoundary(t *testing.T) {
	t.Parallel()

	clk := clock.NewManual(epoch)
	e, err := NewEntry(42, time.Second, clk)
	require.NoError(t, err)

	assert.False(t, e.IsExpired(), "fresh entry")
	clk.Advance(time.Second)
	assert.False(t, e.IsExpired(), "expiry instant itself is still live")
	clk.Advance(time.Nanosecond)
	assert.True(t, e.IsExpired())
	assert.Negative(t, e.TTL())
}

func TestEntry_TouchDoesNotExtend(t *testing.T) {
	t.Parallel()

	clk := clock.NewManual(epoch)
	e, _ := NewEntry("v", time.Second, clk)
	exp := e.ExpiresAt()

	clk.Advance(500 * time.Millisecond)
	e.Touch()
	assert.Equal(t, exp, e.ExpiresAt())
	assert.Equal(t, epoch.Add(500*time.Millisecond), e.LastAccessed())
}

func TestEntry_JSON(t *testing.T) {
	t.Parallel()

	clk := clock.NewManual(epoch)
	e, _ := NewEntry("v", 2*time.Second, clk)
	clk.Advance(time.Second)
	e.Touch()

	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":"v","expiresAt":1700000002000,"metadata":{"lastAccessed":1700000001000}}`, string(data))

	var got Entry[string]
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "v", got.Value)
	assert.Equal(t, e.ExpiresAt(), got.ExpiresAt())
	assert.Equal(t, e.LastAccessed(), got.LastAccessed())

	// Decoded entries follow the system clock until rebound.
	assert.True(t, got.IsExpired(), "2023 timestamps are in the past on the system clock")
	got.Rebind(clk)
	assert.False(t, got.IsExpired())
}
