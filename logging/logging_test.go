package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlog_TextWithPrefix(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l, err := New(Options{Enabled: true, Prefix: "Cache", Output: &buf})
	require.NoError(t, err)

	l.Log("set key", "key", "a")
	l.Warn("slow fetch")
	out := buf.String()
	assert.Contains(t, out, "component=Cache")
	assert.Contains(t, out, `msg="set key"`)
	assert.Contains(t, out, "key=a")
	assert.Contains(t, out, "level=WARN")
}

func TestSlog_Toggle(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l, err := New(Options{Output: &buf})
	require.NoError(t, err)

	l.Info("hidden")
	assert.Empty(t, buf.String(), "disabled logger must not write")

	l.SetEnabled(true)
	child := l.With("Cleaner")
	child.Info("visible")
	assert.Contains(t, buf.String(), "component=Cleaner")
	assert.NotContains(t, buf.String(), "component=Store", "child replaces the prefix")

	l.SetEnabled(false)
	assert.False(t, child.Enabled(), "derived logger shares the toggle")
	buf.Reset()
	child.Error("hidden again")
	assert.Empty(t, buf.String())
}

func TestSlog_JSONAndLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l, err := New(Options{Enabled: true, Format: "json", Level: "warn", Output: &buf})
	require.NoError(t, err)

	l.Log("debug line")
	l.Info("info line")
	l.Error("boom", "err", "x")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "boom", rec["msg"])
	assert.Equal(t, "Store", rec["component"])
}

func TestNew_InvalidOptions(t *testing.T) {
	t.Parallel()

	_, err := New(Options{Level: "loud"})
	require.ErrorIs(t, err, ErrInvalidOptions)
	_, err = New(Options{Format: "xml"})
	require.ErrorIs(t, err, ErrInvalidOptions)
}

func TestSlog_RotatingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cache.log")
	l, err := New(Options{Enabled: true, File: path, MaxSizeMB: 1})
	require.NoError(t, err)
	l.Info("to file")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}

func TestNop(t *testing.T) {
	t.Parallel()

	n := OrNop(nil)
	n.SetEnabled(true)
	assert.False(t, n.Enabled())
	n.Log("ignored")
	assert.False(t, n.With("x").Enabled())
}
