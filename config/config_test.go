package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IvanBrykalov/ttlcache/policy"
	"github.com/IvanBrykalov/ttlcache/validate"
)

const sampleYAML = `
cache:
  use_logger: true
  clean_interval: 500
  max_size: 100
  eviction_policy: lru
  default_ttl: 2000
log:
  level: debug
  format: json
snapshot:
  path: /tmp/snap.json
  schedule: "@every 30s"
`

func TestLoadBytes_YAML(t *testing.T) {
	t.Parallel()

	s, err := LoadBytes([]byte(sampleYAML), FormatYAML)
	require.NoError(t, err)

	assert.True(t, s.Cache.UseLogger)
	assert.Equal(t, 100, s.Cache.MaxSize)
	assert.Equal(t, "json", s.Log.Format)
	assert.Equal(t, "Store", s.Log.Prefix, "absent keys keep defaults")
	assert.Equal(t, "@every 30s", s.Snapshot.Schedule)

	opt, err := CacheOptions[string](s)
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, opt.CleanInterval)
	assert.Equal(t, 2*time.Second, opt.DefaultTTL)
	assert.Equal(t, policy.LRU, opt.EvictionPolicy)

	lo := s.LoggerOptions()
	assert.True(t, lo.Enabled)
	assert.Equal(t, "debug", lo.Level)
}

func TestLoadBytes_JSONDefaults(t *testing.T) {
	t.Parallel()

	s, err := LoadBytes([]byte(`{"cache":{"use_logger":false}}`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, Default(), s)

	opt, err := CacheOptions[int](s)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, opt.DefaultTTL)
	assert.Zero(t, opt.MaxSize)
	assert.Empty(t, opt.EvictionPolicy)
}

func TestLoadBytes_Invalid(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"half eviction size":   `{"cache":{"max_size":10}}`,
		"half eviction policy": `{"cache":{"eviction_policy":"LRU"}}`,
		"unknown policy":       `{"cache":{"max_size":10,"eviction_policy":"ARC"}}`,
		"zero interval":        `{"cache":{"clean_interval":0}}`,
		"negative ttl":         `{"cache":{"default_ttl":-5}}`,
		"bad log level":        `{"log":{"level":"chatty"}}`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := LoadBytes([]byte(in), FormatJSON)
			require.ErrorIs(t, err, validate.ErrInvalidConfig)
		})
	}

	_, err := LoadBytes([]byte(`{not json`), FormatJSON)
	require.ErrorIs(t, err, ErrParseFailed)
	_, err = LoadBytes([]byte(`a: b`), Format("toml"))
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoad_File(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "cache.yml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "lru", s.Cache.EvictionPolicy)

	_, err = Load("")
	require.ErrorIs(t, err, ErrEmptyPath)
	_, err = Load(filepath.Join(dir, "cache.ini"))
	require.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.ErrorIs(t, err, ErrLoadFailed)
}
