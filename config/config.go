// Package config loads cache, logging and snapshot settings from YAML or JSON.
//
// Durations are integers in milliseconds. Keys left out of a file keep the
// values from Default.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/IvanBrykalov/ttlcache/cache"
	"github.com/IvanBrykalov/ttlcache/logging"
	"github.com/IvanBrykalov/ttlcache/policy"
	"github.com/IvanBrykalov/ttlcache/validate"
)

// Format is a configuration file syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

var (
	ErrEmptyPath         = errors.New("config: empty config path")
	ErrUnsupportedFormat = errors.New("config: unsupported config format")
	ErrLoadFailed        = errors.New("config: failed to load config")
	ErrParseFailed       = errors.New("config: failed to parse config")
)

// Settings is the full configuration document.
type Settings struct {
	Cache    CacheSettings    `koanf:"cache"`
	Log      LogSettings      `koanf:"log"`
	Snapshot SnapshotSettings `koanf:"snapshot"`
}

// CacheSettings mirrors cache.Options.
type CacheSettings struct {
	UseLogger       bool   `koanf:"use_logger"`
	CleanIntervalMs int64  `koanf:"clean_interval"`
	MaxSize         int    `koanf:"max_size"`
	EvictionPolicy  string `koanf:"eviction_policy"`
	DefaultTTLMs    int64  `koanf:"default_ttl"`
}

// LogSettings mirrors logging.Options.
type LogSettings struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	File   string `koanf:"file"`
	Prefix string `koanf:"prefix"`
}

// SnapshotSettings configures persist.Scheduler. An empty Schedule disables it.
type SnapshotSettings struct {
	Path     string `koanf:"path"`
	Schedule string `koanf:"schedule"`
}

// Default returns the settings used for keys absent from a file.
func Default() Settings {
	return Settings{
		Cache: CacheSettings{
			CleanIntervalMs: cache.DefaultCleanInterval.Milliseconds(),
			DefaultTTLMs:    cache.DefaultTTL.Milliseconds(),
		},
		Log: LogSettings{
			Level:  "info",
			Format: "text",
			Prefix: "Store",
		},
		Snapshot: SnapshotSettings{Path: "cache.json"},
	}
}

// Load reads path; the extension picks the format.
func Load(path string) (Settings, error) {
	if path == "" {
		return Settings{}, ErrEmptyPath
	}
	format, err := detectFormat(path)
	if err != nil {
		return Settings{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	return LoadBytes(data, format)
}

// LoadBytes parses data over Default and validates the result.
func LoadBytes(data []byte, format Format) (Settings, error) {
	k := koanf.New(".")
	if len(data) > 0 {
		if err := loadData(k, data, format); err != nil {
			return Settings{}, err
		}
	}

	s := Default()
	if err := k.UnmarshalWithConf("", &s, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Settings{}, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate rejects values the cache would refuse.
func (s Settings) Validate() error {
	c := s.Cache
	if c.CleanIntervalMs <= 0 {
		return fmt.Errorf("%w: cache.clean_interval must be a positive number of ms, got %d", validate.ErrInvalidConfig, c.CleanIntervalMs)
	}
	if c.DefaultTTLMs <= 0 {
		return fmt.Errorf("%w: cache.default_ttl must be a positive number of ms, got %d", validate.ErrInvalidConfig, c.DefaultTTLMs)
	}
	if c.MaxSize < 0 {
		return fmt.Errorf("%w: cache.max_size must be positive, got %d", validate.ErrInvalidConfig, c.MaxSize)
	}
	if (c.MaxSize > 0) != (c.EvictionPolicy != "") {
		return fmt.Errorf("%w: cache.max_size and cache.eviction_policy must be set together", validate.ErrInvalidConfig)
	}
	if c.EvictionPolicy != "" {
		if _, err := policy.ParseName(c.EvictionPolicy); err != nil {
			return err
		}
	}
	if _, err := logging.New(s.LoggerOptions()); err != nil {
		return fmt.Errorf("%w: %w", validate.ErrInvalidConfig, err)
	}
	return nil
}

// LoggerOptions converts the log section. The logger is enabled when
// cache.use_logger is set.
func (s Settings) LoggerOptions() logging.Options {
	return logging.Options{
		Enabled: s.Cache.UseLogger,
		Prefix:  s.Log.Prefix,
		Level:   s.Log.Level,
		Format:  s.Log.Format,
		File:    s.Log.File,
	}
}

// CacheOptions converts the cache section. The caller attaches a Logger if
// it wants one other than the default.
func CacheOptions[V any](s Settings) (cache.Options[V], error) {
	if err := s.Validate(); err != nil {
		return cache.Options[V]{}, err
	}
	c := s.Cache
	opt := cache.Options[V]{
		UseLogger:     c.UseLogger,
		CleanInterval: time.Duration(c.CleanIntervalMs) * time.Millisecond,
		MaxSize:       c.MaxSize,
		DefaultTTL:    time.Duration(c.DefaultTTLMs) * time.Millisecond,
	}
	if c.EvictionPolicy != "" {
		name, err := policy.ParseName(c.EvictionPolicy)
		if err != nil {
			return cache.Options[V]{}, err
		}
		opt.EvictionPolicy = name
	}
	return opt, nil
}

func detectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown extension %s", ErrUnsupportedFormat, ext)
	}
}

func loadData(k *koanf.Koanf, data []byte, format Format) error {
	var parser koanf.Parser
	switch format {
	case FormatYAML:
		parser = yaml.Parser()
	case FormatJSON:
		parser = json.Parser()
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	return nil
}
