// Package logging provides the togglable, prefix-tagged line logger used by
// every cache component.
//
// Lines are emitted through log/slog; the prefix becomes a "component"
// attribute. When a file name is configured, output goes through a
// lumberjack rotating writer instead of the supplied io.Writer.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the narrow interface components log through.
// All methods are safe for concurrent use and cost one atomic load when the
// logger is disabled.
type Logger interface {
	// Log records routine activity (set/get/delete traces). Emitted at debug level.
	Log(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	// With returns a logger sharing the enabled flag whose lines carry the
	// given component name instead of the parent's.
	With(component string) Logger

	Enabled() bool
	SetEnabled(bool)
}

// Options configures New. The zero value is a disabled text logger on stderr.
type Options struct {
	Enabled bool
	// Prefix is the component name attached to every line. Default "Store".
	Prefix string
	// Level is one of debug, info, warn, error. Default debug.
	Level string
	// Format is text or json. Default text.
	Format string
	// Output is the destination when File is empty. Default os.Stderr.
	Output io.Writer

	// File enables size-based rotation via lumberjack.
	File       string
	MaxSizeMB  int // default 100
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// ErrInvalidOptions wraps bad level/format values.
var ErrInvalidOptions = errors.New("logging: invalid options")

// Slog is the log/slog backed Logger.
type Slog struct {
	enabled *atomic.Bool
	base    *slog.Logger // without the component attribute
	l       *slog.Logger
	closer  io.Closer
}

// New builds a logger from opts.
func New(opts Options) (*Slog, error) {
	level, err := parseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "Store"
	}

	var (
		w      io.Writer = opts.Output
		closer io.Closer
	)
	if opts.File != "" {
		maxSize := opts.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 100
		}
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    maxSize,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
		}
		w, closer = lj, lj
	}
	if w == nil {
		w = os.Stderr
	}

	ho := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "text":
		h = slog.NewTextHandler(w, ho)
	case "json":
		h = slog.NewJSONHandler(w, ho)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrInvalidOptions, opts.Format)
	}

	enabled := new(atomic.Bool)
	enabled.Store(opts.Enabled)
	base := slog.New(h)
	return &Slog{
		enabled: enabled,
		base:    base,
		l:       base.With(slog.String("component", prefix)),
		closer:  closer,
	}, nil
}

// Nop returns a permanently silent logger.
func Nop() Logger { return nopLogger{} }

// OrNop returns l, or Nop when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return Nop()
	}
	return l
}

func (s *Slog) Log(msg string, args ...any)   { s.emit(slog.LevelDebug, msg, args) }
func (s *Slog) Info(msg string, args ...any)  { s.emit(slog.LevelInfo, msg, args) }
func (s *Slog) Warn(msg string, args ...any)  { s.emit(slog.LevelWarn, msg, args) }
func (s *Slog) Error(msg string, args ...any) { s.emit(slog.LevelError, msg, args) }

// With implements Logger.
func (s *Slog) With(component string) Logger {
	return &Slog{
		enabled: s.enabled,
		base:    s.base,
		l:       s.base.With(slog.String("component", component)),
	}
}

func (s *Slog) Enabled() bool     { return s.enabled.Load() }
func (s *Slog) SetEnabled(v bool) { s.enabled.Store(v) }

// Close releases the rotating file, if any. Derived loggers share the file and
// must not be used after the root is closed.
func (s *Slog) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

func (s *Slog) emit(level slog.Level, msg string, args []any) {
	if !s.enabled.Load() {
		return
	}
	s.l.Log(context.Background(), level, msg, args...)
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: unknown level %q", ErrInvalidOptions, s)
	}
}

type nopLogger struct{}

func (nopLogger) Log(string, ...any)   {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
func (nopLogger) With(string) Logger   { return nopLogger{} }
func (nopLogger) Enabled() bool        { return false }
func (nopLogger) SetEnabled(bool)      {}

var (
	_ Logger = (*Slog)(nil)
	_ Logger = nopLogger{}
)
