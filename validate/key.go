// Package validate checks the shape of cache keys.
//
// Validation is pure: nothing here keeps state, so the helpers can be used
// ad hoc (e.g. on keys decoded from an untrusted snapshot) as well as by the
// store on every mutation.
package validate

import (
	"fmt"
	"regexp"
	"strings"
)

type options struct {
	nonEmpty bool
	pattern  *regexp.Regexp
}

// Option tunes a single Key call.
type Option func(*options)

// NonEmpty controls whether a blank (after trimming) key is rejected.
// The default is true.
func NonEmpty(v bool) Option {
	return func(o *options) { o.nonEmpty = v }
}

// Pattern requires the key to match re. A nil re disables the check.
func Pattern(re *regexp.Regexp) Option {
	return func(o *options) { o.pattern = re }
}

// Key validates a statically typed key.
func Key(key string, opts ...Option) error {
	o := options{nonEmpty: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.nonEmpty && strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: key must not be empty", ErrInvalidKey)
	}
	if o.pattern != nil && !o.pattern.MatchString(key) {
		return fmt.Errorf("%w: key %q does not match %s", ErrInvalidKey, key, o.pattern)
	}
	return nil
}

// EnsureString returns v as a string or fails with ErrInvalidKey.
func EnsureString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: key must be a string, got %T", ErrInvalidKey, v)
	}
	return s, nil
}

// EnsureNonEmptyString is EnsureString plus the blank check.
func EnsureNonEmptyString(v any) (string, error) {
	s, err := EnsureString(v)
	if err != nil {
		return "", err
	}
	if err := Key(s); err != nil {
		return "", err
	}
	return s, nil
}

// EnsureMatch is EnsureString plus a pattern check. A nil pattern is a
// programming error and reported as ErrInvalidArgument.
func EnsureMatch(v any, re *regexp.Regexp) (string, error) {
	s, err := EnsureString(v)
	if err != nil {
		return "", err
	}
	if re == nil {
		return "", fmt.Errorf("%w: pattern must not be nil", ErrInvalidArgument)
	}
	if err := Key(s, NonEmpty(false), Pattern(re)); err != nil {
		return "", err
	}
	return s, nil
}
