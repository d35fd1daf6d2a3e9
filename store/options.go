package store

import (
	"regexp"

	"github.com/IvanBrykalov/ttlcache/clock"
	"github.com/IvanBrykalov/ttlcache/eviction"
	"github.com/IvanBrykalov/ttlcache/logging"
	"github.com/IvanBrykalov/ttlcache/metrics"
)

// Option configures a Store. Zero values are safe; defaults are applied in New:
//   - no eviction policy => unbounded
//   - nil Hooks          => NoopHooks
//   - nil Clock          => system clock
//   - nil Logger         => silent
//   - nil Metrics        => NoopMetrics
type Option[V any] func(*config[V])

type config[V any] struct {
	pol     *eviction.Policy
	hooks   Hooks[V]
	clk     clock.Clock
	log     logging.Logger
	metrics metrics.Metrics
	pattern *regexp.Regexp
}

// WithEviction bounds the store by p.MaxSize() and evicts with p's strategy.
func WithEviction[V any](p *eviction.Policy) Option[V] {
	return func(c *config[V]) { c.pol = p }
}

// WithHooks installs mutation observers.
func WithHooks[V any](h Hooks[V]) Option[V] {
	return func(c *config[V]) { c.hooks = h }
}

// WithClock overrides the time source used for access stamps.
func WithClock[V any](clk clock.Clock) Option[V] {
	return func(c *config[V]) { c.clk = clk }
}

// WithLogger routes activity lines to l.
func WithLogger[V any](l logging.Logger) Option[V] {
	return func(c *config[V]) { c.log = l }
}

// WithMetrics reports evictions and size changes to m.
func WithMetrics[V any](m metrics.Metrics) Option[V] {
	return func(c *config[V]) { c.metrics = m }
}

// WithKeyPattern requires every key written by Set to match re.
func WithKeyPattern[V any](re *regexp.Regexp) Option[V] {
	return func(c *config[V]) { c.pattern = re }
}
