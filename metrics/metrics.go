// Package metrics defines the observability hooks the cache emits and a
// built-in hit/miss statistics counter.
//
// Adapters for Prometheus (metrics/prom) and OpenTelemetry
// (metrics/otelmetric) implement the same Metrics interface.
package metrics

// EvictReason explains why an entry was removed without an explicit Delete.
type EvictReason int

const (
	// EvictCapacity: removed by the eviction policy to admit a new key.
	EvictCapacity EvictReason = iota
	// EvictTTL: removed because it expired (sweep or lazy check on read).
	EvictTTL
)

// String returns a stable label value.
func (r EvictReason) String() string {
	switch r {
	case EvictTTL:
		return "ttl"
	default:
		return "capacity"
	}
}

// Metrics exposes cache-level observability hooks.
// Implementations must be safe for concurrent use.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason EvictReason)
	Size(entries int)
}

// NoopMetrics is a drop-in Metrics implementation that does nothing.
// It is the default when no observability backend is configured.
type NoopMetrics struct{}

func (NoopMetrics) Hit()              {}
func (NoopMetrics) Miss()             {}
func (NoopMetrics) Evict(EvictReason) {}
func (NoopMetrics) Size(int)          {}

// Ensure NoopMetrics implements the Metrics interface at compile time.
var _ Metrics = NoopMetrics{}

// OrNoop returns m, or NoopMetrics when m is nil.
func OrNoop(m Metrics) Metrics {
	if m == nil {
		return NoopMetrics{}
	}
	return m
}

// multi fans every signal out to several sinks.
type multi []Metrics

// Multi combines sinks; nil entries are skipped.
func Multi(ms ...Metrics) Metrics {
	out := make(multi, 0, len(ms))
	for _, m := range ms {
		if m != nil {
			out = append(out, m)
		}
	}
	switch len(out) {
	case 0:
		return NoopMetrics{}
	case 1:
		return out[0]
	}
	return out
}

func (m multi) Hit() {
	for _, s := range m {
		s.Hit()
	}
}

func (m multi) Miss() {
	for _, s := range m {
		s.Miss()
	}
}

func (m multi) Evict(r EvictReason) {
	for _, s := range m {
		s.Evict(r)
	}
}

func (m multi) Size(n int) {
	for _, s := range m {
		s.Size(n)
	}
}
