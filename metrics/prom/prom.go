// Package prom exports cache signals as Prometheus metrics.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/IvanBrykalov/ttlcache/metrics"
)

// Adapter implements metrics.Metrics with Prometheus counters and a gauge.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	hits   prometheus.Counter
	misses prometheus.Counter
	evicts *prometheus.CounterVec
	size   prometheus.Gauge
}

// New constructs and registers the adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
//
// Registration failures (e.g. a duplicate namespace) are returned.
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) (*Adapter, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: name, Help: help, ConstLabels: constLabels,
		})
	}
	a := &Adapter{
		hits:   counter("hits_total", "Cache hits"),
		misses: counter("misses_total", "Cache misses"),
		evicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: "evictions_total",
			Help: "Entries removed by the eviction policy (capacity) or by expiry (ttl)", ConstLabels: constLabels,
		}, []string{"reason"}),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Subsystem: sub, Name: "size_entries",
			Help: "Number of stored entries", ConstLabels: constLabels,
		}),
	}
	for _, c := range []prometheus.Collector{a.hits, a.misses, a.evicts, a.size} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	// Expose both reasons from the first scrape.
	a.evicts.WithLabelValues(metrics.EvictCapacity.String())
	a.evicts.WithLabelValues(metrics.EvictTTL.String())
	return a, nil
}

// MustNew is New that panics on registration failure.
func MustNew(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	a, err := New(reg, ns, sub, constLabels)
	if err != nil {
		panic(err)
	}
	return a
}

func (a *Adapter) Hit()  { a.hits.Inc() }
func (a *Adapter) Miss() { a.misses.Inc() }

// Evict increments the eviction counter with a reason label.
func (a *Adapter) Evict(r metrics.EvictReason) {
	a.evicts.WithLabelValues(r.String()).Inc()
}

// Size updates the entry gauge.
func (a *Adapter) Size(entries int) { a.size.Set(float64(entries)) }

// Compile-time check: ensure Adapter implements metrics.Metrics.
var _ metrics.Metrics = (*Adapter)(nil)
