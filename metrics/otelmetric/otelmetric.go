// Package otelmetric exports cache signals through the OpenTelemetry metric API.
package otelmetric

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/IvanBrykalov/ttlcache/metrics"
)

const scope = "github.com/IvanBrykalov/ttlcache"

// Instrument names.
const (
	NameHits      = "ttlcache.hits"
	NameMisses    = "ttlcache.misses"
	NameEvictions = "ttlcache.evictions"
	NameSize      = "ttlcache.size"
)

// Adapter implements metrics.Metrics with OTel instruments.
type Adapter struct {
	hits   metric.Int64Counter
	misses metric.Int64Counter
	evicts metric.Int64Counter
	size   metric.Int64Gauge

	set        metric.MeasurementOption
	byCapacity metric.MeasurementOption
	byTTL      metric.MeasurementOption
}

// New creates the instruments on mp (nil => the global provider).
// attrs are attached to every measurement, e.g. attribute.String("cache", "users").
func New(mp metric.MeterProvider, attrs ...attribute.KeyValue) (*Adapter, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(scope)

	hits, err := meter.Int64Counter(NameHits,
		metric.WithDescription("Cache hits"), metric.WithUnit("{hit}"))
	if err != nil {
		return nil, err
	}
	misses, err := meter.Int64Counter(NameMisses,
		metric.WithDescription("Cache misses"), metric.WithUnit("{miss}"))
	if err != nil {
		return nil, err
	}
	evicts, err := meter.Int64Counter(NameEvictions,
		metric.WithDescription("Entries removed by capacity eviction or expiry"), metric.WithUnit("{entry}"))
	if err != nil {
		return nil, err
	}
	size, err := meter.Int64Gauge(NameSize,
		metric.WithDescription("Number of stored entries"), metric.WithUnit("{entry}"))
	if err != nil {
		return nil, err
	}

	withReason := func(r metrics.EvictReason) metric.MeasurementOption {
		all := append(append([]attribute.KeyValue(nil), attrs...), attribute.String("reason", r.String()))
		return metric.WithAttributeSet(attribute.NewSet(all...))
	}
	return &Adapter{
		hits:       hits,
		misses:     misses,
		evicts:     evicts,
		size:       size,
		set:        metric.WithAttributeSet(attribute.NewSet(attrs...)),
		byCapacity: withReason(metrics.EvictCapacity),
		byTTL:      withReason(metrics.EvictTTL),
	}, nil
}

func (a *Adapter) Hit()  { a.hits.Add(context.Background(), 1, a.set) }
func (a *Adapter) Miss() { a.misses.Add(context.Background(), 1, a.set) }

func (a *Adapter) Evict(r metrics.EvictReason) {
	opt := a.byCapacity
	if r == metrics.EvictTTL {
		opt = a.byTTL
	}
	a.evicts.Add(context.Background(), 1, opt)
}

func (a *Adapter) Size(entries int) { a.size.Record(context.Background(), int64(entries), a.set) }

var _ metrics.Metrics = (*Adapter)(nil)
