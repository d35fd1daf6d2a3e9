package otelmetric

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/IvanBrykalov/ttlcache/metrics"
)

func collect(t *testing.T, r *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, r.Collect(context.Background(), &rm))
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func TestAdapter_Records(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	a, err := New(mp, attribute.String("cache", "users"))
	require.NoError(t, err)

	a.Hit()
	a.Hit()
	a.Miss()
	a.Evict(metrics.EvictCapacity)
	a.Evict(metrics.EvictTTL)
	a.Evict(metrics.EvictTTL)
	a.Size(5)

	got := collect(t, reader)

	hits := got[NameHits].(metricdata.Sum[int64])
	require.Len(t, hits.DataPoints, 1)
	assert.Equal(t, int64(2), hits.DataPoints[0].Value)
	v, ok := hits.DataPoints[0].Attributes.Value("cache")
	assert.True(t, ok)
	assert.Equal(t, "users", v.AsString())

	misses := got[NameMisses].(metricdata.Sum[int64])
	assert.Equal(t, int64(1), misses.DataPoints[0].Value)

	byReason := map[string]int64{}
	for _, dp := range got[NameEvictions].(metricdata.Sum[int64]).DataPoints {
		r, _ := dp.Attributes.Value("reason")
		byReason[r.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{"capacity": 1, "ttl": 2}, byReason)

	size := got[NameSize].(metricdata.Gauge[int64])
	assert.Equal(t, int64(5), size.DataPoints[0].Value)
}

func TestNew_GlobalProvider(t *testing.T) {
	t.Parallel()

	a, err := New(nil)
	require.NoError(t, err)
	a.Hit() // no-op provider must not panic
}
