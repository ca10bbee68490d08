package observe

import (
	"context"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumOf(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	m := findMetric(rm, name)
	if m == nil {
		return 0
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("%s: expected Sum[int64], got %T", name, m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestMetrics_RecordBuild(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()
	meta := OperationMeta{Kind: "creator_profile"}

	m.RecordBuild(ctx, meta, 3*time.Millisecond, BuildResult{Source: SourceStore, CacheMiss: true})
	m.RecordBuild(ctx, meta, time.Millisecond, BuildResult{Source: SourceHit})
	m.RecordBuild(ctx, meta, 2*time.Millisecond, BuildResult{
		Source:    SourceFallback,
		CacheMiss: true,
		Fallback:  true,
		Reason:    "not_found",
	})
	// Rejected before the cache was consulted.
	m.RecordBuild(ctx, meta, time.Millisecond, BuildResult{
		Source:   SourceFallback,
		Fallback: true,
		Reason:   "unauthenticated",
	})

	rm := collect(t, reader)

	tests := []struct {
		name string
		want int64
	}{
		{MetricBuildTotal, 4},
		{MetricCacheHits, 1},
		{MetricCacheMisses, 2},
		{MetricBuildFallbacks, 2},
	}
	for _, tt := range tests {
		if got := sumOf(t, rm, tt.name); got != tt.want {
			t.Errorf("%s = %d, want %d", tt.name, got, tt.want)
		}
	}

	hist := findMetric(rm, MetricBuildDuration)
	if hist == nil {
		t.Fatalf("%s not found", MetricBuildDuration)
	}
	h, ok := hist.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("expected Histogram[float64], got %T", hist.Data)
	}
	var count uint64
	for _, dp := range h.DataPoints {
		count += dp.Count
	}
	if count != 3 {
		t.Errorf("duration samples = %d, want 3", count)
	}
}

func TestMetrics_RecordInvalidation(t *testing.T) {
	m, reader := newTestMetrics(t)

	m.RecordInvalidation(context.Background(), 0, true)
	m.RecordInvalidation(context.Background(), 2, false)

	if got := sumOf(t, collect(t, reader), MetricCacheInvalidations); got != 2 {
		t.Errorf("%s = %d, want 2", MetricCacheInvalidations, got)
	}
}

func TestNopMetrics(t *testing.T) {
	m := NopMetrics()
	m.RecordBuild(context.Background(), OperationMeta{Kind: "x"}, time.Millisecond, BuildResult{})
	m.RecordInvalidation(context.Background(), 1, false)
}

func TestRegisterCacheGauges(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	size, stale := 3, 1
	if err := RegisterCacheGauges(mp.Meter("test"), func() (int, int) { return size, stale }); err != nil {
		t.Fatalf("RegisterCacheGauges() error = %v", err)
	}

	gauge := func(rm metricdata.ResourceMetrics, name string) int64 {
		m := findMetric(rm, name)
		if m == nil {
			t.Fatalf("%s not collected", name)
		}
		g, ok := m.Data.(metricdata.Gauge[int64])
		if !ok || len(g.DataPoints) != 1 {
			t.Fatalf("%s: got %T", name, m.Data)
		}
		return g.DataPoints[0].Value
	}

	rm := collect(t, reader)
	if gauge(rm, MetricCacheEntries) != 3 || gauge(rm, MetricCacheExpiredEntries) != 1 {
		t.Error("gauges should report the sizer values")
	}

	size, stale = 0, 0
	rm = collect(t, reader)
	if gauge(rm, MetricCacheEntries) != 0 {
		t.Error("gauges should be read at collection time")
	}
}
