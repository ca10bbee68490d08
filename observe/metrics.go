package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric instrument names.
const (
	MetricBuildTotal         = "creatorctx.build.total"
	MetricBuildFallbacks     = "creatorctx.build.fallbacks"
	MetricBuildDuration      = "creatorctx.build.duration_ms"
	MetricCacheHits          = "creatorctx.cache.hits"
	MetricCacheMisses        = "creatorctx.cache.misses"
	MetricCacheInvalidations = "creatorctx.cache.invalidations"
)

// Metrics records build and cache metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordBuild records one build with its duration and result.
	RecordBuild(ctx context.Context, meta OperationMeta, duration time.Duration, result BuildResult)

	// RecordInvalidation records an explicit cache invalidation. all is true
	// when the whole cache was cleared.
	RecordInvalidation(ctx context.Context, keys int, all bool)
}

type metricsImpl struct {
	totalCount    metric.Int64Counter
	fallbackCount metric.Int64Counter
	durationHist  metric.Float64Histogram
	cacheHits     metric.Int64Counter
	cacheMisses   metric.Int64Counter
	invalidations metric.Int64Counter
}

// NewMetrics creates the build instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	m := &metricsImpl{}
	var err error

	if m.totalCount, err = meter.Int64Counter(MetricBuildTotal,
		metric.WithDescription("Total number of context builds"),
		metric.WithUnit("{build}"),
	); err != nil {
		return nil, err
	}

	if m.fallbackCount, err = meter.Int64Counter(MetricBuildFallbacks,
		metric.WithDescription("Builds that returned a fallback string"),
		metric.WithUnit("{build}"),
	); err != nil {
		return nil, err
	}

	if m.durationHist, err = meter.Float64Histogram(MetricBuildDuration,
		metric.WithDescription("Context build duration in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}

	if m.cacheHits, err = meter.Int64Counter(MetricCacheHits,
		metric.WithDescription("Builds served from the profile context cache"),
		metric.WithUnit("{lookup}"),
	); err != nil {
		return nil, err
	}

	if m.cacheMisses, err = meter.Int64Counter(MetricCacheMisses,
		metric.WithDescription("Builds that missed the profile context cache"),
		metric.WithUnit("{lookup}"),
	); err != nil {
		return nil, err
	}

	if m.invalidations, err = meter.Int64Counter(MetricCacheInvalidations,
		metric.WithDescription("Explicit cache invalidations"),
		metric.WithUnit("{call}"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *metricsImpl) RecordBuild(ctx context.Context, meta OperationMeta, duration time.Duration, result BuildResult) {
	kind := attribute.String("creatorctx.kind", meta.Kind)
	opt := metric.WithAttributes(kind, attribute.String("creatorctx.source", result.Source))

	m.totalCount.Add(ctx, 1, opt)
	m.durationHist.Record(ctx, float64(duration.Microseconds())/1000, opt)

	switch {
	case result.Source == SourceHit:
		m.cacheHits.Add(ctx, 1, metric.WithAttributes(kind))
	case result.CacheMiss:
		m.cacheMisses.Add(ctx, 1, metric.WithAttributes(kind))
	}

	if result.Fallback {
		m.fallbackCount.Add(ctx, 1, metric.WithAttributes(kind,
			attribute.String("creatorctx.reason", result.Reason)))
	}
}

func (m *metricsImpl) RecordInvalidation(ctx context.Context, keys int, all bool) {
	m.invalidations.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("creatorctx.all", all),
		attribute.Int("creatorctx.keys", keys),
	))
}

// NopMetrics returns a Metrics that records nothing.
func NopMetrics() Metrics { return nopMetrics{} }

type nopMetrics struct{}

func (nopMetrics) RecordBuild(context.Context, OperationMeta, time.Duration, BuildResult) {}
func (nopMetrics) RecordInvalidation(context.Context, int, bool)                         {}

// Cache gauge names.
const (
	MetricCacheEntries        = "creatorctx.cache.entries"
	MetricCacheExpiredEntries = "creatorctx.cache.expired_entries"
)

// CacheSizer reports the current cache population.
type CacheSizer func() (entries, expired int)

// RegisterCacheGauges exposes the cache population as observable gauges read
// at collection time.
func RegisterCacheGauges(meter metric.Meter, sizer CacheSizer) error {
	entries, err := meter.Int64ObservableGauge(MetricCacheEntries,
		metric.WithDescription("Entries held by the profile context cache, expired included"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return err
	}
	expired, err := meter.Int64ObservableGauge(MetricCacheExpiredEntries,
		metric.WithDescription("Cache entries past their TTL and not yet replaced"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return err
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		n, stale := sizer()
		o.ObserveInt64(entries, int64(n))
		o.ObserveInt64(expired, int64(stale))
		return nil
	}, entries, expired)
	return err
}
