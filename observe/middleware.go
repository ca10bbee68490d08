package observe

import (
	"context"
	"time"
)

// Build sources.
const (
	SourceHit      = "hit"
	SourceStore    = "store"
	SourceFallback = "fallback"
	SourceShared   = "shared"
)

// BuildResult is what an instrumented build reports back.
type BuildResult struct {
	// Source is where the returned text came from (SourceHit, SourceStore,
	// SourceFallback or SourceShared).
	Source string

	// CacheMiss is true when the cache was consulted and had no fresh entry.
	// Builds rejected before the cache lookup report neither a hit nor a miss.
	CacheMiss bool

	// Fallback is true when the returned text is a fallback string.
	Fallback bool

	// Reason is a stable label for why a fallback was produced.
	Reason string

	// Err is the swallowed cause, if any. It is logged, never returned.
	Err error

	// Level is the log level the build should be reported at.
	Level LogLevel
}

// BuildFunc is one context build.
type BuildFunc func(ctx context.Context, meta OperationMeta) BuildResult

// Middleware wraps builds with tracing, metrics and logging.
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe BuildFunc.
//   - Context: Propagates context through tracing spans.
//   - Errors: The wrapped result is returned unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware. nil components are replaced with no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = NewTracer(nil)
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{tracer: tracer, metrics: metrics, logger: logger}
}

// Wrap wraps fn with a span, build metrics and one log line.
func (m *Middleware) Wrap(fn BuildFunc) BuildFunc {
	return func(ctx context.Context, meta OperationMeta) BuildResult {
		ctx, span := m.tracer.StartSpan(ctx, meta)
		start := time.Now()

		result := fn(ctx, meta)

		duration := time.Since(start)
		m.tracer.EndSpan(span, result)
		m.metrics.RecordBuild(ctx, meta, duration, result)

		fields := []Field{
			{Key: "source", Value: result.Source},
			{Key: "duration_ms", Value: float64(duration.Microseconds()) / 1000},
		}
		msg := "context build completed"
		if result.Fallback {
			msg = "context build fell back"
			fields = append(fields, Field{Key: "reason", Value: result.Reason})
		}
		if result.Err != nil {
			fields = append(fields, Field{Key: "error", Value: result.Err})
		}
		Log(ctx, m.logger.WithOperation(meta), result.Level, msg, fields...)

		return result
	}
}

// Metrics returns the middleware's metrics recorder.
func (m *Middleware) Metrics() Metrics { return m.metrics }

// Logger returns the middleware's logger.
func (m *Middleware) Logger() Logger { return m.logger }

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs *Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}
