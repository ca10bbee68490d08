package observe

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/jonwraymond/creatorcontext/observe/exporters"
)

// Config selects the telemetry backends for the service.
type Config struct {
	ServiceName string
	Version     string
	Tracing     TracingConfig
	Metrics     MetricsConfig
	Logging     LoggingConfig
}

// TracingConfig configures span export for context builds.
type TracingConfig struct {
	Enabled   bool
	Exporter  string  // otlp|stdout|none
	SamplePct float64 // 0.0-1.0
}

// MetricsConfig configures build and cache metric export.
type MetricsConfig struct {
	Enabled  bool
	Exporter string // otlp|prometheus|stdout|none
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Enabled bool
	Level   string // debug|info|warn|error
}

var (
	tracingExporters = []string{"otlp", "stdout", "none", ""}
	metricsExporters = []string{"otlp", "prometheus", "stdout", "none", ""}
	logLevels        = []string{"debug", "info", "warn", "error", ""}
)

// Validate checks only the subsystems that are enabled.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return ErrMissingServiceName
	}
	if t := c.Tracing; t.Enabled {
		if !slices.Contains(tracingExporters, t.Exporter) {
			return fmt.Errorf("%w: %q", ErrInvalidTracingExporter, t.Exporter)
		}
		if t.SamplePct < 0 || t.SamplePct > 1.0 {
			return fmt.Errorf("%w: got %f", ErrInvalidSamplePct, t.SamplePct)
		}
	}
	if m := c.Metrics; m.Enabled && !slices.Contains(metricsExporters, m.Exporter) {
		return fmt.Errorf("%w: %q", ErrInvalidMetricsExporter, m.Exporter)
	}
	if l := c.Logging; l.Enabled && !slices.Contains(logLevels, l.Level) {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, l.Level)
	}
	return nil
}

// Observer owns the tracer, meter and logger handed to the context builders
// and the providers behind them. A disabled subsystem is served by a no-op.
// Observer is safe for concurrent use.
type Observer struct {
	tracer trace.Tracer
	meter  metric.Meter
	logger Logger

	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider

	shutdownOnce sync.Once
	shutdownErr  error
}

// NewObserver builds the providers selected by cfg and installs them as the
// process-wide OTel providers.
func NewObserver(ctx context.Context, cfg Config) (*Observer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.Version),
	))
	if err != nil {
		return nil, fmt.Errorf("observe: resource: %w", err)
	}

	o := &Observer{
		tracer: tracenoop.NewTracerProvider().Tracer("noop"),
		meter:  noop.NewMeterProvider().Meter("noop"),
		logger: NopLogger(),
	}

	if cfg.Tracing.Enabled {
		if o.tp, err = newTracerProvider(ctx, cfg.Tracing, res); err != nil {
			return nil, err
		}
		otel.SetTracerProvider(o.tp)
		o.tracer = o.tp.Tracer(cfg.ServiceName)
	}

	if cfg.Metrics.Enabled {
		if o.mp, err = newMeterProvider(ctx, cfg.Metrics, res); err != nil {
			_ = o.Shutdown(ctx)
			return nil, err
		}
		otel.SetMeterProvider(o.mp)
		o.meter = o.mp.Meter(cfg.ServiceName)
	}

	if cfg.Logging.Enabled {
		o.logger = NewLogger(cfg.Logging.Level)
	}
	return o, nil
}

func newTracerProvider(ctx context.Context, cfg TracingConfig, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	exp, err := exporters.NewTracingExporter(ctx, cfg.Exporter)
	if err != nil {
		return nil, fmt.Errorf("observe: trace exporter: %w", err)
	}
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(samplerFor(cfg.SamplePct))),
	}
	if exp != nil {
		opts = append(opts, sdktrace.WithBatcher(exp))
	}
	return sdktrace.NewTracerProvider(opts...), nil
}

func samplerFor(pct float64) sdktrace.Sampler {
	switch {
	case pct >= 1.0:
		return sdktrace.AlwaysSample()
	case pct <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(pct)
	}
}

func newMeterProvider(ctx context.Context, cfg MetricsConfig, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	reader, err := exporters.NewMetricsReader(ctx, cfg.Exporter)
	if err != nil {
		return nil, fmt.Errorf("observe: metrics reader: %w", err)
	}
	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	if reader != nil {
		opts = append(opts, sdkmetric.WithReader(reader))
	}
	return sdkmetric.NewMeterProvider(opts...), nil
}

func (o *Observer) Tracer() trace.Tracer { return o.tracer }
func (o *Observer) Meter() metric.Meter  { return o.meter }
func (o *Observer) Logger() Logger       { return o.logger }

// Shutdown flushes and stops both providers. Later calls return the first
// call's result.
func (o *Observer) Shutdown(ctx context.Context) error {
	o.shutdownOnce.Do(func() {
		var errs []error
		if o.tp != nil {
			if err := o.tp.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("observe: tracer shutdown: %w", err))
			}
		}
		if o.mp != nil {
			if err := o.mp.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("observe: meter shutdown: %w", err))
			}
		}
		o.shutdownErr = errors.Join(errs...)
	})
	return o.shutdownErr
}
