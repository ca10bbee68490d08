package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// OperationMeta describes one instrumented operation.
type OperationMeta struct {
	Kind      string // build kind, e.g. "creator_profile" (required)
	Component string // owning component, e.g. "profilectx" (optional)
}

// SpanName returns the deterministic span name: creatorctx.build.<kind>.
func (m OperationMeta) SpanName() string {
	return "creatorctx.build." + m.Kind
}

// Validate reports whether the metadata is usable.
func (m OperationMeta) Validate() error {
	if m.Kind == "" {
		return ErrMissingOperationKind
	}
	return nil
}

// Tracer wraps OpenTelemetry tracing with build span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for one build.
	StartSpan(ctx context.Context, meta OperationMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording the result.
	EndSpan(span trace.Span, result BuildResult)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer wraps an OpenTelemetry tracer. A nil tracer yields a no-op.
func NewTracer(t trace.Tracer) Tracer {
	if t == nil {
		t = tracenoop.NewTracerProvider().Tracer("noop")
	}
	return &tracerImpl{tracer: t}
}

func (t *tracerImpl) StartSpan(ctx context.Context, meta OperationMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("creatorctx.kind", meta.Kind),
		attribute.Bool("creatorctx.fallback", false),
	}
	if meta.Component != "" {
		attrs = append(attrs, attribute.String("creatorctx.component", meta.Component))
	}

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpan records the source and, for fallbacks, the failure reason.
// A fallback is an expected outcome, so only unexpected errors mark the
// span status as Error.
func (t *tracerImpl) EndSpan(span trace.Span, result BuildResult) {
	span.SetAttributes(attribute.String("creatorctx.source", result.Source))
	if result.Fallback {
		span.SetAttributes(
			attribute.Bool("creatorctx.fallback", true),
			attribute.String("creatorctx.reason", result.Reason),
		)
	}
	if result.Err != nil && result.Level >= LevelError {
		span.SetStatus(codes.Error, result.Err.Error())
		span.RecordError(result.Err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
