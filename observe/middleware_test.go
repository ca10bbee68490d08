package observe

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
)

func TestMiddleware_Wrap(t *testing.T) {
	tracer, rec := newRecordingTracer()
	metrics, reader := newTestMetrics(t)
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("debug", &buf)

	mw := NewMiddleware(tracer, metrics, logger)
	meta := OperationMeta{Kind: "creator_profile", Component: "profilectx"}

	var sawSpan bool
	wrapped := mw.Wrap(func(ctx context.Context, got OperationMeta) BuildResult {
		sawSpan = rec.Started() != nil && len(rec.Started()) == 1
		if got != meta {
			t.Errorf("meta = %+v, want %+v", got, meta)
		}
		return BuildResult{
			Source:   SourceFallback,
			Fallback: true,
			Reason:   "store_error",
			Err:      errors.New("connection refused"),
			Level:    LevelError,
		}
	})

	result := wrapped(context.Background(), meta)

	if result.Reason != "store_error" {
		t.Errorf("result not passed through: %+v", result)
	}
	if !sawSpan {
		t.Error("build should run inside a started span")
	}
	if len(rec.Ended()) != 1 {
		t.Errorf("ended spans = %d, want 1", len(rec.Ended()))
	}

	rm := collect(t, reader)
	if got := sumOf(t, rm, MetricBuildFallbacks); got != 1 {
		t.Errorf("%s = %d, want 1", MetricBuildFallbacks, got)
	}

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("log entries = %d, want 1", len(entries))
	}
	e := entries[0]
	if e["level"] != "error" || e["reason"] != "store_error" || e["error"] != "connection refused" {
		t.Errorf("log entry = %v", e)
	}
	if e["msg"] != "context build fell back" || e["op.kind"] != "creator_profile" {
		t.Errorf("log entry = %v", e)
	}
	if _, ok := e["trace_id"]; !ok {
		t.Error("log entry should carry the build span's trace id")
	}
}

func TestMiddleware_LogLevelFollowsResult(t *testing.T) {
	var buf bytes.Buffer
	mw := NewMiddleware(nil, nil, NewLoggerWithWriter("info", &buf))

	mw.Wrap(func(context.Context, OperationMeta) BuildResult {
		return BuildResult{Source: SourceHit, Level: LevelDebug}
	})(context.Background(), OperationMeta{Kind: "creator_profile"})

	if buf.Len() != 0 {
		t.Errorf("debug-level hit should be filtered at info: %s", buf.String())
	}
}

func TestMiddleware_Concurrent(t *testing.T) {
	metrics, reader := newTestMetrics(t)
	mw := NewMiddleware(nil, metrics, nil)
	wrapped := mw.Wrap(func(context.Context, OperationMeta) BuildResult {
		return BuildResult{Source: SourceHit}
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wrapped(context.Background(), OperationMeta{Kind: "creator_profile"})
		}()
	}
	wg.Wait()

	if got := sumOf(t, collect(t, reader), MetricCacheHits); got != 50 {
		t.Errorf("%s = %d, want 50", MetricCacheHits, got)
	}
}
