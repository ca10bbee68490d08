package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Logger is the structured logger used by the builders and the HTTP layer.
// Implementations must be safe for concurrent use and must never panic.
type Logger interface {
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	Debug(ctx context.Context, msg string, fields ...Field)
	WithOperation(meta OperationMeta) Logger
}

// Field is one structured log attribute.
type Field struct {
	Key   string
	Value any
}

// LogLevel represents a logging level.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"debug", "info", "warn", "error"}

// ParseLogLevel parses a string log level. Unknown values map to LevelInfo.
func ParseLogLevel(s string) LogLevel {
	for i, name := range levelNames {
		if s == name {
			return LogLevel(i)
		}
	}
	return LevelInfo
}

func (l LogLevel) String() string {
	if l < LevelDebug || l > LevelError {
		return levelNames[LevelInfo]
	}
	return levelNames[l]
}

// jsonLogger writes one JSON object per line. Keys appear in a fixed order:
// timestamp, level, msg, trace and span ids, operation attrs, then fields.
type jsonLogger struct {
	min   LogLevel
	out   io.Writer
	mu    *sync.Mutex
	attrs []Field
}

// NewLogger returns a JSON logger writing to stderr.
func NewLogger(level string) Logger {
	return NewLoggerWithWriter(level, os.Stderr)
}

// NewLoggerWithWriter returns a JSON logger writing to w.
func NewLoggerWithWriter(level string, w io.Writer) Logger {
	return &jsonLogger{min: ParseLogLevel(level), out: w, mu: &sync.Mutex{}}
}

// WithOperation returns a logger that stamps every entry with the operation.
// The child shares the parent's writer lock.
func (l *jsonLogger) WithOperation(meta OperationMeta) Logger {
	attrs := append([]Field(nil), l.attrs...)
	attrs = append(attrs, Field{Key: "op.kind", Value: meta.Kind})
	if meta.Component != "" {
		attrs = append(attrs, Field{Key: "op.component", Value: meta.Component})
	}
	return &jsonLogger{min: l.min, out: l.out, mu: l.mu, attrs: attrs}
}

func (l *jsonLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.write(ctx, LevelInfo, msg, fields)
}

func (l *jsonLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.write(ctx, LevelWarn, msg, fields)
}

func (l *jsonLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.write(ctx, LevelError, msg, fields)
}

func (l *jsonLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.write(ctx, LevelDebug, msg, fields)
}

func (l *jsonLogger) write(ctx context.Context, level LogLevel, msg string, fields []Field) {
	if level < l.min {
		return
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	seen := make(map[string]bool, len(l.attrs)+len(fields)+5)
	put := func(key string, value any) {
		if seen[key] {
			return
		}
		seen[key] = true
		if redactedFields[key] {
			value = "[REDACTED]"
		} else if err, ok := value.(error); ok {
			value = err.Error()
		}
		data, err := json.Marshal(value)
		if err != nil {
			data, _ = json.Marshal(err.Error())
		}
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(key)
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(data)
	}

	put("timestamp", time.Now().UTC().Format(time.RFC3339Nano))
	put("level", level.String())
	put("msg", msg)
	if ctx != nil {
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			put("trace_id", sc.TraceID().String())
			put("span_id", sc.SpanID().String())
		}
	}
	for _, f := range l.attrs {
		put(f.Key, f.Value)
	}
	for _, f := range fields {
		put(f.Key, f.Value)
	}
	buf.WriteString("}\n")

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.out.Write(buf.Bytes())
}

// Log writes msg at the given level.
func Log(ctx context.Context, logger Logger, level LogLevel, msg string, fields ...Field) {
	switch level {
	case LevelDebug:
		logger.Debug(ctx, msg, fields...)
	case LevelWarn:
		logger.Warn(ctx, msg, fields...)
	case LevelError:
		logger.Error(ctx, msg, fields...)
	default:
		logger.Info(ctx, msg, fields...)
	}
}

// NopLogger returns a logger that discards everything.
func NopLogger() Logger { return nopLogger{} }

type nopLogger struct{}

func (nopLogger) Info(context.Context, string, ...Field)  {}
func (nopLogger) Warn(context.Context, string, ...Field)  {}
func (nopLogger) Error(context.Context, string, ...Field) {}
func (nopLogger) Debug(context.Context, string, ...Field) {}
func (l nopLogger) WithOperation(OperationMeta) Logger    { return l }
