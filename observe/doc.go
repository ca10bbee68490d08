// Package observe provides the telemetry used by the context builders:
// OpenTelemetry tracing and metrics, a JSON structured logger, and a
// middleware that wraps a single build with all three.
//
// It performs no I/O beyond exporter setup. The builders in profilectx own
// the observer; nothing here knows about profiles or caches beyond labels.
package observe
