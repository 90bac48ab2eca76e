// Package oteladapters provides OpenTelemetry adapters for the sales observability interfaces.
//
// MetricsCollector maps sales.MetricsCollector onto instruments of a metric.Meter:
//   - RecordDuration -> Float64Histogram (seconds)
//   - IncrementCounter -> Int64Counter
//   - RecordValue -> Float64Gauge
//
// NewSlogBridgeLogger returns a *slog.Logger, which satisfies sales.Logger, emitting through the global
// OpenTelemetry LoggerProvider.
package oteladapters
