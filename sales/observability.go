package sales

import (
	"time"
)

// Logger interface for operational logging, warnings, and error reporting.
// A *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// MetricsCollector interface for collecting generator performance and operational metrics.
type MetricsCollector interface {
	RecordDuration(metric string, duration time.Duration, labels map[string]string)
	IncrementCounter(metric string, labels map[string]string)
	RecordValue(metric string, value float64, labels map[string]string)
}

// Metric names emitted by the generator and the relay.
const (
	MetricSalesGenerated        = "sales_generated_total"
	MetricBatchDuration         = "sales_batch_duration_seconds"
	MetricBatchFailures         = "sales_batch_failures_total"
	MetricBatchSize             = "sales_batch_size"
	MetricCumulativeGenerated   = "sales_generated_cumulative"
	MetricNotifications         = "sales_notifications_total"
	MetricNotificationDuration  = "sales_notification_duration_seconds"
	MetricStoredValueDivergence = "sales_stored_value_divergence_total"
)

// Metric label keys.
const (
	LabelPhase     = "phase"
	LabelStatus    = "status"
	LabelErrorType = "error_type"
	LabelResult    = "result"
)

var metricHelp = map[string]string{
	MetricSalesGenerated:        "Synthetic sales generated, by phase and status.",
	MetricBatchDuration:         "Duration of completed batches in seconds.",
	MetricBatchFailures:         "Abandoned batches, by phase and error type.",
	MetricBatchSize:             "Size of the most recent periodic batch.",
	MetricCumulativeGenerated:   "Sales generated since the process started.",
	MetricNotifications:         "Payment notifications, by result.",
	MetricNotificationDuration:  "Duration of payment notifications in seconds.",
	MetricStoredValueDivergence: "Inserted sales whose stored total or status differed from the synthesized one.",
}

// MetricHelp returns the description of a metric, or its name for unknown metrics.
func MetricHelp(metric string) string {
	if help, ok := metricHelp[metric]; ok {
		return help
	}

	return metric
}
