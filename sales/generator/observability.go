package generator

import (
	"time"

	"github.com/AntonStoeckl/synthetic-sales-generator/sales"
)

// logInfo logs operational information at info level if the logger is configured.
func (s *Scheduler) logInfo(message string, args ...any) {
	if s.logger != nil {
		s.logger.Info(message, args...)
	}
}

// logError logs error information at the error level if the logger is configured.
func (s *Scheduler) logError(message string, err error, args ...any) {
	if s.logger != nil {
		allArgs := []any{logAttrError, err.Error()}
		allArgs = append(allArgs, args...)
		s.logger.Error(message, allArgs...)
	}
}

func (s *Scheduler) recordSaleGenerated(phase string, status sales.Status, total int64) {
	if s.metricsCollector == nil {
		return
	}

	s.metricsCollector.IncrementCounter(sales.MetricSalesGenerated, map[string]string{
		sales.LabelPhase:  phase,
		sales.LabelStatus: string(status),
	})
	s.metricsCollector.RecordValue(sales.MetricCumulativeGenerated, float64(total), map[string]string{})
}

func (s *Scheduler) recordBatchFailure(phase string, err error) {
	if s.metricsCollector != nil {
		s.metricsCollector.IncrementCounter(sales.MetricBatchFailures, map[string]string{
			sales.LabelPhase:     phase,
			sales.LabelErrorType: sales.ErrorType(err),
		})
	}
}

func (s *Scheduler) recordBatchDuration(phase string, duration time.Duration) {
	if s.metricsCollector != nil {
		s.metricsCollector.RecordDuration(sales.MetricBatchDuration, duration, map[string]string{sales.LabelPhase: phase})
	}
}

func (s *Scheduler) recordValue(metric string, value float64) {
	if s.metricsCollector != nil {
		s.metricsCollector.RecordValue(metric, value, map[string]string{})
	}
}
