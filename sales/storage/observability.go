package storage

import (
	"math"
	"time"

	"github.com/AntonStoeckl/synthetic-sales-generator/sales"
)

// logQueryWithDuration logs SQL queries with execution time at debug level if the logger is configured.
func (s *Store) logQueryWithDuration(
	sqlQuery string,
	action string,
	duration time.Duration,
) {
	if s.logger != nil {
		s.logger.Debug(logMsgSQLExecuted+action, logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// logOperation logs operational information at info level if the logger is configured.
func (s *Store) logOperation(action string, args ...any) {
	if s.logger != nil {
		s.logger.Info(logMsgOperation+action, args...)
	}
}

// logError logs error information at the error level if the logger is configured.
func (s *Store) logError(
	message string,
	err error,
	args ...any,
) {
	if s.logger != nil {
		allArgs := []any{logAttrError, err.Error()}
		allArgs = append(allArgs, args...)
		s.logger.Error(message, allArgs...)
	}
}

// reportDivergence surfaces a persisted sale whose stored total or status differs from the synthesized one.
func (s *Store) reportDivergence(persisted sales.PersistedSale) {
	if s.logger != nil {
		s.logger.Warn(
			logMsgStoredValuesDiverged,
			logAttrError, sales.ErrStoredValuesDiverged.Error(),
			logAttrSaleID, persisted.SaleID,
			logAttrSynthesizedTotal, persisted.TotalAmount.String(),
			logAttrStoredTotal, persisted.StoredTotalAmount.String(),
			logAttrSynthesizedStatus, string(persisted.Status),
			logAttrStoredStatus, string(persisted.StoredStatus),
		)
	}

	if s.metricsCollector != nil {
		s.metricsCollector.IncrementCounter(sales.MetricStoredValueDivergence, map[string]string{})
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
