package storage

import (
	"github.com/AntonStoeckl/synthetic-sales-generator/sales"
)

// Option defines a functional option for configuring Store.
type Option func(*Store) error

// WithSalesTableName sets the name of the table synthetic sales are inserted into.
func WithSalesTableName(tableName string) Option {
	return func(s *Store) error {
		if tableName == "" {
			return sales.ErrEmptyTableName
		}

		s.salesTableName = tableName

		return nil
	}
}

// WithReferenceTableNames sets the names of the products, salesmen, and stores tables.
func WithReferenceTableNames(products, salesmen, stores string) Option {
	return func(s *Store) error {
		if products == "" || salesmen == "" || stores == "" {
			return sales.ErrEmptyTableName
		}

		s.productsTableName = products
		s.salesmenTableName = salesmen
		s.storesTableName = stores

		return nil
	}
}

// WithLogger sets the logger for the Store.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL statements with execution timing
// Info level: Reference snapshot sizes
// Warn level: Stored values that differ from the synthesized ones
// Error level: Failed queries and inserts.
func WithLogger(logger sales.Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Store.
func WithMetrics(collector sales.MetricsCollector) Option {
	return func(s *Store) error {
		s.metricsCollector = collector
		return nil
	}
}
