package generator

import (
	"errors"
	"time"

	"github.com/AntonStoeckl/synthetic-sales-generator/sales"
)

var (
	// ErrNilStore is returned when NewScheduler is called without a store.
	ErrNilStore = errors.New("store must not be nil")

	// ErrNilNotifier is returned when NewScheduler is called without a notifier.
	ErrNilNotifier = errors.New("notifier must not be nil")

	// ErrInvalidInitialBurst is returned for a negative initial burst size.
	ErrInvalidInitialBurst = errors.New("initial burst must not be negative")

	// ErrInvalidInterval is returned for a non-positive tick interval.
	ErrInvalidInterval = errors.New("interval must be positive")

	// ErrInvalidBatchSizeRange is returned when min < 1 or max < min.
	ErrInvalidBatchSizeRange = errors.New("batch size range is invalid")

	// ErrNilRandomSource is returned when a nil random source is configured.
	ErrNilRandomSource = errors.New("random source must not be nil")

	// ErrInitialBurstFailed is returned by Run when a unit of the initial burst failed.
	ErrInitialBurstFailed = errors.New("initial burst failed")
)

// Option defines a functional option for configuring Scheduler.
type Option func(*Scheduler) error

// WithInitialBurst sets the number of sales generated synchronously before the periodic phase.
func WithInitialBurst(count int) Option {
	return func(s *Scheduler) error {
		if count < 0 {
			return ErrInvalidInitialBurst
		}

		s.initialBurst = count

		return nil
	}
}

// WithInterval sets the tick period of the periodic phase.
func WithInterval(interval time.Duration) Option {
	return func(s *Scheduler) error {
		if interval <= 0 {
			return ErrInvalidInterval
		}

		s.interval = interval

		return nil
	}
}

// WithBatchSizeRange sets the closed range the per-tick batch size is drawn from.
func WithBatchSizeRange(minSize, maxSize int) Option {
	return func(s *Scheduler) error {
		if minSize < 1 || maxSize < minSize {
			return ErrInvalidBatchSizeRange
		}

		s.minBatchSize = minSize
		s.maxBatchSize = maxSize

		return nil
	}
}

// WithRandomSource replaces the random source used for batch sizes and synthesis.
func WithRandomSource(rng sales.RandomSource) Option {
	return func(s *Scheduler) error {
		if rng == nil {
			return ErrNilRandomSource
		}

		s.rng = rng

		return nil
	}
}

// WithLogger sets the logger for the Scheduler.
func WithLogger(logger sales.Logger) Option {
	return func(s *Scheduler) error {
		s.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Scheduler.
func WithMetrics(collector sales.MetricsCollector) Option {
	return func(s *Scheduler) error {
		s.metricsCollector = collector
		return nil
	}
}
