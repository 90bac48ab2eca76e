package generator

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/synthetic-sales-generator/sales"
)

const (
	DefaultInitialBurst = 100
	DefaultInterval     = 5 * time.Second
	DefaultMinBatchSize = 1
	DefaultMaxBatchSize = 5

	phaseBurst = "burst"
	phaseTick  = "tick"

	logMsgConnecting          = "connecting to store"
	logMsgConnected           = "connected to store"
	logMsgConnectFailed       = "connecting to store failed"
	logMsgInitialBurstStarted = "initial burst started"
	logMsgInitialBurstDone    = "initial burst completed"
	logMsgInitialBurstFailed  = "initial burst failed"
	logMsgSaleGenerated       = "sale generated"
	logMsgBatchGenerated      = "batch generated"
	logMsgBatchFailed         = "batch failed"
	logMsgShuttingDown        = "shutting down"
	logAttrError              = "error"
	logAttrErrorType          = "error_type"
	logAttrBatchID            = "batch_id"
	logAttrPhase              = "phase"
	logAttrCount              = "count"
	logAttrBatchSize          = "batch_size"
	logAttrTotalGenerated     = "total_generated"
	logAttrSaleID             = "sale_id"
	logAttrTotalAmount        = "total_amount"
	logAttrStatus             = "status"
	logAttrIntervalMS         = "interval_ms"
	logAttrDurationMS         = "duration_ms"
)

// Store is the store collaborator of a Scheduler.
type Store interface {
	Ping(ctx context.Context) error
	ReferenceSnapshot(ctx context.Context) (sales.ReferenceSnapshot, error)
	Insert(ctx context.Context, sale sales.SyntheticSale) (sales.PersistedSale, error)
}

// Notifier announces persisted sales. Notify must not block on the remote side.
type Notifier interface {
	Notify(ctx context.Context, saleID string, amount decimal.Decimal)
}

// Scheduler owns the generation timeline and the running total of generated sales.
// Units are always generated one after another on the goroutine calling Run.
type Scheduler struct {
	store            Store
	notifier         Notifier
	rng              sales.RandomSource
	initialBurst     int
	interval         time.Duration
	minBatchSize     int
	maxBatchSize     int
	logger           sales.Logger
	metricsCollector sales.MetricsCollector
	state            atomic.Int32
	generated        atomic.Int64
}

// NewScheduler creates a Scheduler with the default cadence: 100 sales up front,
// then a batch of 1..5 sales every 5 seconds.
func NewScheduler(store Store, notifier Notifier, options ...Option) (*Scheduler, error) {
	if store == nil {
		return nil, ErrNilStore
	}

	if notifier == nil {
		return nil, ErrNilNotifier
	}

	s := &Scheduler{
		store:        store,
		notifier:     notifier,
		rng:          globalSource{},
		initialBurst: DefaultInitialBurst,
		interval:     DefaultInterval,
		minBatchSize: DefaultMinBatchSize,
		maxBatchSize: DefaultMaxBatchSize,
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// State returns the current lifecycle phase.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// Generated returns the number of sales generated since Run was called.
func (s *Scheduler) Generated() int64 {
	return s.generated.Load()
}

// Run connects, generates the initial burst, and then generates one batch per tick until ctx is cancelled.
//
// It returns an error joined with sales.ErrFatalConnect if the store cannot be reached, and one joined
// with ErrInitialBurstFailed if any unit of the burst fails. Cancellation is a normal shutdown and returns nil.
// A batch still running when the next tick is due delays that tick; ticks are skipped, batches never overlap.
// A unit already started when ctx is cancelled completes; no further unit is started.
func (s *Scheduler) Run(ctx context.Context) error {
	defer s.setState(StateTerminated)

	if err := s.connect(ctx); err != nil {
		return err
	}

	if err := s.runInitialBurst(ctx); err != nil {
		if ctx.Err() != nil {
			s.shutdown()
			return nil
		}

		return err
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.setState(StateIdle)

	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return nil

		case <-ticker.C:
			s.setState(StateGeneratingBatch)
			s.runBatch(ctx)
			s.setState(StateIdle)
		}
	}
}

func (s *Scheduler) connect(ctx context.Context) error {
	s.setState(StateConnecting)
	s.logInfo(logMsgConnecting)

	if err := s.store.Ping(ctx); err != nil {
		s.logError(logMsgConnectFailed, err)
		return errors.Join(sales.ErrFatalConnect, err)
	}

	s.logInfo(logMsgConnected)

	return nil
}

func (s *Scheduler) runInitialBurst(ctx context.Context) error {
	s.setState(StateInitialBurst)
	s.logInfo(logMsgInitialBurstStarted, logAttrCount, s.initialBurst)

	batchID := newBatchID()
	start := time.Now()

	for i := 0; i < s.initialBurst; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if _, err := s.generateUnit(ctx, batchID, phaseBurst); err != nil {
			s.recordBatchFailure(phaseBurst, err)
			s.logError(logMsgInitialBurstFailed, err,
				logAttrBatchID, batchID.String(),
				logAttrCount, i,
				logAttrErrorType, sales.ErrorType(err),
			)

			return errors.Join(ErrInitialBurstFailed, err)
		}
	}

	duration := time.Since(start)
	s.recordBatchDuration(phaseBurst, duration)
	s.logInfo(logMsgInitialBurstDone,
		logAttrBatchID, batchID.String(),
		logAttrCount, s.initialBurst,
		logAttrTotalGenerated, s.Generated(),
		logAttrDurationMS, toMilliseconds(duration),
	)

	return nil
}

// runBatch generates one batch and abandons it at the first failing unit.
// After cancellation no further unit is started.
func (s *Scheduler) runBatch(ctx context.Context) {
	batchID := newBatchID()
	batchSize := sales.RandomIntInRange(s.minBatchSize, s.maxBatchSize, s.rng)
	start := time.Now()

	s.recordValue(sales.MetricBatchSize, float64(batchSize))

	for i := 0; i < batchSize; i++ {
		if ctx.Err() != nil {
			return
		}

		if _, err := s.generateUnit(ctx, batchID, phaseTick); err != nil {
			s.recordBatchFailure(phaseTick, err)
			s.logError(logMsgBatchFailed, err,
				logAttrBatchID, batchID.String(),
				logAttrBatchSize, batchSize,
				logAttrCount, i,
				logAttrErrorType, sales.ErrorType(err),
			)

			return
		}
	}

	duration := time.Since(start)
	s.recordBatchDuration(phaseTick, duration)
	s.logInfo(logMsgBatchGenerated,
		logAttrBatchID, batchID.String(),
		logAttrCount, batchSize,
		logAttrTotalGenerated, s.Generated(),
		logAttrDurationMS, toMilliseconds(duration),
	)
}

// generateUnit reads a fresh snapshot, synthesizes, persists, and hands the sale to the notifier.
// The store calls are detached from ctx cancellation so a shutdown signal never aborts a started unit.
func (s *Scheduler) generateUnit(ctx context.Context, batchID uuid.UUID, phase string) (sales.PersistedSale, error) {
	storeCtx := context.WithoutCancel(ctx)

	snapshot, err := s.store.ReferenceSnapshot(storeCtx)
	if err != nil {
		return sales.PersistedSale{}, err
	}

	sale, err := sales.SynthesizeFromSnapshot(snapshot, s.rng)
	if err != nil {
		return sales.PersistedSale{}, err
	}

	persisted, err := s.store.Insert(storeCtx, sale)
	if err != nil {
		return sales.PersistedSale{}, err
	}

	s.notifier.Notify(ctx, persisted.SaleID, persisted.StoredTotalAmount)

	total := s.generated.Add(1)

	s.recordSaleGenerated(phase, persisted.StoredStatus, total)
	s.logInfo(logMsgSaleGenerated,
		logAttrBatchID, batchID.String(),
		logAttrPhase, phase,
		logAttrSaleID, persisted.SaleID,
		logAttrTotalAmount, persisted.StoredTotalAmount.String(),
		logAttrStatus, string(persisted.StoredStatus),
	)

	return persisted, nil
}

func (s *Scheduler) shutdown() {
	s.setState(StateShuttingDown)
	s.logInfo(logMsgShuttingDown, logAttrTotalGenerated, s.Generated(), logAttrIntervalMS, s.interval.Milliseconds())
}

func (s *Scheduler) setState(state State) {
	s.state.Store(int32(state))
}

// newBatchID returns a time-ordered id correlating the log lines of one batch.
func newBatchID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}

	return id
}

// globalSource draws from the auto-seeded top-level generator of math/rand/v2.
type globalSource struct{}

func (globalSource) Float64() float64 {
	return rand.Float64() //nolint:gosec // synthetic workload, not security relevant
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
