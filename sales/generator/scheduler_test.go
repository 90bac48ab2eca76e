package generator_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/synthetic-sales-generator/sales"
	"github.com/AntonStoeckl/synthetic-sales-generator/sales/generator"
	. "github.com/AntonStoeckl/synthetic-sales-generator/testutil/helper" //nolint:revive
)

// fakeStore serves a fixed snapshot and fails inserts whose 1-based call number is listed in failInsertCalls.
type fakeStore struct {
	mu              sync.Mutex
	snapshot        sales.ReferenceSnapshot
	pingErr         error
	failInsertCalls map[int]error
	onInsert        func(call int)
	insertCalls     int
	insertCtxErrs   []error
	inserted        []sales.SyntheticSale
}

func (f *fakeStore) Ping(_ context.Context) error {
	return f.pingErr
}

func (f *fakeStore) ReferenceSnapshot(_ context.Context) (sales.ReferenceSnapshot, error) {
	return f.snapshot, nil
}

func (f *fakeStore) Insert(ctx context.Context, sale sales.SyntheticSale) (sales.PersistedSale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.insertCalls++

	if f.onInsert != nil {
		f.onInsert(f.insertCalls)
	}

	f.insertCtxErrs = append(f.insertCtxErrs, ctx.Err())
	if err, ok := f.failInsertCalls[f.insertCalls]; ok {
		return sales.PersistedSale{}, err
	}

	f.inserted = append(f.inserted, sale)

	return sales.PersistedSale{
		SyntheticSale:     sale,
		SaleID:            decimal.NewFromInt(int64(len(f.inserted))).String(),
		StoredTotalAmount: sale.TotalAmount,
		StoredStatus:      sale.Status,
	}, nil
}

func (f *fakeStore) insertedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.inserted)
}

type notification struct {
	saleID string
	amount decimal.Decimal
}

type fakeNotifier struct {
	mu            sync.Mutex
	notifications []notification
}

func (f *fakeNotifier) Notify(_ context.Context, saleID string, amount decimal.Decimal) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.notifications = append(f.notifications, notification{saleID: saleID, amount: amount})
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.notifications)
}

// constantSource always draws the same value.
type constantSource float64

func (c constantSource) Float64() float64 { return float64(c) }

func givenSnapshot() sales.ReferenceSnapshot {
	return sales.ReferenceSnapshot{
		Products: []sales.Product{
			{ID: "1", BasePrice: decimal.RequireFromString("10.00")},
			{ID: "2", BasePrice: decimal.RequireFromString("24.50")},
		},
		Salesmen: []sales.Salesman{{ID: "1"}, {ID: "2"}},
		Stores:   []sales.Store{{ID: "1"}},
	}
}

func runInBackground(ctx context.Context, scheduler *generator.Scheduler) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- scheduler.Run(ctx)
	}()

	return errCh
}

func Test_Scheduler_Run_When_StoreIsUnreachable(t *testing.T) {
	// setup
	store := &fakeStore{snapshot: givenSnapshot(), pingErr: assert.AnError}
	testHandler := NewLogHandlerSpy(false)

	scheduler, err := generator.NewScheduler(store, &fakeNotifier{}, generator.WithLogger(slog.New(testHandler)))
	require.NoError(t, err)

	// act
	runErr := scheduler.Run(context.Background())

	// assert
	assert.ErrorIs(t, runErr, sales.ErrFatalConnect)
	assert.ErrorIs(t, runErr, assert.AnError)
	assert.Equal(t, generator.StateTerminated, scheduler.State())
	assert.Equal(t, 0, store.insertedCount())
	assert.True(t, testHandler.HasErrorLogWithMessage("connecting to store failed").Assert())
}

func Test_Scheduler_Run_When_ProductsAreEmptyDuringInitialBurst(t *testing.T) {
	// setup
	snapshot := givenSnapshot()
	snapshot.Products = nil
	store := &fakeStore{snapshot: snapshot}
	notifier := &fakeNotifier{}

	scheduler, err := generator.NewScheduler(store, notifier, generator.WithInterval(time.Millisecond))
	require.NoError(t, err)

	// act
	runErr := scheduler.Run(context.Background())

	// assert
	assert.ErrorIs(t, runErr, generator.ErrInitialBurstFailed)
	assert.ErrorIs(t, runErr, sales.ErrEmptyReferenceSet)
	assert.Equal(t, 0, store.insertedCount())
	assert.Equal(t, 0, notifier.count())
	assert.Equal(t, generator.StateTerminated, scheduler.State())
}

func Test_Scheduler_Run_When_AnInsertFailsDuringInitialBurst(t *testing.T) {
	// setup
	store := &fakeStore{
		snapshot:        givenSnapshot(),
		failInsertCalls: map[int]error{51: sales.ErrConstraintViolation},
	}
	metricsSpy := NewMetricsCollectorSpy(true)

	scheduler, err := generator.NewScheduler(store, &fakeNotifier{}, generator.WithMetrics(metricsSpy))
	require.NoError(t, err)

	// act
	runErr := scheduler.Run(context.Background())

	// assert
	assert.ErrorIs(t, runErr, generator.ErrInitialBurstFailed)
	assert.ErrorIs(t, runErr, sales.ErrConstraintViolation)
	assert.Equal(t, 50, store.insertedCount(), "no unit is generated after the failing one")
	assert.Equal(t, 1, metricsSpy.CountCounterRecords(sales.MetricBatchFailures, map[string]string{
		sales.LabelPhase:     "burst",
		sales.LabelErrorType: "constraint_violation",
	}))
}

func Test_Scheduler_Run_GeneratesInitialBurstThenIdles(t *testing.T) {
	// setup
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := &fakeStore{snapshot: givenSnapshot()}
	notifier := &fakeNotifier{}
	testHandler := NewLogHandlerSpy(false)

	scheduler, err := generator.NewScheduler(
		store,
		notifier,
		generator.WithInterval(time.Hour),
		generator.WithLogger(slog.New(testHandler)),
	)
	require.NoError(t, err)

	// act
	errCh := runInBackground(ctx, scheduler)

	// assert
	assert.Eventually(t, func() bool {
		return scheduler.State() == generator.StateIdle
	}, 5*time.Second, time.Millisecond)

	assert.Equal(t, 100, store.insertedCount())
	assert.Equal(t, 100, notifier.count())
	assert.Equal(t, int64(100), scheduler.Generated())
	assert.Equal(t, 100, testHandler.CountLogsWithMessage(slog.LevelInfo, "sale generated"))
	assert.True(t, testHandler.HasInfoLogWithMessage("initial burst completed").WithAttrValue("count", "100").Assert())

	cancel()
	require.NoError(t, <-errCh)
	assert.Equal(t, generator.StateTerminated, scheduler.State())
	assert.True(t, testHandler.HasInfoLogWithMessage("shutting down").WithAttrValue("total_generated", "100").Assert())
}

func Test_Scheduler_Run_NotifiesWithStoredValues(t *testing.T) {
	// setup
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := &fakeStore{snapshot: givenSnapshot()}
	notifier := &fakeNotifier{}

	scheduler, err := generator.NewScheduler(store, notifier, generator.WithInitialBurst(3), generator.WithInterval(time.Hour))
	require.NoError(t, err)

	// act
	errCh := runInBackground(ctx, scheduler)
	assert.Eventually(t, func() bool { return scheduler.State() == generator.StateIdle }, 5*time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-errCh)

	// assert
	require.Equal(t, 3, notifier.count())
	for i, n := range notifier.notifications {
		assert.Equal(t, decimal.NewFromInt(int64(i+1)).String(), n.saleID, "notifications follow generation order")
		assert.True(t, store.inserted[i].TotalAmount.Equal(n.amount))
	}
}

func Test_Scheduler_Run_IsolatesFailingTicks(t *testing.T) {
	// setup
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := &fakeStore{
		snapshot:        givenSnapshot(),
		failInsertCalls: map[int]error{1: sales.ErrStoreUnavailable, 3: sales.ErrConstraintViolation},
	}
	testHandler := NewLogHandlerSpy(false)
	metricsSpy := NewMetricsCollectorSpy(true)

	scheduler, err := generator.NewScheduler(
		store,
		&fakeNotifier{},
		generator.WithInitialBurst(0),
		generator.WithInterval(5*time.Millisecond),
		generator.WithBatchSizeRange(1, 1),
		generator.WithLogger(slog.New(testHandler)),
		generator.WithMetrics(metricsSpy),
	)
	require.NoError(t, err)

	// act
	errCh := runInBackground(ctx, scheduler)

	// assert
	assert.Eventually(t, func() bool {
		return store.insertedCount() >= 3
	}, 5*time.Second, time.Millisecond, "the loop keeps ticking after failed batches")

	cancel()
	require.NoError(t, <-errCh)

	assert.Equal(t, 2, testHandler.CountLogsWithMessage(slog.LevelError, "batch failed"))
	assert.True(t, testHandler.HasErrorLogWithMessage("batch failed").WithAttrValue("error_type", "store_unavailable").Assert())
	assert.Equal(t, 1, metricsSpy.CountCounterRecords(sales.MetricBatchFailures, map[string]string{
		sales.LabelPhase:     "tick",
		sales.LabelErrorType: "constraint_violation",
	}))
}

func Test_Scheduler_Run_DrawsBatchSizeFromRange(t *testing.T) {
	testCases := []struct {
		name              string
		draw              float64
		expectedBatchSize string
	}{
		{name: "lowest draw gives the minimum", draw: 0, expectedBatchSize: "1"},
		{name: "highest draw gives the maximum", draw: 0.999999, expectedBatchSize: "5"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// setup
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			testHandler := NewLogHandlerSpy(false)
			metricsSpy := NewMetricsCollectorSpy(true)

			scheduler, err := generator.NewScheduler(
				&fakeStore{snapshot: givenSnapshot()},
				&fakeNotifier{},
				generator.WithInitialBurst(0),
				generator.WithInterval(5*time.Millisecond),
				generator.WithRandomSource(constantSource(tc.draw)),
				generator.WithLogger(slog.New(testHandler)),
				generator.WithMetrics(metricsSpy),
			)
			require.NoError(t, err)

			// act
			errCh := runInBackground(ctx, scheduler)
			assert.Eventually(t, func() bool {
				return testHandler.HasInfoLogWithMessage("batch generated").Assert()
			}, 5*time.Second, time.Millisecond)
			cancel()
			require.NoError(t, <-errCh)

			// assert
			assert.True(t, testHandler.HasInfoLogWithMessage("batch generated").WithAttrValue("count", tc.expectedBatchSize).Assert())
			assert.True(t, metricsSpy.HasDurationRecord(sales.MetricBatchDuration))

			batchSize, ok := metricsSpy.LastValue(sales.MetricBatchSize)
			require.True(t, ok)
			assert.Equal(t, tc.expectedBatchSize, decimal.NewFromFloat(batchSize).String())
		})
	}
}

func Test_Scheduler_Run_ShutsDownPromptlyWhileIdle(t *testing.T) {
	// setup
	ctx, cancel := context.WithCancel(context.Background())

	scheduler, err := generator.NewScheduler(
		&fakeStore{snapshot: givenSnapshot()},
		&fakeNotifier{},
		generator.WithInitialBurst(0),
		generator.WithInterval(time.Hour),
	)
	require.NoError(t, err)

	errCh := runInBackground(ctx, scheduler)
	assert.Eventually(t, func() bool { return scheduler.State() == generator.StateIdle }, 5*time.Second, time.Millisecond)

	// act
	cancel()

	// assert
	select {
	case runErr := <-errCh:
		assert.NoError(t, runErr)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}

	assert.Equal(t, generator.StateTerminated, scheduler.State())
}

func Test_Scheduler_Run_When_CancelledDuringInitialBurst(t *testing.T) {
	// setup
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := &fakeStore{snapshot: givenSnapshot(), failInsertCalls: map[int]error{1: context.Canceled}}

	scheduler, err := generator.NewScheduler(store, &fakeNotifier{})
	require.NoError(t, err)

	// act
	runErr := scheduler.Run(ctx)

	// assert
	assert.NoError(t, runErr, "cancellation is a shutdown, not a failure")
	assert.Equal(t, generator.StateTerminated, scheduler.State())
}

func Test_Scheduler_Run_When_SignalledDuringInitialBurstUnit(t *testing.T) {
	// setup
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := &fakeStore{snapshot: givenSnapshot(), onInsert: func(int) { cancel() }}
	testHandler := NewLogHandlerSpy(false)

	scheduler, err := generator.NewScheduler(store, &fakeNotifier{},
		generator.WithInitialBurst(5),
		generator.WithLogger(slog.New(testHandler)),
	)
	require.NoError(t, err)

	// act
	runErr := scheduler.Run(ctx)

	// assert
	require.NoError(t, runErr)
	assert.Equal(t, 1, store.insertedCount(), "the started unit completes, no further unit starts")
	assert.Equal(t, []error{nil}, store.insertCtxErrs, "the store call is not cancelled by the signal")
	assert.False(t, testHandler.HasErrorLogWithMessage("initial burst failed").Assert())
	assert.True(t, testHandler.HasInfoLogWithMessage("shutting down").Assert())
}

func Test_Scheduler_Run_When_SignalledDuringBatchUnit(t *testing.T) {
	// setup
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := &fakeStore{snapshot: givenSnapshot(), onInsert: func(int) { cancel() }}
	testHandler := NewLogHandlerSpy(false)

	scheduler, err := generator.NewScheduler(store, &fakeNotifier{},
		generator.WithInitialBurst(0),
		generator.WithInterval(5*time.Millisecond),
		generator.WithBatchSizeRange(3, 3),
		generator.WithLogger(slog.New(testHandler)),
	)
	require.NoError(t, err)

	// act
	runErr := scheduler.Run(ctx)

	// assert
	require.NoError(t, runErr)
	assert.Equal(t, 1, store.insertedCount())
	assert.Equal(t, []error{nil}, store.insertCtxErrs)
	assert.False(t, testHandler.HasErrorLogWithMessage("batch failed").Assert())
	assert.True(t, testHandler.HasInfoLogWithMessage("shutting down").Assert())
}

func Test_NewScheduler_When_OptionsAreInvalid(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{}

	testCases := []struct {
		name        string
		option      generator.Option
		expectedErr error
	}{
		{name: "negative burst", option: generator.WithInitialBurst(-1), expectedErr: generator.ErrInvalidInitialBurst},
		{name: "zero interval", option: generator.WithInterval(0), expectedErr: generator.ErrInvalidInterval},
		{name: "zero min batch", option: generator.WithBatchSizeRange(0, 5), expectedErr: generator.ErrInvalidBatchSizeRange},
		{name: "max below min", option: generator.WithBatchSizeRange(3, 2), expectedErr: generator.ErrInvalidBatchSizeRange},
		{name: "nil random source", option: generator.WithRandomSource(nil), expectedErr: generator.ErrNilRandomSource},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := generator.NewScheduler(store, notifier, tc.option)
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}

	_, nilStoreErr := generator.NewScheduler(nil, notifier)
	_, nilNotifierErr := generator.NewScheduler(store, nil)

	assert.ErrorIs(t, nilStoreErr, generator.ErrNilStore)
	assert.ErrorIs(t, nilNotifierErr, generator.ErrNilNotifier)
}
