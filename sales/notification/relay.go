package notification

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"resty.dev/v3"

	"github.com/AntonStoeckl/synthetic-sales-generator/sales"
)

const (
	// NotifyPaymentPath is the endpoint path notifications are posted to.
	NotifyPaymentPath = "/notify-payment"

	// DefaultTimeout bounds each notification request.
	DefaultTimeout = 5 * time.Second

	headerContentType         = "Content-Type"
	contentTypeJSON           = "application/json"
	logMsgNotificationSent    = "notification sent"
	logMsgNotificationFailed  = "notification failed"
	logMsgEncodePayloadFailed = "failed to encode notification payload"
	logAttrError              = "error"
	logAttrSaleID             = "sale_id"
	logAttrAmount             = "amount"
	logAttrStatusCode         = "status_code"
	logAttrDurationMS         = "duration_ms"
	resultSuccess             = "success"
	resultFailure             = "failure"
)

var (
	// ErrEmptyBaseURL is returned when the relay is created without an endpoint.
	ErrEmptyBaseURL = errors.New("notification base url must not be empty")

	// ErrInvalidTimeout is returned for a non-positive request timeout.
	ErrInvalidTimeout = errors.New("notification timeout must be positive")
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Payload is the JSON body posted for one persisted sale.
type Payload struct {
	SaleID string  `json:"saleId"`
	Amount float64 `json:"amount"`
}

// Relay posts payment notifications without blocking its callers.
// Every notification carries its own payload; concurrent notifications share nothing but the HTTP client.
type Relay struct {
	client           *resty.Client
	timeout          time.Duration
	logger           sales.Logger
	metricsCollector sales.MetricsCollector
	inFlight         sync.WaitGroup
}

// Option defines a functional option for configuring Relay.
type Option func(*Relay) error

// WithTimeout sets the per-notification request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(r *Relay) error {
		if timeout <= 0 {
			return ErrInvalidTimeout
		}

		r.timeout = timeout

		return nil
	}
}

// WithLogger sets the logger for the Relay.
// Successful deliveries are logged at debug level, failures at error level with the sale id.
func WithLogger(logger sales.Logger) Option {
	return func(r *Relay) error {
		r.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Relay.
func WithMetrics(collector sales.MetricsCollector) Option {
	return func(r *Relay) error {
		r.metricsCollector = collector
		return nil
	}
}

// NewRelay creates a Relay posting to baseURL + NotifyPaymentPath.
func NewRelay(baseURL string, options ...Option) (*Relay, error) {
	if baseURL == "" {
		return nil, ErrEmptyBaseURL
	}

	r := &Relay{timeout: DefaultTimeout}

	for _, option := range options {
		if err := option(r); err != nil {
			return nil, err
		}
	}

	r.client = resty.New().
		SetBaseURL(baseURL).
		SetTimeout(r.timeout)

	return r, nil
}

// Notify announces a persisted sale and returns before the endpoint answers.
//
// The delivery is detached from ctx cancellation; it is bounded only by the relay's timeout.
// Any transport error or non-2xx answer is logged and counted, never returned.
func (r *Relay) Notify(ctx context.Context, saleID string, amount decimal.Decimal) {
	payload := Payload{SaleID: saleID, Amount: amount.InexactFloat64()}

	r.inFlight.Add(1)

	go func() {
		defer r.inFlight.Done()

		notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()

		r.deliver(notifyCtx, payload)
	}()
}

// Wait blocks until every notification started so far has finished.
func (r *Relay) Wait() {
	r.inFlight.Wait()
}

// Close drains: it blocks until every in-flight notification has finished, each bounded by the
// relay's timeout, and then releases the HTTP client. Use Shutdown to bound the total wait.
func (r *Relay) Close() error {
	r.Wait()
	return r.client.Close()
}

// Shutdown waits for in-flight notifications until ctx is done and then releases the HTTP client.
// Notifications still running at that point are abandoned; it returns ctx.Err() in that case.
func (r *Relay) Shutdown(ctx context.Context) error {
	drained := make(chan struct{})

	go func() {
		r.inFlight.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		return r.client.Close()

	case <-ctx.Done():
		_ = r.client.Close()
		return ctx.Err()
	}
}

func (r *Relay) deliver(ctx context.Context, payload Payload) {
	start := time.Now()
	statusCode, err := r.send(ctx, payload)
	duration := time.Since(start)

	if err != nil {
		r.recordMetrics(resultFailure, duration)

		if r.logger != nil {
			r.logger.Error(
				logMsgNotificationFailed,
				logAttrSaleID, payload.SaleID,
				logAttrError, err.Error(),
				logAttrStatusCode, statusCode,
			)
		}

		return
	}

	r.recordMetrics(resultSuccess, duration)

	if r.logger != nil {
		r.logger.Debug(
			logMsgNotificationSent,
			logAttrSaleID, payload.SaleID,
			logAttrAmount, payload.Amount,
			logAttrDurationMS, toMilliseconds(duration),
		)
	}
}

func (r *Relay) send(ctx context.Context, payload Payload) (int, error) {
	body, marshalErr := json.Marshal(payload)
	if marshalErr != nil {
		return 0, errors.Join(sales.ErrNotificationTransport, fmt.Errorf("%s: %w", logMsgEncodePayloadFailed, marshalErr))
	}

	res, postErr := r.client.R().
		SetContext(ctx).
		SetHeader(headerContentType, contentTypeJSON).
		SetBody(body).
		Post(NotifyPaymentPath)

	if postErr != nil {
		return 0, errors.Join(sales.ErrNotificationTransport, postErr)
	}

	if !res.IsSuccess() {
		return res.StatusCode(), fmt.Errorf("%w: unexpected status %d %s",
			sales.ErrNotificationTransport, res.StatusCode(), http.StatusText(res.StatusCode()))
	}

	return res.StatusCode(), nil
}

func (r *Relay) recordMetrics(result string, duration time.Duration) {
	if r.metricsCollector == nil {
		return
	}

	labels := map[string]string{sales.LabelResult: result}
	r.metricsCollector.IncrementCounter(sales.MetricNotifications, labels)
	r.metricsCollector.RecordDuration(sales.MetricNotificationDuration, duration, labels)
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
