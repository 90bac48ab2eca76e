package notificationsink

import (
	"errors"
	"math/rand/v2"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrInvalidFailureRate is returned for a failure rate outside [0,1].
var ErrInvalidFailureRate = errors.New("failure rate must be within [0,1]")

const statusReceived = "RECEIVED"

// Stats are the running totals of accepted notifications.
type Stats struct {
	Received  int    `json:"received"`
	Failed    int    `json:"failed"`
	AmountSum string `json:"amountSum"`
}

type paymentNotification struct {
	SaleID string   `json:"saleId" binding:"required"`
	Amount *float64 `json:"amount" binding:"required"`
}

// Sink holds the handlers and the counters of the mock endpoint.
type Sink struct {
	logger      *zap.Logger
	failureRate float64
	draw        func() float64
	mu          sync.Mutex
	received    int
	failed      int
	amountSum   decimal.Decimal
}

// Option defines a functional option for configuring Sink.
type Option func(*Sink) error

// WithFailureRate makes the sink answer the given share of valid notifications with 503.
func WithFailureRate(rate float64) Option {
	return func(s *Sink) error {
		if rate < 0 || rate > 1 {
			return ErrInvalidFailureRate
		}

		s.failureRate = rate

		return nil
	}
}

// NewSink creates a sink logging through logger.
func NewSink(logger *zap.Logger, options ...Option) (*Sink, error) {
	s := &Sink{
		logger:    logger,
		draw:      rand.Float64,
		amountSum: decimal.Zero,
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// InitRoutes registers the sink endpoints on the given Gin engine.
func (s *Sink) InitRoutes(e *gin.Engine) {
	e.POST("/notify-payment", s.handleNotifyPayment)
	e.GET("/stats", s.handleGetStats)

	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
}

// Stats returns a snapshot of the running totals.
func (s *Sink) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		Received:  s.received,
		Failed:    s.failed,
		AmountSum: s.amountSum.StringFixed(2),
	}
}

// handleNotifyPayment handles the POST /notify-payment endpoint.
func (s *Sink) handleNotifyPayment(ctx *gin.Context) {
	var req paymentNotification

	if err := ctx.ShouldBindJSON(&req); err != nil {
		s.logger.Warn("failed to bind notification", zap.Error(err))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification payload"})
		return
	}

	if s.failureRate > 0 && s.draw() < s.failureRate {
		s.mu.Lock()
		s.failed++
		s.mu.Unlock()

		s.logger.Info("injected notification failure", zap.String("sale_id", req.SaleID))
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "injected failure"})
		return
	}

	s.mu.Lock()
	s.received++
	s.amountSum = s.amountSum.Add(decimal.NewFromFloat(*req.Amount))
	s.mu.Unlock()

	s.logger.Info("notification received", zap.String("sale_id", req.SaleID), zap.Float64("amount", *req.Amount))
	ctx.JSON(http.StatusOK, gin.H{"status": statusReceived, "saleId": req.SaleID})
}

// handleGetStats handles the GET /stats endpoint.
func (s *Sink) handleGetStats(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, s.Stats())
}
