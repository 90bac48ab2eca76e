package notificationsink_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AntonStoeckl/synthetic-sales-generator/notificationsink"
	"github.com/AntonStoeckl/synthetic-sales-generator/sales/notification"
)

func initRoutesTests(t *testing.T, options ...notificationsink.Option) (*gin.Engine, *notificationsink.Sink) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	router := gin.New()

	sink, err := notificationsink.NewSink(zap.NewNop(), options...)
	require.NoError(t, err)
	sink.InitRoutes(router)

	return router, sink
}

func postNotification(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/notify-payment", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func Test_NotifyPayment_AcceptsValidNotification(t *testing.T) {
	// arrange
	router, sink := initRoutesTests(t)

	// act
	w := postNotification(router, `{"saleId": "42", "amount": 59.97}`)

	// assert
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	require.NoError(t, jsoniter.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "RECEIVED", response["status"])
	assert.Equal(t, "42", response["saleId"])

	assert.Equal(t, notificationsink.Stats{Received: 1, AmountSum: "59.97"}, sink.Stats())
}

func Test_NotifyPayment_When_BodyIsInvalid(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{name: "missing sale id", body: `{"amount": 10}`},
		{name: "empty sale id", body: `{"saleId": "", "amount": 10}`},
		{name: "missing amount", body: `{"saleId": "1"}`},
		{name: "amount is not a number", body: `{"saleId": "1", "amount": "ten"}`},
		{name: "not json", body: `saleId=1`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			router, sink := initRoutesTests(t)

			// act
			w := postNotification(router, tc.body)

			// assert
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, 0, sink.Stats().Received)
		})
	}
}

func Test_NotifyPayment_WithFailureRate(t *testing.T) {
	// arrange
	router, sink := initRoutesTests(t, notificationsink.WithFailureRate(1))

	// act
	w := postNotification(router, `{"saleId": "1", "amount": 1.5}`)

	// assert
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, notificationsink.Stats{Failed: 1, AmountSum: "0.00"}, sink.Stats())
}

func Test_GetStats(t *testing.T) {
	// arrange
	router, _ := initRoutesTests(t)
	postNotification(router, `{"saleId": "1", "amount": 10.25}`)
	postNotification(router, `{"saleId": "2", "amount": 4.75}`)

	// act
	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received": 2, "failed": 0, "amountSum": "15.00"}`, w.Body.String())
}

func Test_NewSink_When_FailureRateIsOutOfRange(t *testing.T) {
	_, err := notificationsink.NewSink(zap.NewNop(), notificationsink.WithFailureRate(1.5))

	assert.ErrorIs(t, err, notificationsink.ErrInvalidFailureRate)
}

func Test_Relay_DeliversToSink(t *testing.T) {
	// setup
	router, sink := initRoutesTests(t)
	server := httptest.NewServer(router)
	defer server.Close()

	relay, err := notification.NewRelay(server.URL)
	require.NoError(t, err)

	// act
	relay.Notify(context.Background(), "1", decimal.RequireFromString("30.00"))
	relay.Notify(context.Background(), "2", decimal.RequireFromString("19.99"))
	require.NoError(t, relay.Close())

	// assert
	assert.Equal(t, notificationsink.Stats{Received: 2, AmountSum: "49.99"}, sink.Stats())
}
