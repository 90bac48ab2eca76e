package oteladapters_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/AntonStoeckl/synthetic-sales-generator/sales"
	"github.com/AntonStoeckl/synthetic-sales-generator/sales/oteladapters"
)

func givenCollector(t *testing.T) (*oteladapters.MetricsCollector, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	return oteladapters.NewMetricsCollector(provider.Meter("test")), reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader, name string) metricdata.Metrics {
	t.Helper()

	var resourceMetrics metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &resourceMetrics))

	for _, scopeMetrics := range resourceMetrics.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			if m.Name == name {
				return m
			}
		}
	}

	t.Fatalf("metric %s not found", name)

	return metricdata.Metrics{}
}

func Test_MetricsCollector_RecordDuration(t *testing.T) {
	// setup
	collector, reader := givenCollector(t)

	// act
	collector.RecordDuration(sales.MetricBatchDuration, 150*time.Millisecond, map[string]string{sales.LabelPhase: "tick"})

	// assert
	m := collect(t, reader, sales.MetricBatchDuration)
	assert.Equal(t, sales.MetricHelp(sales.MetricBatchDuration), m.Description)
	assert.Equal(t, "s", m.Unit)

	histogram, ok := m.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, histogram.DataPoints, 1)
	assert.Equal(t, uint64(1), histogram.DataPoints[0].Count)
	assert.InDelta(t, 0.15, histogram.DataPoints[0].Sum, 0.001)

	expectedAttrs := attribute.NewSet(attribute.String(sales.LabelPhase, "tick"))
	assert.True(t, histogram.DataPoints[0].Attributes.Equals(&expectedAttrs))
}

func Test_MetricsCollector_IncrementCounter(t *testing.T) {
	// setup
	collector, reader := givenCollector(t)
	labels := map[string]string{sales.LabelPhase: "burst", sales.LabelStatus: "PENDING"}

	// act
	collector.IncrementCounter(sales.MetricSalesGenerated, labels)
	collector.IncrementCounter(sales.MetricSalesGenerated, labels)
	collector.IncrementCounter(sales.MetricSalesGenerated, labels)

	// assert
	sum, ok := collect(t, reader, sales.MetricSalesGenerated).Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(3), sum.DataPoints[0].Value)
}

func Test_MetricsCollector_RecordValue(t *testing.T) {
	// setup
	collector, reader := givenCollector(t)

	// act
	collector.RecordValue(sales.MetricCumulativeGenerated, 100, nil)
	collector.RecordValue(sales.MetricCumulativeGenerated, 104, nil)

	// assert
	gauge, ok := collect(t, reader, sales.MetricCumulativeGenerated).Data.(metricdata.Gauge[float64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, 104.0, gauge.DataPoints[0].Value)
}

func Test_MetricsCollector_When_UsedConcurrently(t *testing.T) {
	// setup
	collector, reader := givenCollector(t)

	// act
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			collector.IncrementCounter(sales.MetricNotifications, map[string]string{sales.LabelResult: "success"})
		}()
	}
	wg.Wait()

	// assert
	sum, ok := collect(t, reader, sales.MetricNotifications).Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(50), sum.DataPoints[0].Value)
}

func Test_NewSlogBridgeLogger(t *testing.T) {
	logger := oteladapters.NewSlogBridgeLogger("sales-generator")

	assert.NotPanics(t, func() { logger.Info("sale generated", "sale_id", "1") })
}
