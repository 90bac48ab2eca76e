// Package promadapters provides a Prometheus implementation of sales.MetricsCollector.
//
// Instruments are created on first use and registered on the provided prometheus.Registerer:
//   - RecordDuration -> HistogramVec (seconds)
//   - IncrementCounter -> CounterVec
//   - RecordValue -> GaugeVec
//
// The label names of an instrument are fixed by its first use.
package promadapters
