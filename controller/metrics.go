package controller

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lsst-ts/ts-Dome/metric"
)

// Metrics holds Prometheus metrics specific to the controller client.
// Connection gauges and command counters live in the core metrics.
type Metrics struct {
	roundTripTime prometheus.Histogram
	statusReads   prometheus.Counter
	readErrors    prometheus.Counter
	lastActivity  prometheus.Gauge
}

// newMetrics creates and registers the client metrics. Returns nil
// when no registry is provided.
func newMetrics(registry *metric.MetricsRegistry) *Metrics {
	if registry == nil {
		return nil
	}

	metrics := &Metrics{
		roundTripTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tsdome",
			Subsystem: "client",
			Name:      "round_trip_seconds",
			Help:      "Command round-trip time to the controller",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		statusReads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tsdome",
			Subsystem: "client",
			Name:      "status_reads_total",
			Help:      "Status documents read from the controller",
		}),
		readErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tsdome",
			Subsystem: "client",
			Name:      "read_errors_total",
			Help:      "Socket read errors encountered",
		}),
		lastActivity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tsdome",
			Subsystem: "client",
			Name:      "last_activity_timestamp",
			Help:      "Unix timestamp of the last successful exchange",
		}),
	}

	_ = registry.Register("client", "round_trip_time", metrics.roundTripTime)
	_ = registry.Register("client", "status_reads", metrics.statusReads)
	_ = registry.Register("client", "read_errors", metrics.readErrors)
	_ = registry.Register("client", "last_activity", metrics.lastActivity)

	return metrics
}
