package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains the process-level metrics for the dome service.
type Metrics struct {
	// Telemetry pipeline
	MessagesReceived    *prometheus.CounterVec
	MessagesDecoded     *prometheus.CounterVec
	MessagesQuarantined *prometheus.CounterVec
	MessagesPublished   *prometheus.CounterVec
	DecodeDuration      *prometheus.HistogramVec
	ErrorsTotal         *prometheus.CounterVec

	// Low-level controller connection
	CommandsSent         *prometheus.CounterVec
	ControllerConnected  prometheus.Gauge
	ControllerReconnects prometheus.Counter

	// NATS connection
	NATSConnected  prometheus.Gauge
	NATSReconnects prometheus.Counter
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{
		MessagesReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tsdome",
				Subsystem: "telemetry",
				Name:      "received_total",
				Help:      "Total number of status messages read from the controller",
			},
			[]string{"subsystem"},
		),

		MessagesDecoded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tsdome",
				Subsystem: "telemetry",
				Name:      "decoded_total",
				Help:      "Total number of status messages that passed validation",
			},
			[]string{"subsystem"},
		),

		MessagesQuarantined: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tsdome",
				Subsystem: "telemetry",
				Name:      "quarantined_total",
				Help:      "Total number of status messages rejected by validation",
			},
			[]string{"subsystem", "code"},
		),

		MessagesPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tsdome",
				Subsystem: "telemetry",
				Name:      "published_total",
				Help:      "Total number of envelopes published",
			},
			[]string{"subject"},
		),

		DecodeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "tsdome",
				Subsystem: "telemetry",
				Name:      "decode_duration_seconds",
				Help:      "Validation and decode duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"subsystem"},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tsdome",
				Subsystem: "errors",
				Name:      "total",
				Help:      "Total number of errors by component and class",
			},
			[]string{"component", "class"},
		),

		CommandsSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tsdome",
				Subsystem: "controller",
				Name:      "commands_total",
				Help:      "Total number of commands sent to the controller",
			},
			[]string{"command", "result"},
		),

		ControllerConnected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "tsdome",
				Subsystem: "controller",
				Name:      "connected",
				Help:      "Controller connection status (0=disconnected, 1=connected)",
			},
		),

		ControllerReconnects: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "tsdome",
				Subsystem: "controller",
				Name:      "reconnects_total",
				Help:      "Total number of controller reconnections",
			},
		),

		NATSConnected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "tsdome",
				Subsystem: "nats",
				Name:      "connected",
				Help:      "NATS connection status (0=disconnected, 1=connected)",
			},
		),

		NATSReconnects: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "tsdome",
				Subsystem: "nats",
				Name:      "reconnects_total",
				Help:      "Total number of NATS reconnections",
			},
		),
	}
}

// RecordMessageReceived increments the received counter for a subsystem.
func (m *Metrics) RecordMessageReceived(subsystem string) {
	m.MessagesReceived.WithLabelValues(subsystem).Inc()
}

// RecordMessageDecoded increments the decoded counter for a subsystem.
func (m *Metrics) RecordMessageDecoded(subsystem string) {
	m.MessagesDecoded.WithLabelValues(subsystem).Inc()
}

// RecordMessageQuarantined increments the quarantine counter.
func (m *Metrics) RecordMessageQuarantined(subsystem, code string) {
	m.MessagesQuarantined.WithLabelValues(subsystem, code).Inc()
}

// RecordMessagePublished increments the published counter for a subject.
func (m *Metrics) RecordMessagePublished(subject string) {
	m.MessagesPublished.WithLabelValues(subject).Inc()
}

// RecordDecodeDuration records how long a decode took.
func (m *Metrics) RecordDecodeDuration(subsystem string, duration time.Duration) {
	m.DecodeDuration.WithLabelValues(subsystem).Observe(duration.Seconds())
}

// RecordError increments the error counter.
func (m *Metrics) RecordError(component, class string) {
	m.ErrorsTotal.WithLabelValues(component, class).Inc()
}

// RecordCommand increments the command counter.
func (m *Metrics) RecordCommand(command, result string) {
	m.CommandsSent.WithLabelValues(command, result).Inc()
}

// RecordControllerStatus updates the controller connection gauge.
func (m *Metrics) RecordControllerStatus(connected bool) {
	m.ControllerConnected.Set(boolToGauge(connected))
}

// RecordControllerReconnect increments the controller reconnection counter.
func (m *Metrics) RecordControllerReconnect() {
	m.ControllerReconnects.Inc()
}

// RecordNATSStatus updates the NATS connection gauge.
func (m *Metrics) RecordNATSStatus(connected bool) {
	m.NATSConnected.Set(boolToGauge(connected))
}

// RecordNATSReconnect increments the NATS reconnection counter.
func (m *Metrics) RecordNATSReconnect() {
	m.NATSReconnects.Inc()
}

func boolToGauge(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}
