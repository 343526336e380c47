// Package metric provides Prometheus instrumentation for the dome
// service.
//
// MetricsRegistry owns an isolated prometheus.Registry pre-populated
// with the core pipeline metrics (messages received, decoded,
// quarantined, published), connection gauges for the controller and
// NATS, and the Go runtime collectors. Components register their own
// collectors under a component.name key so duplicate registrations are
// caught early. Server exposes the registry on /metrics together with
// a plain /health endpoint.
package metric
