// Package poller drives the telemetry pipeline: request status from
// the controller, validate and decode it, publish the envelopes.
package poller
