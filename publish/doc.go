// Package publish sends validated telemetry envelopes to NATS, one
// subject per subsystem under dome.telemetry.
package publish
