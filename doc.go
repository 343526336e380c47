// Package tsdome implements the upper-level interface to the LSST dome
// lower level components (LLCs): a strict schema-validating decoder for
// the telemetry the hardware emits over its TCP/IP link, plus the
// surrounding daemon that polls, decodes and republishes that telemetry.
//
// # Architecture
//
// The pipeline is small and fixed:
//
//	TCP link (controller) -> validating decoder (schema + telemetry) -> NATS (publish)
//
// Core packages:
//
//   - schema: closed schema definitions for the four known message shapes
//     (connection config, LCS, MonCS, ThCS) and the generic recursive
//     validator that walks raw JSON trees against them.
//   - telemetry: typed, immutable status records and the decoder that
//     produces them from raw messages.
//   - config: connection configuration loading, defaulting and bounds checks.
//
// Infrastructure packages:
//
//   - controller: TCP client speaking the newline-framed JSON protocol of
//     the dome controller, including command issuance and reconnects.
//   - mock: an in-process mock dome controller used by tests and the
//     mock-dome binary.
//   - publish: NATS publisher for validated telemetry.
//   - poller: the periodic status loop tying the above together.
//   - metric: Prometheus registry and /metrics endpoint.
//
// A malformed telemetry message is never fatal: the decoder returns a
// positional validation error, the poller quarantines the message and the
// loop continues with the next one.
package tsdome
