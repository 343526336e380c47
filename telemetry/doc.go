// Package telemetry provides the typed, immutable status records decoded
// from dome lower level component messages, and the Decoder that produces
// them.
//
// A StatusEnvelope holds the controller's response code plus exactly one
// subsystem record: LCSStatus (louvre/shutter control, 34 louvres and 68
// drives), MonCSStatus (monitoring, 16 channels) or ThCSStatus (thermal,
// 13 sensors). Envelopes are constructed only by the Decoder on full
// validation success and are owned by the caller; a failed decode returns
// a positional *schema.ValidationError and no record.
package telemetry
