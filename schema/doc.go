// Package schema defines the closed message shapes exchanged with the dome
// lower level components and the generic validator that enforces them.
//
// # Overview
//
// Four message shapes exist, identified by schema.ID: the connection
// configuration (Config) and three telemetry status envelopes (LCS, MonCS,
// ThCS). Each shape is described declaratively as an ordered list of
// FieldSpec entries whose types are a small descriptor algebra: scalar
// number, scalar string, fixed-length array of a single element type, and
// nested object. All schemas are closed: a key outside the declared field
// set is a validation failure, and every declared field must resolve to a
// value (from the message, or from its declared default for the
// configuration fields).
//
// Array lengths are exact. The LCS reports 34 louvre positions and 68
// drives, the MonCS 16 sensor channels and the ThCS 13 temperature
// sensors; an array of any other length, including empty, is rejected.
//
// # Validation
//
// Validate walks a raw value tree (as produced by encoding/json or
// yaml.v3 into map[string]any) against a schema and either returns a
// normalized field map or a ValidationError naming the first violation:
// schema, dotted field path, machine-readable code and the expected vs
// actual shape. Validation is deliberately fail-fast; malformed hardware
// telemetry is a protocol fault to escalate, not to tolerate partially.
//
// # Registry
//
// NewRegistry builds the full schema set once; the Registry is immutable
// afterward and is injected into decoders rather than accessed through a
// global, keeping every decode call pure and trivially concurrent.
package schema
