package schema

import "fmt"

// Subsystem cardinalities, fixed by the dome hardware.
const (
	// NumLouvers is the number of logical louvre positions in the LCS.
	NumLouvers = 34
	// NumLouverMotors is the number of physical louvre drives in the LCS.
	NumLouverMotors = 68
	// NumMonitorSensors is the number of MonCS sensor channels.
	NumMonitorSensors = 16
	// NumThermoSensors is the number of ThCS temperature sensors.
	NumThermoSensors = 13
)

// Connection configuration defaults, applied when a field is absent from
// the raw configuration.
const (
	DefaultHost                     = "host.docker.internal"
	DefaultPort                     = 5000
	DefaultConnectionTimeoutSeconds = 10.0
	DefaultReadTimeoutSeconds       = 10.0
)

// ID identifies one of the known message schemas.
type ID int

// The public schema identifiers. The set is fixed at build time.
const (
	// Config is the connection configuration schema.
	Config ID = iota
	// LCS is the louvre/shutter control subsystem status envelope.
	LCS
	// MonCS is the monitoring control subsystem status envelope.
	MonCS
	// ThCS is the thermal control subsystem status envelope.
	ThCS

	// Inner object schemas referenced by the envelopes. Not part of the
	// public identifier set; resolvable only through Object descriptors.
	lcsStatus
	moncsStatus
	thcsStatus
)

// String returns the schema name as it appears in diagnostics.
func (id ID) String() string {
	switch id {
	case Config:
		return "Config"
	case LCS:
		return "LCS"
	case MonCS:
		return "MonCS"
	case ThCS:
		return "ThCS"
	case lcsStatus:
		return "LCSStatus"
	case moncsStatus:
		return "MonCSStatus"
	case thcsStatus:
		return "ThCSStatus"
	default:
		return fmt.Sprintf("ID(%d)", int(id))
	}
}

// Kind discriminates the type descriptor variants.
type Kind int

// Descriptor variants.
const (
	KindNumber Kind = iota
	KindString
	KindArray
	KindObject
)

// String returns the kind name used in diagnostics.
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// TypeDescriptor describes one accepted value shape: a scalar number, a
// scalar string, a fixed-length array of a single element type, or a nested
// object described by another schema. Construct descriptors with Number,
// String, FixedArray and Object.
type TypeDescriptor struct {
	Kind   Kind
	Elem   *TypeDescriptor // array element type, KindArray only
	Length int             // exact array length, KindArray only
	Ref    ID              // nested schema, KindObject only
}

// Number returns a descriptor accepting numeric scalars, normalized to float64.
func Number() TypeDescriptor {
	return TypeDescriptor{Kind: KindNumber}
}

// String returns a descriptor accepting textual scalars.
func String() TypeDescriptor {
	return TypeDescriptor{Kind: KindString}
}

// FixedArray returns a descriptor accepting ordered sequences of exactly
// length elements, each accepted by elem. The length is exact, not a
// minimum: shorter and longer arrays are both rejected.
func FixedArray(elem TypeDescriptor, length int) TypeDescriptor {
	return TypeDescriptor{Kind: KindArray, Elem: &elem, Length: length}
}

// Object returns a descriptor accepting a keyed mapping that satisfies the
// referenced schema.
func Object(ref ID) TypeDescriptor {
	return TypeDescriptor{Kind: KindObject, Ref: ref}
}

// Describe returns the human-readable expected-shape description used in
// validation errors, e.g. "array of 34 number".
func (d TypeDescriptor) Describe() string {
	switch d.Kind {
	case KindArray:
		return fmt.Sprintf("array of %d %s", d.Length, d.Elem.Describe())
	case KindObject:
		return fmt.Sprintf("object (%s)", d.Ref)
	default:
		return d.Kind.String()
	}
}

// FieldSpec describes one declared field of a schema. Every declared field
// must resolve to a value: a field with a non-nil Default substitutes it
// when absent, any other absent field is a validation failure. Bounds apply
// after type checking and only to numeric fields.
type FieldSpec struct {
	Name string
	Type TypeDescriptor

	// Default, when non-nil, is substituted for an absent field before
	// type checking. Only the connection configuration fields carry one.
	Default any

	// Numeric bounds. Minimum/Maximum are inclusive, ExclusiveMinimum is
	// strict. Integer requires the value to be integral.
	Minimum          *float64
	Maximum          *float64
	ExclusiveMinimum *float64
	Integer          bool
}

// Def is the closed-form definition of one message shape. Fields are kept
// in declared order; validation is fail-fast in that order. Every Def is
// closed: keys outside the declared field set are rejected.
type Def struct {
	ID     ID
	Fields []FieldSpec
}

// Field returns the spec for name and whether it is declared.
func (d Def) Field(name string) (FieldSpec, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

func f64(v float64) *float64 { return &v }
