package schema

import "fmt"

// Registry holds the closed-form definitions of all known message shapes.
// It is immutable after construction and safe for concurrent use without
// locking; build it once at process start and inject it into decoders.
type Registry struct {
	defs map[ID]Def
}

// NewRegistry builds the registry with the four known schemas and the
// inner status-object schemas their envelopes reference.
func NewRegistry() *Registry {
	defs := map[ID]Def{
		Config: {
			ID: Config,
			Fields: []FieldSpec{
				{Name: "host", Type: String(), Default: DefaultHost},
				{
					Name: "port", Type: Number(), Default: DefaultPort,
					Minimum: f64(1), Maximum: f64(65535), Integer: true,
				},
				{
					Name: "connection_timeout", Type: Number(),
					Default: DefaultConnectionTimeoutSeconds, ExclusiveMinimum: f64(0),
				},
				{
					Name: "read_timeout", Type: Number(),
					Default: DefaultReadTimeoutSeconds, ExclusiveMinimum: f64(0),
				},
			},
		},

		LCS: {
			ID: LCS,
			Fields: []FieldSpec{
				{Name: "response", Type: Number()},
				{Name: "LCS", Type: Object(lcsStatus)},
			},
		},
		lcsStatus: {
			ID: lcsStatus,
			Fields: []FieldSpec{
				{Name: "status", Type: FixedArray(String(), NumLouvers)},
				{Name: "positionActual", Type: FixedArray(Number(), NumLouvers)},
				{Name: "positionCommanded", Type: FixedArray(Number(), NumLouvers)},
				{Name: "driveTorqueActual", Type: FixedArray(Number(), NumLouverMotors)},
				{Name: "driveTorqueCommanded", Type: FixedArray(Number(), NumLouverMotors)},
				{Name: "driveCurrentActual", Type: FixedArray(Number(), NumLouverMotors)},
				{Name: "driveTemperature", Type: FixedArray(Number(), NumLouverMotors)},
				{Name: "encoderHeadRaw", Type: FixedArray(Number(), NumLouverMotors)},
				{Name: "encoderHeadCalibrated", Type: FixedArray(Number(), NumLouverMotors)},
				{Name: "powerDraw", Type: Number()},
				{Name: "timestampUTC", Type: Number()},
			},
		},

		MonCS: {
			ID: MonCS,
			Fields: []FieldSpec{
				{Name: "response", Type: Number()},
				{Name: "MonCS", Type: Object(moncsStatus)},
			},
		},
		moncsStatus: {
			ID: moncsStatus,
			Fields: []FieldSpec{
				// status is a single string here, unlike the per-louvre
				// status array in the LCS. The shapes differ per schema.
				{Name: "status", Type: String()},
				{Name: "data", Type: FixedArray(Number(), NumMonitorSensors)},
				{Name: "timestampUTC", Type: Number()},
			},
		},

		ThCS: {
			ID: ThCS,
			Fields: []FieldSpec{
				{Name: "response", Type: Number()},
				{Name: "ThCS", Type: Object(thcsStatus)},
			},
		},
		thcsStatus: {
			ID: thcsStatus,
			Fields: []FieldSpec{
				{Name: "status", Type: String()},
				{Name: "temperature", Type: FixedArray(Number(), NumThermoSensors)},
				{Name: "timestampUTC", Type: Number()},
			},
		},
	}

	return &Registry{defs: defs}
}

// Lookup returns the definition for id. Calling it with an identifier
// outside the known set is a programming defect in the caller, not a data
// problem, and panics.
func (r *Registry) Lookup(id ID) Def {
	def, ok := r.defs[id]
	if !ok {
		panic(fmt.Sprintf("schema: lookup of unknown schema %s", id))
	}
	return def
}
