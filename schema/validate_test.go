package schema

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func repeatNum(n int, v float64) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func repeatStr(n int, s string) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = s
	}
	return out
}

func validLCSMessage() map[string]any {
	return map[string]any{
		"response": 0.0,
		"LCS": map[string]any{
			"status":                repeatStr(NumLouvers, "OK"),
			"positionActual":        repeatNum(NumLouvers, 0.0),
			"positionCommanded":     repeatNum(NumLouvers, 0.0),
			"driveTorqueActual":     repeatNum(NumLouverMotors, 0.0),
			"driveTorqueCommanded":  repeatNum(NumLouverMotors, 0.0),
			"driveCurrentActual":    repeatNum(NumLouverMotors, 0.0),
			"driveTemperature":      repeatNum(NumLouverMotors, 20.0),
			"encoderHeadRaw":        repeatNum(NumLouverMotors, 0.0),
			"encoderHeadCalibrated": repeatNum(NumLouverMotors, 0.0),
			"powerDraw":             100.5,
			"timestampUTC":          1700000000.0,
		},
	}
}

func validMonCSMessage() map[string]any {
	return map[string]any{
		"response": 0.0,
		"MonCS": map[string]any{
			"status":       "Disabled",
			"data":         repeatNum(NumMonitorSensors, 20.0),
			"timestampUTC": 1700000000.0,
		},
	}
}

func validThCSMessage() map[string]any {
	return map[string]any{
		"response": 0.0,
		"ThCS": map[string]any{
			"status":       "Enabled",
			"temperature":  repeatNum(NumThermoSensors, 20.0),
			"timestampUTC": 1700000000.0,
		},
	}
}

func validConfigMessage() map[string]any {
	return map[string]any{
		"host":               "127.0.0.1",
		"port":               5000,
		"connection_timeout": 10.0,
		"read_timeout":       10.0,
	}
}

func validMessage(id ID) map[string]any {
	switch id {
	case Config:
		return validConfigMessage()
	case LCS:
		return validLCSMessage()
	case MonCS:
		return validMonCSMessage()
	default:
		return validThCSMessage()
	}
}

// subsystemKey returns the envelope key holding the nested status object.
func subsystemKey(id ID) string {
	return id.String()
}

func TestValidateAcceptsValidMessages(t *testing.T) {
	reg := NewRegistry()

	for _, id := range []ID{Config, LCS, MonCS, ThCS} {
		t.Run(id.String(), func(t *testing.T) {
			fields, verr := Validate(reg, id, validMessage(id))
			require.Nil(t, verr)
			require.NotNil(t, fields)
		})
	}
}

// Round-trip fidelity: the normalized output preserves the input values
// exactly for numbers, strings and arrays.
func TestValidateNormalizesWithoutLoss(t *testing.T) {
	reg := NewRegistry()

	fields, verr := Validate(reg, LCS, validLCSMessage())
	require.Nil(t, verr)

	assert.Equal(t, 0.0, fields["response"])

	body, ok := fields["LCS"].(map[string]any)
	require.True(t, ok)

	status, ok := body["status"].([]string)
	require.True(t, ok)
	require.Len(t, status, NumLouvers)
	assert.Equal(t, "OK", status[0])

	temps, ok := body["driveTemperature"].([]float64)
	require.True(t, ok)
	require.Len(t, temps, NumLouverMotors)
	assert.Equal(t, 20.0, temps[NumLouverMotors-1])

	assert.Equal(t, 100.5, body["powerDraw"])
	assert.Equal(t, 1700000000.0, body["timestampUTC"])
}

func TestValidateRejectsNonObject(t *testing.T) {
	reg := NewRegistry()

	for _, raw := range []any{nil, "status", 3.5, []any{1.0}} {
		_, verr := Validate(reg, LCS, raw)
		require.NotNil(t, verr)
		assert.Equal(t, CodeNotAnObject, verr.Code)
		assert.Equal(t, LCS, verr.Schema)
	}
}

// Closed schemas: any extra top-level key fails, naming the key.
func TestValidateRejectsUnknownField(t *testing.T) {
	reg := NewRegistry()

	for _, id := range []ID{Config, LCS, MonCS, ThCS} {
		t.Run(id.String(), func(t *testing.T) {
			msg := validMessage(id)
			msg["surprise"] = 1.0

			_, verr := Validate(reg, id, msg)
			require.NotNil(t, verr)
			assert.Equal(t, CodeUnknownField, verr.Code)
			assert.Equal(t, "surprise", verr.Field)
		})
	}
}

func TestValidateRejectsUnknownNestedField(t *testing.T) {
	reg := NewRegistry()

	msg := validMonCSMessage()
	msg["MonCS"].(map[string]any)["extra"] = true

	_, verr := Validate(reg, MonCS, msg)
	require.NotNil(t, verr)
	assert.Equal(t, CodeUnknownField, verr.Code)
	assert.Equal(t, "MonCS.extra", verr.Field)
}

// Removing any single required field fails with missing_field naming the
// field. The Config schema is exercised separately: its fields default.
func TestValidateRejectsMissingFields(t *testing.T) {
	reg := NewRegistry()

	for _, id := range []ID{LCS, MonCS, ThCS} {
		t.Run(id.String(), func(t *testing.T) {
			// Top-level field.
			msg := validMessage(id)
			delete(msg, "response")
			_, verr := Validate(reg, id, msg)
			require.NotNil(t, verr)
			assert.Equal(t, CodeMissingField, verr.Code)
			assert.Equal(t, "response", verr.Field)

			// Nested field.
			msg = validMessage(id)
			delete(msg[subsystemKey(id)].(map[string]any), "timestampUTC")
			_, verr = Validate(reg, id, msg)
			require.NotNil(t, verr)
			assert.Equal(t, CodeMissingField, verr.Code)
			assert.Equal(t, subsystemKey(id)+".timestampUTC", verr.Field)
		})
	}
}

func TestValidateConfigDefaultsAbsentFields(t *testing.T) {
	reg := NewRegistry()

	fields, verr := Validate(reg, Config, map[string]any{})
	require.Nil(t, verr)

	assert.Equal(t, DefaultHost, fields["host"])
	assert.Equal(t, float64(DefaultPort), fields["port"])
	assert.Equal(t, DefaultConnectionTimeoutSeconds, fields["connection_timeout"])
	assert.Equal(t, DefaultReadTimeoutSeconds, fields["read_timeout"])
}

// Array lengths are exact: 33 and 35 both fail where 34 is declared.
func TestValidateRejectsWrongArrayLength(t *testing.T) {
	reg := NewRegistry()

	for _, length := range []int{0, 33, 35} {
		msg := validLCSMessage()
		msg["LCS"].(map[string]any)["positionActual"] = repeatNum(length, 0.0)

		_, verr := Validate(reg, LCS, msg)
		require.NotNil(t, verr)
		assert.Equal(t, CodeArrayLength, verr.Code)
		assert.Equal(t, "LCS.positionActual", verr.Field)
		assert.Equal(t, "array of 34 number", verr.Expected)
	}
}

// Scenario: MonCS data of length 15 fails citing expected 16 at MonCS.data.
func TestValidateMonCSShortDataArray(t *testing.T) {
	reg := NewRegistry()

	msg := validMonCSMessage()
	msg["MonCS"].(map[string]any)["data"] = repeatNum(15, 20.0)

	_, verr := Validate(reg, MonCS, msg)
	require.NotNil(t, verr)
	assert.Equal(t, CodeArrayLength, verr.Code)
	assert.Equal(t, "MonCS.data", verr.Field)
	assert.Equal(t, "array of 16 number", verr.Expected)
	assert.Equal(t, "array of 15", verr.Actual)
}

// An array of the right length with one non-numeric element fails with a
// type mismatch citing that element's index.
func TestValidateRejectsWrongElementType(t *testing.T) {
	reg := NewRegistry()

	msg := validLCSMessage()
	arr := repeatNum(NumLouvers, 0.0)
	arr[5] = "broken"
	msg["LCS"].(map[string]any)["positionActual"] = arr

	_, verr := Validate(reg, LCS, msg)
	require.NotNil(t, verr)
	assert.Equal(t, CodeTypeMismatch, verr.Code)
	assert.Equal(t, "LCS.positionActual[5]", verr.Field)
	assert.Equal(t, "number", verr.Expected)
	assert.Equal(t, "string", verr.Actual)
}

func TestValidateRejectsScalarTypeMismatch(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		name   string
		mutate func(map[string]any)
		field  string
	}{
		{
			name:   "number where string expected",
			mutate: func(m map[string]any) { m["MonCS"].(map[string]any)["status"] = 3.0 },
			field:  "MonCS.status",
		},
		{
			name:   "string where number expected",
			mutate: func(m map[string]any) { m["response"] = "0" },
			field:  "response",
		},
		{
			name:   "bool where number expected",
			mutate: func(m map[string]any) { m["MonCS"].(map[string]any)["timestampUTC"] = true },
			field:  "MonCS.timestampUTC",
		},
		{
			name:   "scalar where array expected",
			mutate: func(m map[string]any) { m["MonCS"].(map[string]any)["data"] = 20.0 },
			field:  "MonCS.data",
		},
		{
			name:   "scalar where object expected",
			mutate: func(m map[string]any) { m["MonCS"] = "Disabled" },
			field:  "MonCS",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			msg := validMonCSMessage()
			tc.mutate(msg)

			_, verr := Validate(reg, MonCS, msg)
			require.NotNil(t, verr)
			assert.Equal(t, tc.field, verr.Field)
			if tc.field == "MonCS" {
				// A scalar standing in for a nested object is reported as
				// not-an-object at that path.
				assert.Equal(t, CodeNotAnObject, verr.Code)
			} else {
				assert.Equal(t, CodeTypeMismatch, verr.Code)
			}
		})
	}
}

// Fail-fast: the first violation in declared field order wins.
func TestValidateReportsFirstViolationOnly(t *testing.T) {
	reg := NewRegistry()

	msg := validThCSMessage()
	body := msg["ThCS"].(map[string]any)
	body["status"] = 1.0                     // declared first
	body["temperature"] = repeatNum(5, 20.0) // also broken

	_, verr := Validate(reg, ThCS, msg)
	require.NotNil(t, verr)
	assert.Equal(t, "ThCS.status", verr.Field)
	assert.Equal(t, CodeTypeMismatch, verr.Code)
}

func TestValidateConfigBounds(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		name    string
		raw     map[string]any
		field   string
		code    Code
		wantErr bool
	}{
		{"port zero", map[string]any{"port": 0}, "port", CodeOutOfRange, true},
		{"port too large", map[string]any{"port": 70000}, "port", CodeOutOfRange, true},
		{"port fractional", map[string]any{"port": 50.5}, "port", CodeTypeMismatch, true},
		{"connection timeout zero", map[string]any{"connection_timeout": 0}, "connection_timeout", CodeOutOfRange, true},
		{"connection timeout negative", map[string]any{"connection_timeout": -1.0}, "connection_timeout", CodeOutOfRange, true},
		{"read timeout zero", map[string]any{"read_timeout": 0.0}, "read_timeout", CodeOutOfRange, true},
		{"connection timeout NaN", map[string]any{"connection_timeout": math.NaN()}, "connection_timeout", CodeOutOfRange, true},
		{"read timeout NaN", map[string]any{"read_timeout": math.NaN()}, "read_timeout", CodeOutOfRange, true},
		{"port NaN", map[string]any{"port": math.NaN()}, "port", CodeTypeMismatch, true},
		{"connection timeout infinite", map[string]any{"connection_timeout": math.Inf(1)}, "connection_timeout", CodeOutOfRange, true},
		{"tiny positive timeout accepted", map[string]any{"connection_timeout": 0.001}, "", "", false},
		{"max port accepted", map[string]any{"port": 65535}, "", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, verr := Validate(reg, Config, tc.raw)
			if !tc.wantErr {
				assert.Nil(t, verr)
				return
			}
			require.NotNil(t, verr)
			assert.Equal(t, tc.field, verr.Field)
			assert.Equal(t, tc.code, verr.Code)
		})
	}
}

// Decoding the same raw input twice yields value-equal results.
func TestValidateIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	msg := validLCSMessage()

	first, verr := Validate(reg, LCS, msg)
	require.Nil(t, verr)
	second, verr := Validate(reg, LCS, msg)
	require.Nil(t, verr)

	assert.Equal(t, first, second)
}

func TestAccepts(t *testing.T) {
	reg := NewRegistry()

	v, verr := Number().Accepts(reg, LCS, 42)
	require.Nil(t, verr)
	assert.Equal(t, 42.0, v)

	_, verr = Number().Accepts(reg, LCS, "42")
	require.NotNil(t, verr)
	assert.Equal(t, CodeTypeMismatch, verr.Code)

	v, verr = FixedArray(Number(), 3).Accepts(reg, LCS, []any{1, 2.5, 3})
	require.Nil(t, verr)
	assert.Equal(t, []float64{1, 2.5, 3}, v)

	_, verr = FixedArray(Number(), 3).Accepts(reg, LCS, []any{1, 2.5})
	require.NotNil(t, verr)
	assert.Equal(t, CodeArrayLength, verr.Code)
}

func TestValidationErrorMessages(t *testing.T) {
	tests := []struct {
		err  *ValidationError
		want string
	}{
		{
			&ValidationError{Schema: LCS, Code: CodeNotAnObject, Actual: "string"},
			"LCS: message is not an object (got string)",
		},
		{
			&ValidationError{Schema: MonCS, Field: "extra", Code: CodeUnknownField},
			`MonCS: unknown field "extra"`,
		},
		{
			&ValidationError{Schema: ThCS, Field: "ThCS.status", Code: CodeMissingField},
			`ThCS: missing field "ThCS.status"`,
		},
		{
			&ValidationError{
				Schema: LCS, Field: "LCS.positionActual", Code: CodeArrayLength,
				Expected: "array of 34 number", Actual: "array of 33",
			},
			`LCS: field "LCS.positionActual": expected array of 34 number, got array of 33`,
		},
		{
			&ValidationError{
				Schema: Config, Field: "port", Code: CodeOutOfRange,
				Expected: "<= 65535", Actual: "70000",
			},
			`Config: field "port": value 70000 out of range (expected <= 65535)`,
		},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, tc.err.Error())
	}
}
