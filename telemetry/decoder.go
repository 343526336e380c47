package telemetry

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/lsst-ts/ts-Dome/errors"
	"github.com/lsst-ts/ts-Dome/schema"
)

// Decoder turns raw telemetry messages into typed StatusEnvelope records
// by validating them against the schema registry.
//
// The decoder is stateless per call and safe for concurrent use; the
// injected registry is read-only.
type Decoder struct {
	reg *schema.Registry
}

// NewDecoder creates a decoder using the given schema registry.
func NewDecoder(reg *schema.Registry) *Decoder {
	return &Decoder{reg: reg}
}

// Decode validates raw against the envelope schema of the subsystem and
// assembles the typed record. On failure the returned error is a
// *schema.ValidationError naming the first violation; the envelope is
// never partially constructed.
func (d *Decoder) Decode(sub Subsystem, raw any) (*StatusEnvelope, error) {
	fields, verr := schema.Validate(d.reg, sub.SchemaID(), raw)
	if verr != nil {
		return nil, verr
	}

	env := &StatusEnvelope{
		id:         uuid.New().String(),
		subsystem:  sub,
		response:   fields["response"].(float64),
		receivedAt: time.Now().UTC(),
	}

	// Type assertions below cannot fail: Validate normalized every field
	// to its declared shape.
	body := fields[string(sub)].(map[string]any)
	switch sub {
	case SubsystemLCS:
		env.lcs = &LCSStatus{
			Status:                body["status"].([]string),
			PositionActual:        body["positionActual"].([]float64),
			PositionCommanded:     body["positionCommanded"].([]float64),
			DriveTorqueActual:     body["driveTorqueActual"].([]float64),
			DriveTorqueCommanded:  body["driveTorqueCommanded"].([]float64),
			DriveCurrentActual:    body["driveCurrentActual"].([]float64),
			DriveTemperature:      body["driveTemperature"].([]float64),
			EncoderHeadRaw:        body["encoderHeadRaw"].([]float64),
			EncoderHeadCalibrated: body["encoderHeadCalibrated"].([]float64),
			PowerDraw:             body["powerDraw"].(float64),
			TimestampUTC:          body["timestampUTC"].(float64),
		}
	case SubsystemMonCS:
		env.moncs = &MonCSStatus{
			Status:       body["status"].(string),
			Data:         body["data"].([]float64),
			TimestampUTC: body["timestampUTC"].(float64),
		}
	case SubsystemThCS:
		env.thcs = &ThCSStatus{
			Status:       body["status"].(string),
			Temperature:  body["temperature"].([]float64),
			TimestampUTC: body["timestampUTC"].(float64),
		}
	}

	return env, nil
}

// DecodeLCS decodes a raw louvre control system status message.
func (d *Decoder) DecodeLCS(raw any) (*StatusEnvelope, error) {
	return d.Decode(SubsystemLCS, raw)
}

// DecodeMonCS decodes a raw monitoring control system status message.
func (d *Decoder) DecodeMonCS(raw any) (*StatusEnvelope, error) {
	return d.Decode(SubsystemMonCS, raw)
}

// DecodeThCS decodes a raw thermal control system status message.
func (d *Decoder) DecodeThCS(raw any) (*StatusEnvelope, error) {
	return d.Decode(SubsystemThCS, raw)
}

// DecodeJSON deserializes one newline-framed JSON message from the wire
// and decodes it.
func (d *Decoder) DecodeJSON(sub Subsystem, data []byte) (*StatusEnvelope, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.WrapInvalid(errors.ErrParsingFailed, "Decoder", "DecodeJSON",
			"unmarshal telemetry message: "+err.Error())
	}
	return d.Decode(sub, raw)
}
