package telemetry

import (
	"encoding/json"
	"time"
)

// StatusEnvelope is the typed result of decoding one telemetry message:
// the controller's response code plus exactly one subsystem status record.
//
// Envelopes are immutable after construction - all fields are set by the
// Decoder on full success and never modified. The envelope carries a
// unique message identifier assigned at decode time, so two decodes of
// the same raw input yield distinct envelopes with value-equal records.
type StatusEnvelope struct {
	id         string
	subsystem  Subsystem
	response   float64
	lcs        *LCSStatus
	moncs      *MonCSStatus
	thcs       *ThCSStatus
	receivedAt time.Time
}

// ID returns the unique message identifier assigned at decode time.
func (e *StatusEnvelope) ID() string {
	return e.id
}

// Subsystem returns which subsystem status the envelope carries.
func (e *StatusEnvelope) Subsystem() Subsystem {
	return e.subsystem
}

// Response returns the raw response value from the envelope.
func (e *StatusEnvelope) Response() float64 {
	return e.response
}

// ResponseCode returns the response value as a code.
func (e *StatusEnvelope) ResponseCode() ResponseCode {
	return ResponseCode(int(e.response))
}

// OK reports whether the controller flagged the message as successful.
func (e *StatusEnvelope) OK() bool {
	return e.ResponseCode() == ResponseOK
}

// ReceivedAt returns the decode timestamp.
func (e *StatusEnvelope) ReceivedAt() time.Time {
	return e.receivedAt
}

// LCS returns the louvre/shutter status record, or nil when the envelope
// carries a different subsystem.
func (e *StatusEnvelope) LCS() *LCSStatus {
	return e.lcs
}

// MonCS returns the monitoring status record, or nil when the envelope
// carries a different subsystem.
func (e *StatusEnvelope) MonCS() *MonCSStatus {
	return e.moncs
}

// ThCS returns the thermal status record, or nil when the envelope
// carries a different subsystem.
func (e *StatusEnvelope) ThCS() *ThCSStatus {
	return e.thcs
}

// envelopeWire is the JSON wire format for a published envelope.
type envelopeWire struct {
	ID         string    `json:"id"`
	Subsystem  Subsystem `json:"subsystem"`
	Response   float64   `json:"response"`
	Status     any       `json:"status"`
	ReceivedAt int64     `json:"received_at"`
}

// MarshalJSON implements json.Marshaler so envelopes can be published
// even though their fields are private.
func (e *StatusEnvelope) MarshalJSON() ([]byte, error) {
	var status any
	switch e.subsystem {
	case SubsystemLCS:
		status = e.lcs
	case SubsystemMonCS:
		status = e.moncs
	case SubsystemThCS:
		status = e.thcs
	}

	return json.Marshal(envelopeWire{
		ID:         e.id,
		Subsystem:  e.subsystem,
		Response:   e.response,
		Status:     status,
		ReceivedAt: e.receivedAt.UnixMilli(),
	})
}
