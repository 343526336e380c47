package telemetry

import (
	"fmt"

	"github.com/lsst-ts/ts-Dome/schema"
)

// Subsystem identifies one of the dome lower level components that emit
// status telemetry.
type Subsystem string

// The telemetry-emitting subsystems.
const (
	SubsystemLCS   Subsystem = "LCS"
	SubsystemMonCS Subsystem = "MonCS"
	SubsystemThCS  Subsystem = "ThCS"
)

// Subsystems lists all telemetry subsystems in the order the controller
// reports them in a status reply.
func Subsystems() []Subsystem {
	return []Subsystem{SubsystemLCS, SubsystemMonCS, SubsystemThCS}
}

// SchemaID returns the envelope schema for the subsystem.
func (s Subsystem) SchemaID() schema.ID {
	switch s {
	case SubsystemLCS:
		return schema.LCS
	case SubsystemMonCS:
		return schema.MonCS
	case SubsystemThCS:
		return schema.ThCS
	default:
		panic(fmt.Sprintf("telemetry: unknown subsystem %q", string(s)))
	}
}

// ResponseCode is the status code carried in the response field of every
// envelope and in command acknowledgements.
type ResponseCode int

// Response codes emitted by the dome controller.
const (
	ResponseOK                 ResponseCode = 0
	ResponseUnsupportedCommand ResponseCode = 2
	ResponseIncorrectParameter ResponseCode = 3
)

// String returns the response code name.
func (c ResponseCode) String() string {
	switch c {
	case ResponseOK:
		return "OK"
	case ResponseUnsupportedCommand:
		return "UNSUPPORTED_COMMAND"
	case ResponseIncorrectParameter:
		return "INCORRECT_PARAMETER"
	default:
		return fmt.Sprintf("ResponseCode(%d)", int(c))
	}
}

// LLCState is a lower level component status string as reported in
// telemetry, e.g. per louvre in the LCS status array.
type LLCState string

// Known lower level component states.
const (
	StateClosed   LLCState = "Closed"
	StateCrawling LLCState = "Crawling"
	StateDisabled LLCState = "Disabled"
	StateEnabled  LLCState = "Enabled"
	StateMoving   LLCState = "Moving"
	StateOpen     LLCState = "Open"
	StateParked   LLCState = "Parked"
	StateParking  LLCState = "Parking"
	StateStopped  LLCState = "Stopped"
)

// LCSStatus is the validated louvre/shutter control subsystem status.
// Louvre-indexed arrays have schema.NumLouvers elements, drive-indexed
// arrays schema.NumLouverMotors.
type LCSStatus struct {
	Status                []string  `json:"status"`
	PositionActual        []float64 `json:"positionActual"`
	PositionCommanded     []float64 `json:"positionCommanded"`
	DriveTorqueActual     []float64 `json:"driveTorqueActual"`
	DriveTorqueCommanded  []float64 `json:"driveTorqueCommanded"`
	DriveCurrentActual    []float64 `json:"driveCurrentActual"`
	DriveTemperature      []float64 `json:"driveTemperature"`
	EncoderHeadRaw        []float64 `json:"encoderHeadRaw"`
	EncoderHeadCalibrated []float64 `json:"encoderHeadCalibrated"`
	PowerDraw             float64   `json:"powerDraw"`
	TimestampUTC          float64   `json:"timestampUTC"`
}

// MonCSStatus is the validated monitoring control subsystem status with
// schema.NumMonitorSensors data channels.
type MonCSStatus struct {
	Status       string    `json:"status"`
	Data         []float64 `json:"data"`
	TimestampUTC float64   `json:"timestampUTC"`
}

// ThCSStatus is the validated thermal control subsystem status with
// schema.NumThermoSensors temperature sensors.
type ThCSStatus struct {
	Status       string    `json:"status"`
	Temperature  []float64 `json:"temperature"`
	TimestampUTC float64   `json:"timestampUTC"`
}
