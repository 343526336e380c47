package mock

import (
	"bufio"
	"encoding/json"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/lsst-ts/ts-Dome/errors"
	"github.com/lsst-ts/ts-Dome/schema"
	"github.com/lsst-ts/ts-Dome/telemetry"
)

// Ack timeouts in seconds, as reported to the commander.
const (
	longTimeout  = 20
	shortTimeout = 2
)

type request struct {
	Command    string         `json:"command"`
	Parameters map[string]any `json:"parameters"`
}

type ack struct {
	Response telemetry.ResponseCode `json:"response"`
	Timeout  int                    `json:"timeout"`
}

// Controller simulates a low-level dome controller over TCP. It
// understands the motion and status command set and keeps just enough
// state to produce consistent telemetry.
type Controller struct {
	logger *slog.Logger

	mu      sync.Mutex
	ln      net.Listener
	conns   map[net.Conn]struct{}
	wg      sync.WaitGroup
	failing map[string]telemetry.ResponseCode

	lcs   telemetry.LCSStatus
	moncs telemetry.MonCSStatus
	thcs  telemetry.ThCSStatus
}

// NewController creates a stopped mock controller with all louvres
// closed and the monitoring and thermal subsystems disabled.
func NewController(logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Controller{
		logger:  logger.With("component", "MockController"),
		conns:   make(map[net.Conn]struct{}),
		failing: make(map[string]telemetry.ResponseCode),
	}

	c.lcs = telemetry.LCSStatus{
		Status:                make([]string, schema.NumLouvers),
		PositionActual:        make([]float64, schema.NumLouvers),
		PositionCommanded:     make([]float64, schema.NumLouvers),
		DriveTorqueActual:     make([]float64, schema.NumLouverMotors),
		DriveTorqueCommanded:  make([]float64, schema.NumLouverMotors),
		DriveCurrentActual:    make([]float64, schema.NumLouverMotors),
		DriveTemperature:      make([]float64, schema.NumLouverMotors),
		EncoderHeadRaw:        make([]float64, schema.NumLouverMotors),
		EncoderHeadCalibrated: make([]float64, schema.NumLouverMotors),
	}
	for i := range c.lcs.Status {
		c.lcs.Status[i] = string(telemetry.StateClosed)
	}
	for i := range c.lcs.DriveTemperature {
		c.lcs.DriveTemperature[i] = 20.0
	}

	c.moncs = telemetry.MonCSStatus{
		Status: string(telemetry.StateDisabled),
		Data:   make([]float64, schema.NumMonitorSensors),
	}
	c.thcs = telemetry.ThCSStatus{
		Status:      string(telemetry.StateDisabled),
		Temperature: make([]float64, schema.NumThermoSensors),
	}

	return c
}

// Start begins listening on addr. Use "127.0.0.1:0" in tests and read
// the assigned address back with Addr.
func (c *Controller) Start(addr string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ln != nil {
		return errors.WrapInvalid(errors.ErrAlreadyStarted,
			"MockController", "Start", "start listener")
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.WrapFatal(err, "MockController", "Start", "listen")
	}
	c.ln = ln

	c.logger.Info("mock controller listening", "addr", ln.Addr().String())

	c.wg.Add(1)
	go c.acceptLoop(ln)
	return nil
}

// Addr returns the listen address, or "" when stopped.
func (c *Controller) Addr() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ln == nil {
		return ""
	}
	return c.ln.Addr().String()
}

// Stop closes the listener and waits for connection handlers to
// finish.
func (c *Controller) Stop() error {
	c.mu.Lock()
	ln := c.ln
	c.ln = nil
	for conn := range c.conns {
		_ = conn.Close()
	}
	c.mu.Unlock()

	if ln == nil {
		return errors.WrapInvalid(errors.ErrNotStarted,
			"MockController", "Stop", "stop listener")
	}

	err := ln.Close()
	c.wg.Wait()
	if err != nil {
		return errors.WrapTransient(err, "MockController", "Stop", "close listener")
	}
	return nil
}

// FailCommand forces the next occurrence of the given command to be
// rejected with code. The failure is one-shot. Used to exercise error
// paths in tests.
func (c *Controller) FailCommand(command string, code telemetry.ResponseCode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failing[command] = code
}

// ClearFailures removes all forced command failures.
func (c *Controller) ClearFailures() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failing = make(map[string]telemetry.ResponseCode)
}

func (c *Controller) acceptLoop(ln net.Listener) {
	defer c.wg.Done()
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		c.mu.Lock()
		if c.ln == nil {
			// Stop ran between Accept and here. The listener sweep
			// never saw this conn, so close it now.
			c.mu.Unlock()
			_ = conn.Close()
			return
		}
		c.conns[conn] = struct{}{}
		c.mu.Unlock()

		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.handleConn(conn)
		}()
	}
}

func (c *Controller) handleConn(conn net.Conn) {
	defer func() {
		_ = conn.Close()
		c.mu.Lock()
		delete(c.conns, conn)
		c.mu.Unlock()
	}()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		reply := c.dispatch(line)
		if _, err := conn.Write(append(reply, '\r', '\n')); err != nil {
			c.logger.Warn("write reply failed", "error", err)
			return
		}
	}
}

func (c *Controller) dispatch(line []byte) []byte {
	var req request
	if err := json.Unmarshal(line, &req); err != nil || req.Command == "" {
		c.logger.Error("unparseable command line", "line", string(line))
		return marshalReply(ack{Response: telemetry.ResponseIncorrectParameter, Timeout: -1})
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if code, ok := c.failing[req.Command]; ok {
		delete(c.failing, req.Command)
		c.logger.Info("forced command failure", "command", req.Command, "response", code)
		return marshalReply(ack{Response: code, Timeout: -1})
	}

	switch req.Command {
	case "statusLCS":
		c.lcs.TimestampUTC = nowUTC()
		return statusReply(telemetry.SubsystemLCS, c.lcs)
	case "statusMonCS":
		c.moncs.TimestampUTC = nowUTC()
		return statusReply(telemetry.SubsystemMonCS, c.moncs)
	case "statusThCS":
		c.thcs.TimestampUTC = nowUTC()
		return statusReply(telemetry.SubsystemThCS, c.thcs)
	}

	code, timeout := c.execute(req)
	if code != telemetry.ResponseOK {
		c.logger.Info("command rejected", "command", req.Command, "response", code)
	}
	return marshalReply(ack{Response: code, Timeout: timeout})
}

// execute runs a motion or configuration command. Status commands are
// handled by dispatch.
func (c *Controller) execute(req request) (telemetry.ResponseCode, int) {
	switch req.Command {
	case "moveAz":
		if !hasFloats(req.Parameters, "azimuth", "azRate") {
			return telemetry.ResponseIncorrectParameter, -1
		}
	case "moveEl":
		if !hasFloats(req.Parameters, "elevation") {
			return telemetry.ResponseIncorrectParameter, -1
		}
	case "crawlAz":
		if !hasFloats(req.Parameters, "azRate") {
			return telemetry.ResponseIncorrectParameter, -1
		}
	case "crawlEl":
		if !hasFloats(req.Parameters, "elRate") {
			return telemetry.ResponseIncorrectParameter, -1
		}
	case "stopAz", "stopEl":
		return telemetry.ResponseOK, shortTimeout
	case "stop", "openShutter", "closeShutter", "stopShutter", "park":
		// Motion state outside the louvre, monitoring and thermal
		// subsystems is not tracked.
	case "setLouvers":
		position, ok := floatSlice(req.Parameters["position"])
		if !ok || len(position) != schema.NumLouvers {
			return telemetry.ResponseIncorrectParameter, -1
		}
		c.setLouvers(position)
	case "closeLouvers":
		c.closeLouvers()
	case "stopLouvers":
		for i := range c.lcs.Status {
			c.lcs.Status[i] = string(telemetry.StateStopped)
		}
	case "setTemperature":
		temperature, ok := toFloat(req.Parameters["temperature"])
		if !ok {
			return telemetry.ResponseIncorrectParameter, -1
		}
		c.thcs.Status = string(telemetry.StateEnabled)
		for i := range c.thcs.Temperature {
			c.thcs.Temperature[i] = temperature
		}
	default:
		return telemetry.ResponseUnsupportedCommand, -1
	}
	return telemetry.ResponseOK, longTimeout
}

// setLouvers applies per-louvre positions. A negative position leaves
// that louvre untouched.
func (c *Controller) setLouvers(position []float64) {
	for i, pos := range position {
		if pos < 0 {
			continue
		}
		if pos > 0 {
			c.lcs.Status[i] = string(telemetry.StateOpen)
		} else {
			c.lcs.Status[i] = string(telemetry.StateClosed)
		}
		c.lcs.PositionActual[i] = pos
		c.lcs.PositionCommanded[i] = pos
	}
}

func (c *Controller) closeLouvers() {
	for i := range c.lcs.Status {
		c.lcs.Status[i] = string(telemetry.StateClosed)
		c.lcs.PositionActual[i] = 0.0
		c.lcs.PositionCommanded[i] = 0.0
	}
}

func statusReply(sub telemetry.Subsystem, status any) []byte {
	reply := map[string]any{
		"response":  telemetry.ResponseOK,
		string(sub): status,
	}
	data, err := json.Marshal(reply)
	if err != nil {
		return marshalReply(ack{Response: telemetry.ResponseIncorrectParameter, Timeout: -1})
	}
	return data
}

func marshalReply(a ack) []byte {
	data, _ := json.Marshal(a)
	return data
}

func nowUTC() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func hasFloats(params map[string]any, keys ...string) bool {
	for _, key := range keys {
		if _, ok := toFloat(params[key]); !ok {
			return false
		}
	}
	return true
}

func floatSlice(v any) ([]float64, bool) {
	raw, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]float64, len(raw))
	for i, item := range raw {
		f, ok := toFloat(item)
		if !ok {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}
