package controller

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/lsst-ts/ts-Dome/config"
	"github.com/lsst-ts/ts-Dome/errors"
	"github.com/lsst-ts/ts-Dome/metric"
	"github.com/lsst-ts/ts-Dome/pkg/retry"
	"github.com/lsst-ts/ts-Dome/telemetry"
)

type command struct {
	Command    string         `json:"command"`
	Parameters map[string]any `json:"parameters"`
}

type ack struct {
	Response telemetry.ResponseCode `json:"response"`
	Timeout  float64                `json:"timeout"`
}

// Client is a TCP client for a low-level dome controller. All exchanges
// are newline-framed JSON request/reply pairs over a single connection,
// serialized by an internal mutex.
type Client struct {
	cfg     *config.ConnConfig
	logger  *slog.Logger
	core    *metric.Metrics
	metrics *Metrics

	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
}

// NewClient creates a disconnected client. The metrics registry may be
// nil, in which case no metrics are recorded.
func NewClient(cfg *config.ConnConfig, logger *slog.Logger, registry *metric.MetricsRegistry) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		cfg:     cfg,
		logger:  logger.With("component", "Client", "addr", cfg.Address()),
		metrics: newMetrics(registry),
	}
	if registry != nil {
		c.core = registry.CoreMetrics()
	}
	return c
}

// Connect dials the controller. The configured connection timeout
// bounds the dial; the context can cancel it earlier.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return errors.WrapInvalid(errors.ErrAlreadyStarted,
			"Client", "Connect", "dial controller")
	}

	dialer := net.Dialer{Timeout: c.cfg.ConnectionTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.cfg.Address())
	if err != nil {
		return errors.WrapTransient(
			fmt.Errorf("%w: %v", errors.ErrConnectionTimeout, err),
			"Client", "Connect", "dial controller")
	}

	c.conn = conn
	c.reader = bufio.NewReader(conn)
	c.logger.Info("connected to controller")
	if c.core != nil {
		c.core.RecordControllerStatus(true)
	}
	return nil
}

// ConnectWithRetry dials the controller with the persistent backoff
// schedule. Useful at startup when the controller may not be up yet.
func (c *Client) ConnectWithRetry(ctx context.Context) error {
	first := true
	return retry.Do(ctx, retry.Persistent(), func() error {
		if !first {
			if c.core != nil {
				c.core.RecordControllerReconnect()
			}
			c.logger.Info("retrying controller connection")
		}
		first = false
		return c.Connect(ctx)
	})
}

// Connected reports whether the client currently holds a connection.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Close closes the connection. Closing a disconnected client is a
// no-op.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropLocked(nil)
}

// Command sends a named command with parameters and waits for the
// acknowledgement. A non-OK response code is returned as an invalid
// error wrapping the matching sentinel.
func (c *Client) Command(ctx context.Context, name string, params map[string]any) error {
	if params == nil {
		params = map[string]any{}
	}

	reply, err := c.roundTrip(ctx, command{Command: name, Parameters: params})
	if err != nil {
		c.recordCommand(name, "error")
		return err
	}

	var a ack
	if err := json.Unmarshal(reply, &a); err != nil {
		c.recordCommand(name, "error")
		return errors.WrapInvalid(
			fmt.Errorf("%w: %v", errors.ErrParsingFailed, err),
			"Client", "Command", "parse acknowledgement")
	}

	if err := responseError(a.Response); err != nil {
		c.recordCommand(name, a.Response.String())
		c.logger.Warn("command rejected",
			"command", name,
			"response", a.Response.String())
		return errors.WrapInvalid(err, "Client", "Command",
			fmt.Sprintf("execute %s", name))
	}

	c.recordCommand(name, "ok")
	return nil
}

// RequestStatus requests the raw status document for one subsystem.
// The reply is returned undecoded so the caller can run validation.
func (c *Client) RequestStatus(ctx context.Context, sub telemetry.Subsystem) (map[string]any, error) {
	reply, err := c.roundTrip(ctx, command{
		Command:    "status" + string(sub),
		Parameters: map[string]any{},
	})
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := json.Unmarshal(reply, &raw); err != nil {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %v", errors.ErrParsingFailed, err),
			"Client", "RequestStatus", "parse status reply")
	}

	if c.metrics != nil {
		c.metrics.statusReads.Inc()
	}
	return raw, nil
}

// roundTrip writes one request line and reads one reply line. Any I/O
// failure drops the connection so the next call can reconnect.
func (c *Client) roundTrip(ctx context.Context, cmd command) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil, errors.WrapTransient(errors.ErrNoConnection,
			"Client", "roundTrip", "send "+cmd.Command)
	}

	payload, err := json.Marshal(cmd)
	if err != nil {
		return nil, errors.WrapInvalid(err, "Client", "roundTrip", "encode "+cmd.Command)
	}

	deadline := time.Now().Add(c.cfg.ReadTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return nil, c.dropLocked(errors.WrapTransient(err,
			"Client", "roundTrip", "set deadline"))
	}

	start := time.Now()
	if _, err := c.conn.Write(append(payload, '\r', '\n')); err != nil {
		if c.metrics != nil {
			c.metrics.readErrors.Inc()
		}
		return nil, c.dropLocked(errors.WrapTransient(
			fmt.Errorf("%w: %v", errors.ErrConnectionLost, err),
			"Client", "roundTrip", "write "+cmd.Command))
	}

	line, err := c.reader.ReadBytes('\n')
	if err != nil {
		if c.metrics != nil {
			c.metrics.readErrors.Inc()
		}
		wrapped := errors.ErrConnectionLost
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			wrapped = errors.ErrReadTimeout
		}
		return nil, c.dropLocked(errors.WrapTransient(
			fmt.Errorf("%w: %v", wrapped, err),
			"Client", "roundTrip", "read reply for "+cmd.Command))
	}

	if c.metrics != nil {
		c.metrics.roundTripTime.Observe(time.Since(start).Seconds())
		c.metrics.lastActivity.SetToCurrentTime()
	}
	return line, nil
}

// dropLocked closes the connection and returns err. Callers must hold
// the mutex.
func (c *Client) dropLocked(err error) error {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
		c.reader = nil
		if err != nil {
			c.logger.Warn("connection dropped", "error", err)
		} else {
			c.logger.Info("connection closed")
		}
		if c.core != nil {
			c.core.RecordControllerStatus(false)
		}
	}
	return err
}

func (c *Client) recordCommand(name, result string) {
	if c.core != nil {
		c.core.RecordCommand(name, result)
	}
}

func responseError(code telemetry.ResponseCode) error {
	switch code {
	case telemetry.ResponseOK:
		return nil
	case telemetry.ResponseUnsupportedCommand:
		return errors.ErrUnsupportedCommand
	case telemetry.ResponseIncorrectParameter:
		return errors.ErrIncorrectParameter
	default:
		return fmt.Errorf("%w: response code %d", errors.ErrCommandRejected, int(code))
	}
}
