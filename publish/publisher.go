package publish

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/lsst-ts/ts-Dome/errors"
	"github.com/lsst-ts/ts-Dome/metric"
	"github.com/lsst-ts/ts-Dome/telemetry"
)

const subjectPrefix = "dome.telemetry"

// SubjectFor returns the NATS subject a subsystem's telemetry is
// published on, e.g. dome.telemetry.lcs.
func SubjectFor(sub telemetry.Subsystem) string {
	return subjectPrefix + "." + strings.ToLower(string(sub))
}

// Publisher publishes validated telemetry envelopes to NATS.
type Publisher struct {
	nc     *nats.Conn
	logger *slog.Logger
	core   *metric.Metrics
}

// Connect establishes a NATS connection with unlimited reconnects and
// returns a publisher on it.
func Connect(url, name string, logger *slog.Logger, registry *metric.MetricsRegistry) (*Publisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "Publisher")

	var core *metric.Metrics
	if registry != nil {
		core = registry.CoreMetrics()
	}

	opts := []nats.Option{
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.Timeout(5 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("NATS disconnected", "error", err)
			if core != nil {
				core.RecordNATSStatus(false)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", "url", nc.ConnectedUrl())
			if core != nil {
				core.RecordNATSReconnect()
				core.RecordNATSStatus(true)
			}
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Info("NATS connection closed")
			if core != nil {
				core.RecordNATSStatus(false)
			}
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, errors.WrapTransient(err, "Publisher", "Connect", "connect to NATS")
	}

	log.Info("connected to NATS", "url", nc.ConnectedUrl())
	if core != nil {
		core.RecordNATSStatus(true)
	}

	return &Publisher{nc: nc, logger: log, core: core}, nil
}

// NewPublisher wraps an existing connection. Used by tests that bring
// their own server.
func NewPublisher(nc *nats.Conn, logger *slog.Logger, registry *metric.MetricsRegistry) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Publisher{
		nc:     nc,
		logger: logger.With("component", "Publisher"),
	}
	if registry != nil {
		p.core = registry.CoreMetrics()
	}
	return p
}

// Publish sends one envelope on its subsystem subject.
func (p *Publisher) Publish(ctx context.Context, env *telemetry.StatusEnvelope) error {
	if err := ctx.Err(); err != nil {
		return errors.WrapTransient(err, "Publisher", "Publish", "check context")
	}

	data, err := json.Marshal(env)
	if err != nil {
		return errors.WrapInvalid(err, "Publisher", "Publish", "encode envelope")
	}

	subject := SubjectFor(env.Subsystem())
	if err := p.nc.Publish(subject, data); err != nil {
		if p.core != nil {
			p.core.RecordError("Publisher", "transient")
		}
		return errors.WrapTransient(
			errors.ErrPublishFailed,
			"Publisher", "Publish", "publish to "+subject)
	}

	if p.core != nil {
		p.core.RecordMessagePublished(subject)
	}
	p.logger.Debug("published envelope",
		"subject", subject,
		"id", env.ID(),
		"subsystem", env.Subsystem())
	return nil
}

// Close drains the connection so queued messages are flushed before
// shutdown.
func (p *Publisher) Close() error {
	if p.nc == nil || p.nc.IsClosed() {
		return nil
	}
	if err := p.nc.Drain(); err != nil {
		return errors.WrapTransient(err, "Publisher", "Close", "drain connection")
	}
	return nil
}
