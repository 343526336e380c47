package poller

import (
	"context"
	"log/slog"
	"time"

	"github.com/lsst-ts/ts-Dome/errors"
	"github.com/lsst-ts/ts-Dome/metric"
	"github.com/lsst-ts/ts-Dome/schema"
	"github.com/lsst-ts/ts-Dome/telemetry"
)

// StatusSource produces raw status documents, one per subsystem.
// Satisfied by controller.Client.
type StatusSource interface {
	RequestStatus(ctx context.Context, sub telemetry.Subsystem) (map[string]any, error)
}

// Publisher accepts validated envelopes. Satisfied by
// publish.Publisher.
type Publisher interface {
	Publish(ctx context.Context, env *telemetry.StatusEnvelope) error
}

// Poller periodically requests the status of every subsystem, runs it
// through validation and publishes the resulting envelopes. Documents
// that fail validation are quarantined: logged with their first
// violation, counted, and never published. A bad document from one
// subsystem does not stop the others from going out.
type Poller struct {
	source    StatusSource
	decoder   *telemetry.Decoder
	publisher Publisher
	interval  time.Duration
	logger    *slog.Logger
	core      *metric.Metrics
}

// New creates a poller. The metrics registry may be nil.
func New(
	source StatusSource,
	decoder *telemetry.Decoder,
	publisher Publisher,
	interval time.Duration,
	logger *slog.Logger,
	registry *metric.MetricsRegistry,
) *Poller {
	if logger == nil {
		logger = slog.Default()
	}

	p := &Poller{
		source:    source,
		decoder:   decoder,
		publisher: publisher,
		interval:  interval,
		logger:    logger.With("component", "Poller"),
	}
	if registry != nil {
		p.core = registry.CoreMetrics()
	}
	return p
}

// Run polls until the context is cancelled. The first poll happens
// immediately. Poll errors are logged and counted but do not stop the
// loop; the source is expected to recover on its own.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("poller started", "interval", p.interval)

	for {
		if err := p.PollOnce(ctx); err != nil {
			p.logger.Warn("poll cycle failed", "error", err)
			if p.core != nil {
				p.core.RecordError("Poller", classLabel(err))
			}
		}

		select {
		case <-ctx.Done():
			p.logger.Info("poller stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// PollOnce runs a single poll cycle over all subsystems. It returns
// the first transport error; validation failures are quarantined and
// reported through logs and metrics only.
func (p *Poller) PollOnce(ctx context.Context) error {
	for _, sub := range telemetry.Subsystems() {
		raw, err := p.source.RequestStatus(ctx, sub)
		if err != nil {
			return errors.Wrap(err, "Poller", "PollOnce", "request "+string(sub)+" status")
		}
		if p.core != nil {
			p.core.RecordMessageReceived(string(sub))
		}

		start := time.Now()
		env, err := p.decoder.Decode(sub, raw)
		if err != nil {
			p.quarantine(sub, err)
			continue
		}
		if p.core != nil {
			p.core.RecordDecodeDuration(string(sub), time.Since(start))
			p.core.RecordMessageDecoded(string(sub))
		}

		if err := p.publisher.Publish(ctx, env); err != nil {
			return errors.Wrap(err, "Poller", "PollOnce", "publish "+string(sub)+" envelope")
		}
	}
	return nil
}

// quarantine records a document that failed validation.
func (p *Poller) quarantine(sub telemetry.Subsystem, err error) {
	code := "invalid"
	var verr *schema.ValidationError
	if errors.As(err, &verr) {
		code = string(verr.Code)
		p.logger.Warn("quarantined invalid status document",
			"subsystem", sub,
			"field", verr.Field,
			"code", verr.Code,
			"error", verr.Error())
	} else {
		p.logger.Warn("quarantined undecodable status document",
			"subsystem", sub,
			"error", err)
	}

	if p.core != nil {
		p.core.RecordMessageQuarantined(string(sub), code)
	}
}

func classLabel(err error) string {
	switch {
	case errors.IsTransient(err):
		return "transient"
	case errors.IsFatal(err):
		return "fatal"
	case errors.IsInvalid(err):
		return "invalid"
	default:
		return "unknown"
	}
}
