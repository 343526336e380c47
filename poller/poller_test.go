package poller

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lsst-ts/ts-Dome/errors"
	"github.com/lsst-ts/ts-Dome/metric"
	"github.com/lsst-ts/ts-Dome/schema"
	"github.com/lsst-ts/ts-Dome/telemetry"
)

type fakeSource struct {
	mu        sync.Mutex
	documents map[telemetry.Subsystem]map[string]any
	errs      map[telemetry.Subsystem]error
	calls     int
}

func (f *fakeSource) RequestStatus(_ context.Context, sub telemetry.Subsystem) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err := f.errs[sub]; err != nil {
		return nil, err
	}
	return f.documents[sub], nil
}

type fakePublisher struct {
	mu        sync.Mutex
	published []*telemetry.StatusEnvelope
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, env *telemetry.StatusEnvelope) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, env)
	return nil
}

func (f *fakePublisher) subjects() []telemetry.Subsystem {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]telemetry.Subsystem, 0, len(f.published))
	for _, env := range f.published {
		out = append(out, env.Subsystem())
	}
	return out
}

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

func validDocuments() map[telemetry.Subsystem]map[string]any {
	return map[telemetry.Subsystem]map[string]any{
		telemetry.SubsystemLCS: {
			"response": 0.0,
			"LCS": map[string]any{
				"status":                repeatStr(schema.NumLouvers, "Closed"),
				"positionActual":        repeatNum(schema.NumLouvers, 0.0),
				"positionCommanded":     repeatNum(schema.NumLouvers, 0.0),
				"driveTorqueActual":     repeatNum(schema.NumLouverMotors, 0.0),
				"driveTorqueCommanded":  repeatNum(schema.NumLouverMotors, 0.0),
				"driveCurrentActual":    repeatNum(schema.NumLouverMotors, 0.0),
				"driveTemperature":      repeatNum(schema.NumLouverMotors, 20.0),
				"encoderHeadRaw":        repeatNum(schema.NumLouverMotors, 0.0),
				"encoderHeadCalibrated": repeatNum(schema.NumLouverMotors, 0.0),
				"powerDraw":             0.0,
				"timestampUTC":          1700000000.0,
			},
		},
		telemetry.SubsystemMonCS: {
			"response": 0.0,
			"MonCS": map[string]any{
				"status":       "Disabled",
				"data":         repeatNum(schema.NumMonitorSensors, 0.0),
				"timestampUTC": 1700000000.0,
			},
		},
		telemetry.SubsystemThCS: {
			"response": 0.0,
			"ThCS": map[string]any{
				"status":       "Disabled",
				"temperature":  repeatNum(schema.NumThermoSensors, 0.0),
				"timestampUTC": 1700000000.0,
			},
		},
	}
}

func newPoller(source *fakeSource, pub *fakePublisher, registry *metric.MetricsRegistry) *Poller {
	dec := telemetry.NewDecoder(schema.NewRegistry())
	return New(source, dec, pub, 10*time.Millisecond, nil, registry)
}

func TestPollOncePublishesAllSubsystems(t *testing.T) {
	source := &fakeSource{documents: validDocuments()}
	pub := &fakePublisher{}

	p := newPoller(source, pub, nil)
	require.NoError(t, p.PollOnce(context.Background()))

	assert.Equal(t, telemetry.Subsystems(), pub.subjects())
}

func TestPollOnceQuarantinesInvalidDocument(t *testing.T) {
	docs := validDocuments()
	docs[telemetry.SubsystemMonCS]["MonCS"].(map[string]any)["data"] = repeatNum(15, 0.0)

	source := &fakeSource{documents: docs}
	pub := &fakePublisher{}
	registry := metric.NewMetricsRegistry()

	p := newPoller(source, pub, registry)
	require.NoError(t, p.PollOnce(context.Background()))

	// The bad MonCS document is dropped, the other two still go out.
	assert.Equal(t,
		[]telemetry.Subsystem{telemetry.SubsystemLCS, telemetry.SubsystemThCS},
		pub.subjects())

	quarantined := registry.CoreMetrics().MessagesQuarantined.WithLabelValues("MonCS", "array_length")
	assert.Equal(t, 1.0, testutil.ToFloat64(quarantined))
}

func TestPollOnceReturnsSourceError(t *testing.T) {
	source := &fakeSource{
		documents: validDocuments(),
		errs: map[telemetry.Subsystem]error{
			telemetry.SubsystemLCS: errors.ErrNoConnection,
		},
	}
	pub := &fakePublisher{}

	p := newPoller(source, pub, nil)
	err := p.PollOnce(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNoConnection))
	assert.Empty(t, pub.subjects())
}

func TestPollOnceReturnsPublishError(t *testing.T) {
	source := &fakeSource{documents: validDocuments()}
	pub := &fakePublisher{err: errors.ErrPublishFailed}

	p := newPoller(source, pub, nil)
	err := p.PollOnce(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrPublishFailed))
}

func TestRunPollsUntilCancelled(t *testing.T) {
	source := &fakeSource{documents: validDocuments()}
	pub := &fakePublisher{}

	p := newPoller(source, pub, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	// First poll is immediate, then roughly every 10ms.
	assert.GreaterOrEqual(t, len(pub.subjects()), 3)
}

func TestRunKeepsGoingAfterErrors(t *testing.T) {
	source := &fakeSource{
		documents: validDocuments(),
		errs: map[telemetry.Subsystem]error{
			telemetry.SubsystemLCS: errors.ErrConnectionLost,
		},
	}
	pub := &fakePublisher{}
	registry := metric.NewMetricsRegistry()

	p := newPoller(source, pub, registry)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	_ = p.Run(ctx)

	source.mu.Lock()
	calls := source.calls
	source.mu.Unlock()
	assert.Greater(t, calls, 1)

	errCount := registry.CoreMetrics().ErrorsTotal.WithLabelValues("Poller", "transient")
	assert.GreaterOrEqual(t, testutil.ToFloat64(errCount), 1.0)
}
