package metric

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsRegistry(t *testing.T) {
	reg := NewMetricsRegistry()

	require.NotNil(t, reg.PrometheusRegistry())
	require.NotNil(t, reg.CoreMetrics())

	// Core metrics must be gatherable without conflicts.
	_, err := reg.PrometheusRegistry().Gather()
	assert.NoError(t, err)
}

func TestCoreMetricRecording(t *testing.T) {
	reg := NewMetricsRegistry()
	m := reg.CoreMetrics()

	m.RecordMessageReceived("LCS")
	m.RecordMessageReceived("LCS")
	m.RecordMessageDecoded("LCS")
	m.RecordMessageQuarantined("MonCS", "array_length")
	m.RecordMessagePublished("dome.telemetry.lcs")
	m.RecordDecodeDuration("LCS", 2*time.Millisecond)
	m.RecordError("Poller", "invalid")
	m.RecordCommand("status", "ok")
	m.RecordControllerStatus(true)
	m.RecordNATSStatus(false)
	m.RecordNATSReconnect()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.MessagesReceived.WithLabelValues("LCS")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MessagesDecoded.WithLabelValues("LCS")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MessagesQuarantined.WithLabelValues("MonCS", "array_length")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MessagesPublished.WithLabelValues("dome.telemetry.lcs")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ErrorsTotal.WithLabelValues("Poller", "invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CommandsSent.WithLabelValues("status", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ControllerConnected))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.NATSConnected))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NATSReconnects))
}

func TestRegisterComponentCollector(t *testing.T) {
	reg := NewMetricsRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tsdome",
		Subsystem: "mock",
		Name:      "requests_total",
		Help:      "Test counter",
	})

	require.NoError(t, reg.Register("mock", "requests_total", counter))

	// Same key again is rejected.
	err := reg.Register("mock", "requests_total", counter)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")

	assert.True(t, reg.Unregister("mock", "requests_total"))
	assert.False(t, reg.Unregister("mock", "requests_total"))

	// After unregistering, the same key can be reused.
	assert.NoError(t, reg.Register("mock", "requests_total", counter))
}

func TestServerServesMetrics(t *testing.T) {
	reg := NewMetricsRegistry()
	reg.CoreMetrics().RecordMessageDecoded("ThCS")

	srv := NewServer(0, "", reg)
	assert.Equal(t, "/metrics", srv.path)
	assert.Equal(t, 9090, srv.port)

	srv = NewServer(19724, "/metrics", reg)
	go func() { _ = srv.Start() }()
	defer func() { _ = srv.Stop() }()

	var resp *http.Response
	var err error
	for i := 0; i < 50; i++ {
		resp, err = http.Get(srv.Address())
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "tsdome_telemetry_decoded_total"))
}

// Stopping right after Start must not panic even when Stop wins the
// race and clears the server before Start begins serving.
func TestServerStopDuringStart(t *testing.T) {
	reg := NewMetricsRegistry()

	for i := 0; i < 50; i++ {
		srv := NewServer(19725, "/metrics", reg)

		done := make(chan error, 1)
		go func() { done <- srv.Start() }()

		// Stop may run before Start has installed the server, in which
		// case it is a no-op. Keep stopping until Start returns.
		deadline := time.After(2 * time.Second)
		for {
			require.NoError(t, srv.Stop())
			select {
			case err := <-done:
				assert.NoError(t, err)
			case <-deadline:
				t.Fatal("Start did not return after Stop")
			case <-time.After(time.Millisecond):
				continue
			}
			break
		}
	}
}
