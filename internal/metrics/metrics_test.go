// internal/metrics/metrics_test.go
package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/rangefinder-replicator/internal/poller"
	"github.com/tamzrod/rangefinder-replicator/internal/status"
)

func TestObservePoll(t *testing.T) {
	m := New()

	m.ObservePoll(poller.PollResult{UnitID: "tank1", Distance: 120, Raw: 118, Healthy: true})
	m.ObservePoll(poller.PollResult{UnitID: "tank1", Distance: 121, Raw: 118, Healthy: false})

	assert.Equal(t, 121.0, testutil.ToFloat64(m.distance.WithLabelValues("tank1")))
	assert.Equal(t, 118.0, testutil.ToFloat64(m.raw.WithLabelValues("tank1")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.healthy.WithLabelValues("tank1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.unhealthy.WithLabelValues("tank1")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.polls.WithLabelValues("tank1")))
}

func TestObserveStatusAndWriteErrors(t *testing.T) {
	m := New()

	m.ObserveStatus("tank1", status.Snapshot{Health: status.HealthError, SecondsInError: 12})
	m.WriteError("tank1", "data")
	m.WriteError("tank1", "data")

	assert.Equal(t, 12.0, testutil.ToFloat64(m.secondsInErr.WithLabelValues("tank1")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.writeErrors.WithLabelValues("tank1", "data")))
}

func TestHandler_Exposition(t *testing.T) {
	m := New()
	m.ObservePoll(poller.PollResult{UnitID: "tank1", Distance: 300, Healthy: true})

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `rangefinder_distance_cm{unit="tank1"} 300`)
}
