// internal/metrics/metrics.go
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tamzrod/rangefinder-replicator/internal/monitoring"
	"github.com/tamzrod/rangefinder-replicator/internal/poller"
	"github.com/tamzrod/rangefinder-replicator/internal/status"
)

// Metrics holds the per-unit collectors on a private registry.
type Metrics struct {
	reg *prometheus.Registry

	distance     *prometheus.GaugeVec
	raw          *prometheus.GaugeVec
	healthy      *prometheus.GaugeVec
	unhealthy    *prometheus.CounterVec
	polls        *prometheus.CounterVec
	writeErrors  *prometheus.CounterVec
	secondsInErr *prometheus.GaugeVec
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		distance: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rangefinder_distance_cm",
			Help: "Filtered, clamped distance.",
		}, []string{"unit"}),
		raw: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rangefinder_raw_distance_cm",
			Help: "Last decoded first-echo distance.",
		}, []string{"unit"}),
		healthy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rangefinder_healthy",
			Help: "1 when the last poll's bus transactions succeeded.",
		}, []string{"unit"}),
		unhealthy: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rangefinder_unhealthy_polls_total",
			Help: "Polls with at least one failed bus transaction.",
		}, []string{"unit"}),
		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rangefinder_polls_total",
			Help: "Completed polls.",
		}, []string{"unit"}),
		writeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rangefinder_write_errors_total",
			Help: "Failed deliveries to targets.",
		}, []string{"unit", "kind"}),
		secondsInErr: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rangefinder_seconds_in_error",
			Help: "Seconds the unit has been unhealthy.",
		}, []string{"unit"}),
	}

	m.reg.MustRegister(
		m.distance,
		m.raw,
		m.healthy,
		m.unhealthy,
		m.polls,
		m.writeErrors,
		m.secondsInErr,
	)
	return m
}

// Registry exposes the registry for scraping and tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// ObservePoll records one poll result.
func (m *Metrics) ObservePoll(res poller.PollResult) {
	m.polls.WithLabelValues(res.UnitID).Inc()
	m.distance.WithLabelValues(res.UnitID).Set(float64(res.Distance))
	m.raw.WithLabelValues(res.UnitID).Set(float64(res.Raw))
	if res.Healthy {
		m.healthy.WithLabelValues(res.UnitID).Set(1)
	} else {
		m.healthy.WithLabelValues(res.UnitID).Set(0)
		m.unhealthy.WithLabelValues(res.UnitID).Inc()
	}
}

// ObserveStatus records the device status snapshot.
func (m *Metrics) ObserveStatus(unit string, s status.Snapshot) {
	m.secondsInErr.WithLabelValues(unit).Set(float64(s.SecondsInError))
}

// WriteError counts one failed delivery. kind is "data" or "status".
func (m *Metrics) WriteError(unit, kind string) {
	m.writeErrors.WithLabelValues(unit, kind).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on listen until ctx is done.
func (m *Metrics) Serve(ctx context.Context, listen string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{Addr: listen, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	monitoring.Logf("metrics: listening on %s", listen)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
