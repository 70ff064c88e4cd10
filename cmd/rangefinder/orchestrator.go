// cmd/rangefinder/orchestrator.go
package main

import (
	"context"
	"time"

	"github.com/tamzrod/rangefinder-replicator/internal/metrics"
	"github.com/tamzrod/rangefinder-replicator/internal/monitoring"
	"github.com/tamzrod/rangefinder-replicator/internal/poller"
	"github.com/tamzrod/rangefinder-replicator/internal/status"
	"github.com/tamzrod/rangefinder-replicator/internal/timeutil"
	"github.com/tamzrod/rangefinder-replicator/internal/writer"
)

// orchestrator consumes one unit's poll results: data delivery, device
// status (runner-owned state + 1Hz seconds ticker) and metrics.
type orchestrator struct {
	unitID       string
	data         writer.Writer
	statusWriter writer.StatusWriter // nil when the unit did not opt in
	metrics      *metrics.Metrics    // nil disables metrics
	clock        timeutil.Clock
}

func (o *orchestrator) run(ctx context.Context, in <-chan poller.PollResult) {
	tracker := status.NewTracker()

	secTicker := o.clock.NewTicker(time.Second)
	defer secTicker.Stop()

	// Full block write on start (identity re-assert).
	o.writeStatus(tracker.Snapshot(), "on start")

	for {
		select {
		case <-ctx.Done():
			return

		case res := <-in:
			// --- data delivery ---
			if err := o.data.Write(res); err != nil {
				monitoring.Logf("writer error (unit=%s): %v", o.unitID, err)
				if o.metrics != nil {
					o.metrics.WriteError(o.unitID, "data")
				}
			}
			if o.metrics != nil {
				o.metrics.ObservePoll(res)
			}

			// --- status update (device-level truth) ---
			if tracker.Observe(res.Healthy) {
				o.writeStatus(tracker.Snapshot(), "")
			}

		case <-secTicker.C():
			// Tick 1 Hz while not OK.
			if tracker.Tick() {
				o.writeStatus(tracker.Snapshot(), "seconds tick")
			}
		}
	}
}

func (o *orchestrator) writeStatus(s status.Snapshot, when string) {
	if o.metrics != nil {
		o.metrics.ObserveStatus(o.unitID, s)
	}
	if o.statusWriter == nil {
		return
	}
	if err := o.statusWriter.WriteStatus(s); err != nil {
		if when != "" {
			monitoring.Logf("status write failed %s (unit=%s): %v", when, o.unitID, err)
		} else {
			monitoring.Logf("status write failed (unit=%s): %v", o.unitID, err)
		}
		if o.metrics != nil {
			o.metrics.WriteError(o.unitID, "status")
		}
	}
}
