// internal/poller/types.go
package poller

import (
	"time"

	"github.com/tamzrod/rangefinder-replicator/internal/rangefinder"
)

// Client is the ranging device the poller drives.
// Read performs at most one bus transaction pair and never blocks on the
// measurement delay.
type Client interface {
	rangefinder.Sensor

	// Raw returns the last decoded first-echo distance.
	Raw() uint16
}

// PollResult is a snapshot produced by one poll cycle.
type PollResult struct {
	UnitID string
	At     time.Time

	// Distance is filtered and clamped; always within the unit's bounds.
	Distance int

	// Raw is the last successfully decoded echo, unfiltered.
	Raw uint16

	// Healthy reflects the bus transactions of this poll.
	Healthy bool
}
