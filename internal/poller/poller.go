// internal/poller/poller.go
package poller

import (
	"errors"
	"time"

	"github.com/tamzrod/rangefinder-replicator/internal/monitoring"
	"github.com/tamzrod/rangefinder-replicator/internal/timeutil"
)

// Config is the minimal runtime config the poller needs.
type Config struct {
	UnitID   string
	Interval time.Duration
}

// Poller is a dumb, clock-driven reader.
type Poller struct {
	cfg    Config
	client Client
	clock  timeutil.Clock

	// last reported health, for transition logging only
	healthy bool
	started bool
}

// New creates a poller with immutable config.
// A nil clock selects the wall clock.
func New(cfg Config, client Client, clock timeutil.Clock) (*Poller, error) {
	if cfg.UnitID == "" {
		return nil, errors.New("poller: unit id required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if client == nil {
		return nil, errors.New("poller: client required")
	}
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Poller{cfg: cfg, client: client, clock: clock}, nil
}

// PollOnce performs exactly one poll cycle.
func (p *Poller) PollOnce() PollResult {
	res := PollResult{
		UnitID: p.cfg.UnitID,
		At:     p.clock.Now(),
	}

	res.Distance = p.client.Read()
	res.Raw = p.client.Raw()
	res.Healthy = p.client.Healthy()

	if !p.started || res.Healthy != p.healthy {
		if res.Healthy {
			monitoring.Logf("poller: unit=%s healthy", p.cfg.UnitID)
		} else {
			monitoring.Logf("poller: unit=%s bus transaction failed", p.cfg.UnitID)
		}
	}
	p.started = true
	p.healthy = res.Healthy

	return res
}
