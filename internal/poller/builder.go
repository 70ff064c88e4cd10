// internal/poller/builder.go
package poller

import (
	"fmt"
	"time"

	"github.com/tamzrod/rangefinder-replicator/internal/bus"
	cfg "github.com/tamzrod/rangefinder-replicator/internal/config"
	"github.com/tamzrod/rangefinder-replicator/internal/filter"
	"github.com/tamzrod/rangefinder-replicator/internal/rangefinder/srf08"
	"github.com/tamzrod/rangefinder-replicator/internal/timeutil"
)

// Build constructs a Poller for one unit: shared bus, filter, driver.
// The bus handle is owned by the pool; the caller closes the pool.
// Expects a validated, normalized unit.
func Build(u cfg.UnitConfig, buses *bus.Pool, clock timeutil.Clock) (*Poller, *srf08.Dev, error) {
	if clock == nil {
		clock = timeutil.RealClock{}
	}

	b, err := buses.Get(u.Sensor.Backend, u.Sensor.Bus)
	if err != nil {
		return nil, nil, fmt.Errorf("unit %s: open bus: %w", u.ID, err)
	}

	f, err := filter.New(u.Filter.Kind, u.Filter.Window)
	if err != nil {
		return nil, nil, fmt.Errorf("unit %s: %w", u.ID, err)
	}

	dev, err := srf08.New(b, f, clock, srf08.Options{
		Address:       u.Sensor.Address,
		MeasureDelay:  time.Duration(u.Sensor.MeasureDelayMs) * time.Millisecond,
		MinDistance:   u.Sensor.MinDistanceCm,
		MaxDistance:   u.Sensor.MaxDistanceCm,
		EchoCount:     u.Sensor.EchoCount,
		CaptureTiming: u.Sensor.CaptureTiming,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("unit %s: %w", u.ID, err)
	}

	p, err := New(
		Config{
			UnitID:   u.ID,
			Interval: time.Duration(u.Poll.IntervalMs) * time.Millisecond,
		},
		dev,
		clock,
	)
	if err != nil {
		return nil, nil, err
	}

	return p, dev, nil
}
