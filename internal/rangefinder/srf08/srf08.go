// internal/rangefinder/srf08/srf08.go
package srf08

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/tamzrod/rangefinder-replicator/internal/rangefinder"
	"github.com/tamzrod/rangefinder-replicator/internal/timeutil"
)

// Bus is the register-level transport the driver needs.
type Bus interface {
	WriteRegister(addr, reg, value uint8) error
	ReadRegisters(addr, reg uint8, buf []byte) error
}

// Filter smooths the clamped distance. It is applied once per Read.
type Filter interface {
	Apply(sample int) int
}

// Clock supplies poll timestamps.
type Clock interface {
	Now() time.Time
}

// Phase is the ranging state.
type Phase uint8

const (
	// Idle: no command outstanding. Initial state and state after Reset.
	Idle Phase = iota
	// AwaitingResult: a ranging command is in flight.
	AwaitingResult
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case AwaitingResult:
		return "awaiting_result"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// Options overrides the device constants. Zero values select the defaults.
type Options struct {
	Address      uint8
	MeasureDelay time.Duration
	MinDistance  int
	MaxDistance  int

	// EchoCount is the number of echoes captured per harvest (1..MaxEchoes).
	// Only the first echo feeds the distance.
	EchoCount int

	// CaptureTiming records the time spent harvesting and re-commanding.
	CaptureTiming bool
}

func (o Options) withDefaults() Options {
	if o.Address == 0 {
		o.Address = DefaultAddress
	}
	if o.MeasureDelay <= 0 {
		o.MeasureDelay = MeasureDelay
	}
	if o.MinDistance == 0 && o.MaxDistance == 0 {
		o.MinDistance = MinDistance
		o.MaxDistance = MaxDistance
	}
	if o.EchoCount == 0 {
		o.EchoCount = 1
	}
	return o
}

// Dev is an SRF08 ranging state machine. It is owned by a single poller and
// does no locking.
type Dev struct {
	bus    Bus
	filter Filter
	clock  Clock

	addr          uint8
	delay         time.Duration
	bounds        rangefinder.Bounds
	captureTiming bool

	phase    Phase
	lastCmd  time.Time
	raw      uint16
	distance int
	healthy  bool

	buf      []byte
	echoes   []uint16
	readTime time.Duration
}

var _ rangefinder.Sensor = (*Dev)(nil)

// New creates a driver. No bus traffic happens until the first Read.
// A nil clock selects the real monotonic clock.
func New(bus Bus, f Filter, clock Clock, opts Options) (*Dev, error) {
	if bus == nil {
		return nil, errors.New("srf08: bus required")
	}
	if f == nil {
		return nil, errors.New("srf08: filter required")
	}
	if clock == nil {
		clock = timeutil.RealClock{}
	}

	o := opts.withDefaults()
	if o.Address > 0x7F {
		return nil, fmt.Errorf("srf08: address 0x%02x is not a 7-bit address", o.Address)
	}
	if o.MinDistance < 0 || o.MinDistance > o.MaxDistance {
		return nil, fmt.Errorf("srf08: bad bounds [%d,%d]", o.MinDistance, o.MaxDistance)
	}
	if o.EchoCount < 1 || o.EchoCount > MaxEchoes {
		return nil, fmt.Errorf("srf08: echo count %d outside 1..%d", o.EchoCount, MaxEchoes)
	}

	bounds := rangefinder.Bounds{Min: o.MinDistance, Max: o.MaxDistance}

	return &Dev{
		bus:           bus,
		filter:        f,
		clock:         clock,
		addr:          o.Address,
		delay:         o.MeasureDelay,
		bounds:        bounds,
		captureTiming: o.CaptureTiming,
		phase:         Idle,
		distance:      bounds.Clamp(0),
		healthy:       true,
		buf:           make([]byte, 2*o.EchoCount),
		echoes:        make([]uint16, o.EchoCount),
	}, nil
}

// Read advances the state machine and returns the filtered distance in cm.
//
// The first Read after New or Reset only issues a ranging command. Later
// Reads harvest the result once MeasureDelay has elapsed since the last
// command and immediately command the next measurement. Clamping and
// filtering run on every call, so the output changes at the poll rate while
// the raw sample changes at the measurement rate.
func (d *Dev) Read() int {
	now := d.clock.Now()

	switch d.phase {
	case Idle:
		d.healthy = d.takeReading(now)
		d.phase = AwaitingResult

	case AwaitingResult:
		if now.Sub(d.lastCmd) >= d.delay {
			harvested := d.getMeasurement()
			commanded := d.takeReading(now)
			d.healthy = harvested && commanded

			if d.captureTiming {
				d.readTime = d.clock.Now().Sub(now)
			}
		}
	}

	sample := d.bounds.Clamp(int(d.raw))
	d.distance = d.bounds.Clamp(d.filter.Apply(sample))
	return d.distance
}

// takeReading commands a new ranging cycle. The command time is recorded
// even on failure: the next harvest attempt is the retry.
func (d *Dev) takeReading(now time.Time) bool {
	err := d.bus.WriteRegister(d.addr, RegCommand, CmdMeasureCm)
	d.lastCmd = now
	return err == nil
}

// getMeasurement reads the echo registers. On failure the previous raw
// distance is kept.
func (d *Dev) getMeasurement() bool {
	if err := d.bus.ReadRegisters(d.addr, RegDistance, d.buf); err != nil {
		return false
	}

	for i := range d.echoes {
		d.echoes[i] = binary.BigEndian.Uint16(d.buf[2*i:])
	}
	d.raw = d.echoes[0]
	return true
}

// Healthy reports whether every bus transaction of the last poll that
// touched the bus succeeded.
func (d *Dev) Healthy() bool { return d.healthy }

// Address returns the device address.
func (d *Dev) Address() uint8 { return d.addr }

// SetAddress retargets the driver at another device address. It does not
// reprogram the device and does not reset the ranging phase.
func (d *Dev) SetAddress(addr uint8) { d.addr = addr }

// Reset returns the state machine to Idle. The next Read issues a command
// without harvesting.
func (d *Dev) Reset() { d.phase = Idle }

// Phase returns the current ranging phase.
func (d *Dev) Phase() Phase { return d.phase }

// Raw returns the last successfully decoded first-echo distance, unclamped.
func (d *Dev) Raw() uint16 { return d.raw }

// Distance returns the last value returned by Read without polling.
func (d *Dev) Distance() int { return d.distance }

// Bounds returns the clamp range.
func (d *Dev) Bounds() rangefinder.Bounds { return d.bounds }

// Scaler returns the native-unit to cm factor.
func (d *Dev) Scaler() float64 { return Scaler }

// Echoes returns a copy of the last harvested echo distances, nearest first.
func (d *Dev) Echoes() []uint16 {
	out := make([]uint16, len(d.echoes))
	copy(out, d.echoes)
	return out
}

// ReadTime returns the duration of the last harvest-and-recommand step.
// It is zero unless Options.CaptureTiming is set.
func (d *Dev) ReadTime() time.Duration { return d.readTime }
