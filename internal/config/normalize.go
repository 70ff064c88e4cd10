// internal/config/normalize.go
package config

import "github.com/tamzrod/rangefinder-replicator/internal/status"

// Defaults applied by Normalize when a field is left zero.
const (
	DefaultBackend        = "periph"
	DefaultBus            = "1"
	DefaultAddress        = 0x70
	DefaultMeasureDelayMs = 70
	DefaultMinDistanceCm  = 20
	DefaultMaxDistanceCm  = 600
	DefaultEchoCount      = 1
	DefaultFilterKind     = "mode"
	DefaultFilterWindow   = 5
	DefaultPollIntervalMs = 50
	DefaultProtocol       = "modbus"
	DefaultTimeoutMs      = 1000
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	for ui := range cfg.Rangefinder.Units {
		u := &cfg.Rangefinder.Units[ui]

		// ------------------------------------------------------------
		// SENSOR DEFAULTS
		// ------------------------------------------------------------

		s := &u.Sensor
		if s.Backend == "" {
			s.Backend = DefaultBackend
		}
		if s.Bus == "" {
			s.Bus = DefaultBus
		}
		if s.Address == 0 {
			s.Address = DefaultAddress
		}
		if s.MeasureDelayMs == 0 {
			s.MeasureDelayMs = DefaultMeasureDelayMs
		}
		// bounds are defaulted as a pair; a half-specified pair keeps
		// its explicit side
		if s.MinDistanceCm == 0 && s.MaxDistanceCm == 0 {
			s.MinDistanceCm = DefaultMinDistanceCm
			s.MaxDistanceCm = DefaultMaxDistanceCm
		} else if s.MaxDistanceCm == 0 {
			s.MaxDistanceCm = DefaultMaxDistanceCm
		}
		if s.EchoCount == 0 {
			s.EchoCount = DefaultEchoCount
		}

		// ------------------------------------------------------------
		// FILTER / POLL DEFAULTS
		// ------------------------------------------------------------

		if u.Filter.Kind == "" {
			u.Filter.Kind = DefaultFilterKind
		}
		if u.Filter.Window == 0 {
			u.Filter.Window = DefaultFilterWindow
		}
		if u.Poll.IntervalMs == 0 {
			u.Poll.IntervalMs = DefaultPollIntervalMs
		}

		// ------------------------------------------------------------
		// TARGET DEFAULTS
		// ------------------------------------------------------------

		for ti := range u.Targets {
			t := &u.Targets[ti]
			if t.Protocol == "" {
				t.Protocol = DefaultProtocol
			}
			if t.TimeoutMs == 0 {
				t.TimeoutMs = DefaultTimeoutMs
			}
		}

		// ------------------------------------------------------------
		// DEVICE STATUS BLOCK NORMALIZATION (OPT-IN)
		// ------------------------------------------------------------

		// ASCII already validated; truncate only.
		if len(s.DeviceName) > status.DeviceNameMaxChars {
			s.DeviceName = s.DeviceName[:status.DeviceNameMaxChars]
		}
	}
}
