// internal/config/validate.go
package config

import (
	"fmt"

	"github.com/tamzrod/rangefinder-replicator/internal/status"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if len(cfg.Rangefinder.Units) == 0 {
		return fmt.Errorf("no units defined")
	}

	type span struct {
		start uint16
		end   uint16
		unit  string
	}

	// ------------------------------------------------------------
	// UNIT / SENSOR VALIDATION
	// ------------------------------------------------------------

	seen := make(map[string]bool)

	for _, u := range cfg.Rangefinder.Units {
		if u.ID == "" {
			return fmt.Errorf("unit id is required")
		}
		if seen[u.ID] {
			return fmt.Errorf("duplicate unit id %q", u.ID)
		}
		seen[u.ID] = true

		s := u.Sensor

		switch s.Backend {
		case "", "periph", "embd":
		default:
			return fmt.Errorf("unit %q: unknown backend %q", u.ID, s.Backend)
		}

		if s.Address > 0x7F {
			return fmt.Errorf("unit %q: address 0x%02x is not a 7-bit i2c address", u.ID, s.Address)
		}

		if s.MeasureDelayMs < 0 {
			return fmt.Errorf("unit %q: measure_delay_ms must be >= 0", u.ID)
		}

		if s.MinDistanceCm < 0 || s.MaxDistanceCm < 0 {
			return fmt.Errorf("unit %q: distance bounds must be >= 0", u.ID)
		}
		if s.MaxDistanceCm != 0 && s.MinDistanceCm > s.MaxDistanceCm {
			return fmt.Errorf(
				"unit %q: min_distance_cm %d exceeds max_distance_cm %d",
				u.ID,
				s.MinDistanceCm,
				s.MaxDistanceCm,
			)
		}

		if s.EchoCount < 0 || s.EchoCount > 16 {
			return fmt.Errorf("unit %q: echo_count must be in 0..16", u.ID)
		}

		switch u.Filter.Kind {
		case "", "mode", "none":
		default:
			return fmt.Errorf("unit %q: unknown filter kind %q", u.ID, u.Filter.Kind)
		}
		if u.Filter.Window < 0 || u.Filter.Window > 255 {
			return fmt.Errorf("unit %q: filter window must be in 0..255", u.ID)
		}

		if u.Poll.IntervalMs < 0 {
			return fmt.Errorf("unit %q: poll interval_ms must be >= 0", u.ID)
		}

		for _, t := range u.Targets {
			if t.Endpoint == "" {
				return fmt.Errorf("unit %q: target %d has no endpoint", u.ID, t.ID)
			}
			switch t.Protocol {
			case "", "modbus", "ingest":
			default:
				return fmt.Errorf("unit %q: target %q: unknown protocol %q", u.ID, t.Endpoint, t.Protocol)
			}
			if t.TimeoutMs < 0 {
				return fmt.Errorf("unit %q: target %q: timeout_ms must be >= 0", u.ID, t.Endpoint)
			}
		}
	}

	// ------------------------------------------------------------
	// DEVICE STATUS BLOCK VALIDATION (PER-TARGET, OPT-IN)
	// ------------------------------------------------------------

	// key = endpoint | status_unit_id | status_slot
	statusOwner := make(map[string]string)

	for _, u := range cfg.Rangefinder.Units {
		// device_name sanity (ASCII only)
		for i := 0; i < len(u.Sensor.DeviceName); i++ {
			if u.Sensor.DeviceName[i] > 0x7F {
				return fmt.Errorf(
					"unit %q: device_name must contain ASCII characters only",
					u.ID,
				)
			}
		}

		// status is opt-in
		if u.Sensor.StatusSlot == nil {
			continue
		}

		if len(u.Targets) == 0 {
			return fmt.Errorf(
				"unit %q: status_slot is set but no targets are defined",
				u.ID,
			)
		}

		slot := *u.Sensor.StatusSlot
		if uint32(slot)*status.SlotsPerDevice+status.SlotsPerDevice-1 > 0xFFFF {
			return fmt.Errorf("unit %q: status_slot %d exceeds register space", u.ID, slot)
		}

		for _, t := range u.Targets {
			if t.StatusUnitID == nil {
				return fmt.Errorf(
					"unit %q: status_slot is set but target %q has no status_unit_id",
					u.ID,
					t.Endpoint,
				)
			}

			key := fmt.Sprintf("%s|%d|%d", t.Endpoint, *t.StatusUnitID, slot)

			if prev, exists := statusOwner[key]; exists {
				return fmt.Errorf(
					"status_slot collision: endpoint=%s status_unit_id=%d slot=%d used by units %q and %q",
					t.Endpoint,
					*t.StatusUnitID,
					slot,
					prev,
					u.ID,
				)
			}

			statusOwner[key] = u.ID
		}
	}

	// ------------------------------------------------------------
	// DESTINATION DATA BLOCK GEOMETRY VALIDATION
	// ------------------------------------------------------------

	// key = endpoint | memory_id
	spans := make(map[string][]span)

	for _, u := range cfg.Rangefinder.Units {
		for _, t := range u.Targets {
			for _, m := range t.Memories {
				start := m.Offset
				if uint32(start)+status.DataBlockRegisters-1 > 0xFFFF {
					return fmt.Errorf(
						"unit %q: memory_id=%d offset=%d: data block exceeds register space",
						u.ID,
						m.MemoryID,
						m.Offset,
					)
				}
				end := start + status.DataBlockRegisters - 1

				key := fmt.Sprintf("%s|%d", t.Endpoint, m.MemoryID)

				for _, s := range spans[key] {
					// overlap check (inclusive)
					if !(end < s.start || start > s.end) {
						return fmt.Errorf(
							"memory overlap: endpoint=%s memory_id=%d range=%d-%d overlaps with unit=%s range=%d-%d",
							t.Endpoint,
							m.MemoryID,
							start,
							end,
							s.unit,
							s.start,
							s.end,
						)
					}
				}

				spans[key] = append(spans[key], span{
					start: start,
					end:   end,
					unit:  u.ID,
				})
			}
		}
	}

	return nil
}
