// internal/config/validate_test.go
package config

import (
	"strings"
	"testing"
)

// helper to build a unit quickly
func unit(id string, endpoint string, memoryID uint8, offset uint16) UnitConfig {
	return UnitConfig{
		ID: id,
		Targets: []TargetConfig{
			{
				ID:       1,
				Endpoint: endpoint,
				Memories: []MemoryConfig{
					{
						MemoryID: memoryID,
						Offset:   offset,
					},
				},
			},
		},
	}
}

func cfgOf(units ...UnitConfig) *Config {
	return &Config{Rangefinder: RangefinderConfig{Units: units}}
}

func u16(v uint16) *uint16 { return &v }
func u8(v uint8) *uint8    { return &v }

// ---- tests ----

func TestValidate_NoOverlapDifferentEndpoints(t *testing.T) {
	cfg := cfgOf(
		unit("u1", "ep1", 0, 0),
		unit("u2", "ep2", 0, 0),
	)

	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_NoOverlapDifferentMemory(t *testing.T) {
	cfg := cfgOf(
		unit("u1", "ep1", 0, 0),
		unit("u2", "ep1", 1, 0),
	)

	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_TouchingRangesAllowed(t *testing.T) {
	cfg := cfgOf(
		unit("u1", "ep1", 0, 0), // 0–1
		unit("u2", "ep1", 0, 2), // 2–3
	)

	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_OverlapDetected(t *testing.T) {
	cfg := cfgOf(
		unit("u1", "ep1", 0, 0), // 0–1
		unit("u2", "ep1", 0, 1), // 1–2 → overlap
	)

	err := Validate(cfg)
	if err == nil {
		t.Fatalf("expected overlap error, got nil")
	}
	if !strings.Contains(err.Error(), "memory overlap") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_DataBlockPastRegisterSpace(t *testing.T) {
	cfg := cfgOf(unit("u1", "ep1", 0, 0xFFFF))

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected register space error, got nil")
	}
}

func TestValidate_NoUnits(t *testing.T) {
	if err := Validate(cfgOf()); err == nil {
		t.Fatalf("expected error, got nil")
	}
	if err := Validate(nil); err == nil {
		t.Fatalf("expected error for nil config, got nil")
	}
}

func TestValidate_DuplicateUnitID(t *testing.T) {
	cfg := cfgOf(
		unit("u1", "ep1", 0, 0),
		unit("u1", "ep1", 0, 10),
	)

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected duplicate id error, got nil")
	}
}

func TestValidate_SensorFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(u *UnitConfig)
	}{
		{"missing id", func(u *UnitConfig) { u.ID = "" }},
		{"unknown backend", func(u *UnitConfig) { u.Sensor.Backend = "sysfs" }},
		{"8-bit address", func(u *UnitConfig) { u.Sensor.Address = 0xE0 }},
		{"negative delay", func(u *UnitConfig) { u.Sensor.MeasureDelayMs = -1 }},
		{"inverted bounds", func(u *UnitConfig) { u.Sensor.MinDistanceCm = 600; u.Sensor.MaxDistanceCm = 20 }},
		{"negative bound", func(u *UnitConfig) { u.Sensor.MinDistanceCm = -5 }},
		{"too many echoes", func(u *UnitConfig) { u.Sensor.EchoCount = 17 }},
		{"unknown filter", func(u *UnitConfig) { u.Filter.Kind = "kalman" }},
		{"window too large", func(u *UnitConfig) { u.Filter.Window = 256 }},
		{"negative interval", func(u *UnitConfig) { u.Poll.IntervalMs = -10 }},
		{"unknown protocol", func(u *UnitConfig) { u.Targets[0].Protocol = "mqtt" }},
		{"empty endpoint", func(u *UnitConfig) { u.Targets[0].Endpoint = "" }},
		{"negative timeout", func(u *UnitConfig) { u.Targets[0].TimeoutMs = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u := unit("u1", "ep1", 0, 0)
			tc.mutate(&u)
			if err := Validate(cfgOf(u)); err == nil {
				t.Fatalf("expected error, got nil")
			}
		})
	}
}

func TestValidate_DeviceNameASCII(t *testing.T) {
	u := unit("u1", "ep1", 0, 0)
	u.Sensor.DeviceName = "tank-héight"

	if err := Validate(cfgOf(u)); err == nil {
		t.Fatalf("expected ascii error, got nil")
	}
}

func TestValidate_StatusSlotRequiresTargets(t *testing.T) {
	u := UnitConfig{ID: "u1"}
	u.Sensor.StatusSlot = u16(0)

	if err := Validate(cfgOf(u)); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestValidate_StatusSlotRequiresStatusUnitID(t *testing.T) {
	u := unit("u1", "ep1", 0, 0)
	u.Sensor.StatusSlot = u16(0)

	if err := Validate(cfgOf(u)); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestValidate_StatusSlotCollision(t *testing.T) {
	a := unit("u1", "ep1", 0, 0)
	a.Sensor.StatusSlot = u16(3)
	a.Targets[0].StatusUnitID = u8(9)

	b := unit("u2", "ep1", 0, 2)
	b.Sensor.StatusSlot = u16(3)
	b.Targets[0].StatusUnitID = u8(9)

	err := Validate(cfgOf(a, b))
	if err == nil {
		t.Fatalf("expected collision error, got nil")
	}
	if !strings.Contains(err.Error(), "status_slot collision") {
		t.Fatalf("unexpected error: %v", err)
	}

	b.Sensor.StatusSlot = u16(4)
	if err := Validate(cfgOf(a, b)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
