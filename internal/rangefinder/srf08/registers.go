// internal/rangefinder/srf08/registers.go

// Package srf08 drives the Devantech SRF08 ultrasonic ranger over I²C.
// Datasheet: http://www.robot-electronics.co.uk/htm/srf08tech.html
package srf08

import "time"

// DefaultAddress is the factory 7-bit address (0xE0 on the 8-bit wire).
const DefaultAddress uint8 = 0xE0 >> 1

const (
	RegCommand  uint8 = 0x00 // command register (write) / software revision (read)
	RegLight    uint8 = 0x01 // light sensor reading
	RegDistance uint8 = 0x02 // first echo, two bytes, high byte first
)

const (
	CmdMeasureInches uint8 = 0x50
	CmdMeasureCm     uint8 = 0x51
	CmdMeasureUs     uint8 = 0x52
)

const (
	// MeasureDelay is the worst-case ranging time from command to valid result.
	MeasureDelay = 70 * time.Millisecond

	// MinDistance and MaxDistance are the reported bounds in cm. The sensor
	// itself resolves from 3cm, but short echoes are unreliable on a vehicle.
	MinDistance = 20
	MaxDistance = 600

	// MaxEchoes is the number of echo register pairs the device exposes.
	MaxEchoes = 16

	// Scaler converts the native unit to cm. The cm command needs none.
	Scaler = 1.0
)
