// internal/rangefinder/rangefinder.go

// Package rangefinder defines the capability every distance sensor variant
// exposes to the poller.
package rangefinder

// Sensor is a polled distance source.
//
// Read must return immediately. Sensors with slow conversions hide their
// latency behind successive Read calls and report the last known value in the
// meantime.
type Sensor interface {
	// Read polls the sensor and returns the filtered distance in centimeters.
	Read() int

	// Healthy reports whether the most recent bus transaction succeeded.
	Healthy() bool
}

// Bounds is the inclusive range every reported distance is clamped to.
type Bounds struct {
	Min int
	Max int
}

// Clamp limits v to b.
func (b Bounds) Clamp(v int) int {
	if v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}
	return v
}
