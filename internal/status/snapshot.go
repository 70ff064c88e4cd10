// internal/status/snapshot.go
package status

// Snapshot represents exactly what the writer is allowed to deliver.
// It contains no logic and no memory of the past beyond current state.
type Snapshot struct {
	Health         uint16
	LastErrorCode  uint16
	SecondsInError uint16
}

// Tracker owns the device-level status of one unit.
// It is driven by poll outcomes and a 1 Hz tick, and reports whether
// the snapshot changed so callers only write on change.
// Not safe for concurrent use; the orchestrator goroutine owns it.
type Tracker struct {
	snap Snapshot
}

// NewTracker starts in HealthUnknown with no error history.
func NewTracker() *Tracker {
	return &Tracker{snap: Snapshot{Health: HealthUnknown}}
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot() Snapshot {
	return t.snap
}

// Observe records one poll outcome.
func (t *Tracker) Observe(healthy bool) bool {
	prev := t.snap

	if healthy {
		// Recovery / OK
		t.snap.Health = HealthOK
		t.snap.LastErrorCode = ErrorCodeNone
		t.snap.SecondsInError = 0
	} else {
		t.snap.Health = HealthError
		t.snap.LastErrorCode = ErrorCodeTransport
		// seconds_in_error increments on Tick only
	}

	return t.snap != prev
}

// Tick advances seconds_in_error while not OK, saturating at SecondsInErrorMax.
func (t *Tracker) Tick() bool {
	if t.snap.Health == HealthOK {
		return false
	}
	if t.snap.SecondsInError >= SecondsInErrorMax {
		return false
	}
	t.snap.SecondsInError++
	return true
}
