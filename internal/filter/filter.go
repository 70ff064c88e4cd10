// internal/filter/filter.go

// Package filter provides the stateful smoothing applied to every reported
// distance sample.
package filter

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Filter maps one sample to one smoothed output. Implementations keep state
// between calls and are not safe for concurrent use.
type Filter interface {
	Apply(sample int) int
}

// Kinds accepted by New.
const (
	KindNone = "none"
	KindMode = "mode"
)

// DefaultWindow is the sample window used when none is configured.
const DefaultWindow = 5

// New builds a filter by kind.
func New(kind string, window int) (Filter, error) {
	switch kind {
	case KindNone:
		return Passthrough{}, nil
	case KindMode, "":
		return NewMode(window)
	default:
		return nil, fmt.Errorf("filter: unknown kind %q", kind)
	}
}

// Passthrough returns every sample unchanged.
type Passthrough struct{}

func (Passthrough) Apply(sample int) int { return sample }

// Mode reports the lower median of the last window samples. A single outlier
// in a window of five never reaches the output.
type Mode struct {
	window  int
	samples []float64
	next    int
	sorted  []float64
}

// NewMode creates a median filter over window samples.
func NewMode(window int) (*Mode, error) {
	if window <= 0 {
		window = DefaultWindow
	}
	if window > 255 {
		return nil, fmt.Errorf("filter: window %d too large", window)
	}
	return &Mode{
		window:  window,
		samples: make([]float64, 0, window),
		sorted:  make([]float64, 0, window),
	}, nil
}

// Apply records sample and returns the lower median of the window.
func (m *Mode) Apply(sample int) int {
	if len(m.samples) < m.window {
		m.samples = append(m.samples, float64(sample))
	} else {
		m.samples[m.next] = float64(sample)
		m.next = (m.next + 1) % m.window
	}

	m.sorted = append(m.sorted[:0], m.samples...)
	sort.Float64s(m.sorted)

	return int(stat.Quantile(0.5, stat.Empirical, m.sorted, nil))
}

// Len reports how many samples are currently held.
func (m *Mode) Len() int { return len(m.samples) }
