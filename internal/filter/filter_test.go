// internal/filter/filter_test.go
package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMode_RejectsSingleOutlier(t *testing.T) {
	m, err := NewMode(5)
	require.NoError(t, err)

	var out int
	for _, s := range []int{100, 101, 600, 99, 100} {
		out = m.Apply(s)
	}
	assert.Equal(t, 100, out)
}

func TestMode_LowerMedianWhileFilling(t *testing.T) {
	m, err := NewMode(5)
	require.NoError(t, err)

	assert.Equal(t, 100, m.Apply(100))
	// {100, 200}: lower median
	assert.Equal(t, 100, m.Apply(200))
	// {100, 200, 300}
	assert.Equal(t, 200, m.Apply(300))
	assert.Equal(t, 3, m.Len())
}

func TestMode_SlidingWindowDropsOldest(t *testing.T) {
	m, err := NewMode(3)
	require.NoError(t, err)

	m.Apply(20)
	m.Apply(20)
	m.Apply(20)
	assert.Equal(t, 20, m.Apply(500))
	// window is now {20, 500, 500}
	assert.Equal(t, 500, m.Apply(500))
	assert.Equal(t, 3, m.Len())
}

func TestMode_SameInputStillAdvancesState(t *testing.T) {
	m, err := NewMode(3)
	require.NoError(t, err)

	m.Apply(20)
	m.Apply(20)
	first := m.Apply(100)
	second := m.Apply(100)

	assert.Equal(t, 20, first)
	assert.Equal(t, 100, second)
}

func TestNewMode_DefaultAndLimits(t *testing.T) {
	m, err := NewMode(0)
	require.NoError(t, err)
	assert.Equal(t, DefaultWindow, m.window)

	_, err = NewMode(1000)
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	f, err := New(KindNone, 0)
	require.NoError(t, err)
	assert.Equal(t, 42, f.Apply(42))

	f, err = New(KindMode, 3)
	require.NoError(t, err)
	assert.IsType(t, &Mode{}, f)

	_, err = New("kalman", 3)
	assert.Error(t, err)
}
