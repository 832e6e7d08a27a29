package sensor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/itohio/dpslam/distmap"
	"github.com/itohio/dpslam/pose"
)

func gridLookup(occupied map[pose.Cell]bool) Lookup {
	return func(cx, cy int32) distmap.Bit {
		if occupied[pose.Cell{X: cx, Y: cy}] {
			return distmap.Occupied
		}
		return distmap.Free
	}
}

func TestNew_PanicsOnBadSamplesSizeRatio(t *testing.T) {
	assert.Panics(t, func() {
		New(Config{Variance: 1, MaxRay: 10, Samples: 7, Size: 360})
	})
}

func TestProbRay_NoOccupancyReturnsOne(t *testing.T) {
	m := New(Config{Variance: 0.5, MaxRay: 10, Samples: 4, Size: 360})
	lookup := gridLookup(nil)

	p := pose.Pose{X: 0, Y: 0, Theta: 0}
	got := m.ProbRay(p, 0, 5.0, lookup)
	assert.Equal(t, float32(1.0), got)
}

func TestProbRay_ZeroMeasuredRangeReturnsOneWithoutCasting(t *testing.T) {
	m := New(Config{Variance: 0.5, MaxRay: 10, Samples: 4, Size: 360})
	// An occupied cell right in front would normally produce a strong
	// likelihood signal, but a 0 measured range means "no return" and
	// must short-circuit before any lookup happens.
	lookup := gridLookup(map[pose.Cell]bool{{X: 2, Y: 0}: true})

	p := pose.Pose{X: 0, Y: 0, Theta: 0}
	got := m.ProbRay(p, 0, 0, lookup)
	assert.Equal(t, float32(1.0), got)
}

func TestProbRay_PeaksWhenMeasuredMatchesExpected(t *testing.T) {
	m := New(Config{Variance: 0.25, MaxRay: 10, Samples: 4, Size: 360})
	lookup := gridLookup(map[pose.Cell]bool{{X: 3, Y: 0}: true})

	p := pose.Pose{X: 0, Y: 0, Theta: 0}
	exact := m.ProbRay(p, 0, 3.5, lookup) // cell (3,0) center is at x=3.5
	off := m.ProbRay(p, 0, 1.0, lookup)
	assert.Greater(t, exact, off)
}

func TestProb_AllZeroScanAlwaysOne(t *testing.T) {
	m := New(Config{Variance: 0.5, MaxRay: 10, Samples: 4, Size: 8})
	lookup := gridLookup(map[pose.Cell]bool{{X: 3, Y: 0}: true})
	scan := NewMeasurement(make([]float32, 8))

	p := pose.Pose{X: 0, Y: 0, Theta: 0}
	got := m.Prob(p, scan, lookup)
	assert.Equal(t, float32(1.0), got)
}

func TestUpdate_AllZeroScanWritesNothing(t *testing.T) {
	m := New(Config{Variance: 0.5, MaxRay: 10, Samples: 4, Size: 8})
	scan := NewMeasurement(make([]float32, 8))

	var writes int
	writer := func(v distmap.Bit, cx, cy int32) { writes++ }

	p := pose.Pose{X: 0, Y: 0, Theta: 0}
	m.Update(p, scan, writer)
	assert.Zero(t, writes)
}

func TestUpdate_WritesFreeAlongRayAndOccupiedAtTerminal(t *testing.T) {
	m := New(Config{Variance: 0.5, MaxRay: 10, Samples: 1, Size: 1})
	ranges := []float32{3.5}
	scan := NewMeasurement(ranges)

	var occupied []pose.Cell
	var free []pose.Cell
	writer := func(v distmap.Bit, cx, cy int32) {
		c := pose.Cell{X: cx, Y: cy}
		if v == distmap.Occupied {
			occupied = append(occupied, c)
		} else {
			free = append(free, c)
		}
	}

	p := pose.Pose{X: 0.5, Y: 0.5, Theta: 0}
	m.Update(p, scan, writer)

	assert.Len(t, occupied, 1)
	assert.Contains(t, free, pose.Cell{X: 0, Y: 0})
	assert.NotContains(t, occupied, pose.Cell{X: 0, Y: 0})
}

func TestIncrement_RotatesStartIndexModRangeSize(t *testing.T) {
	m := New(Config{Variance: 0.5, MaxRay: 10, Samples: 90, Size: 360})
	assert.Equal(t, 0, m.StartIndex())
	for i := 1; i <= 4; i++ {
		m.Increment()
		assert.Equal(t, i%4, m.StartIndex())
	}
}
