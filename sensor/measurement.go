// Package sensor implements the beam-based sensor model: per-beam
// likelihood against a particle's map via ray casting, and the
// free/occupied cell writes a scan implies. spec.md §4.D.
package sensor

// Measurement is one full-rotation laser scan: size ordered beam ranges
// indexed 0..size-1. A zero range means "no return on that beam".
type Measurement struct {
	ranges []float32
}

// NewMeasurement wraps a slice of beam ranges as a Measurement. The
// slice is not copied; callers should not mutate it afterward.
func NewMeasurement(ranges []float32) Measurement {
	return Measurement{ranges: ranges}
}

// Len returns the scan length (size).
func (m Measurement) Len() int {
	return len(m.ranges)
}

// Range returns the i-th beam's measured range. 0 means no return.
func (m Measurement) Range(i int) float32 {
	return m.ranges[i]
}
