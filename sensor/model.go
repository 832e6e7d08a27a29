package sensor

import (
	"github.com/chewxy/math32"

	"github.com/itohio/dpslam/distmap"
	"github.com/itohio/dpslam/internal/assert"
	"github.com/itohio/dpslam/internal/mathx"
	"github.com/itohio/dpslam/pose"
	"github.com/itohio/dpslam/raytrace"
)

// epsilon floors per-beam likelihood so one unlucky beam can't zero out
// the whole scan's probability via multiplication.
const epsilon = 1e-9

// Lookup reports whether a particle's map believes (cx,cy) is occupied.
type Lookup func(cx, cy int32) distmap.Bit

// Writer records a cell's state as observed along a beam.
type Writer func(v distmap.Bit, cx, cy int32)

// Config carries the sensor model's fixed parameters.
type Config struct {
	Variance float32 // range-noise σ²
	MaxRay   float32 // sensor max range
	Samples  int     // beams actually evaluated per scan
	Size     int     // scan length
}

// Model is the beam-based sensor model: a fixed Config plus the rotating
// start_index that interleaves which beams are sampled across steps.
type Model struct {
	cfg        Config
	rangeSize  int
	deltaRot   float32
	startIndex int
}

// New builds a Model from cfg. cfg.Size must be an exact multiple of
// cfg.Samples and cfg.Samples must be at least 1; these are programmer
// contracts, not recoverable input errors (spec.md §7), so violations
// panic via internal/assert rather than returning an error.
func New(cfg Config) *Model {
	assert.That(cfg.Samples >= 1, "sensor: samples must be >= 1, got %d", cfg.Samples)
	assert.That(cfg.Size%cfg.Samples == 0, "sensor: size %d not a multiple of samples %d", cfg.Size, cfg.Samples)
	assert.That(cfg.Variance >= 0, "sensor: variance must be non-negative, got %f", cfg.Variance)

	return &Model{
		cfg:       cfg,
		rangeSize: cfg.Size / cfg.Samples,
		deltaRot:  2 * math32.Pi / float32(cfg.Size),
	}
}

// StartIndex returns the current rotating sample offset.
func (m *Model) StartIndex() int {
	return m.startIndex
}

// Increment advances start_index for the next step's interleaved sweep.
func (m *Model) Increment() {
	m.startIndex = (m.startIndex + 1) % m.rangeSize
}

// ProbRay returns the likelihood of a single beam's measured range given
// p and lookup. It casts from p toward max_ray along beamAngle; the
// first occupied cell along the way yields an expected hit at the cell
// center, scored under a Gaussian centered there. If the ray sees no
// occupancy before max_ray, there is no evidence either way and ProbRay
// returns 1.0. A measuredRange of 0 ("no return on this beam") likewise
// carries no evidence and returns 1.0 without casting a ray.
func (m *Model) ProbRay(p pose.Pose, beamAngle, measuredRange float32, lookup Lookup) float32 {
	if measuredRange == 0 {
		return 1.0
	}

	from := raytrace.Point{X: p.X, Y: p.Y}
	to := raytrace.Point{
		X: p.X + m.cfg.MaxRay*math32.Cos(beamAngle),
		Y: p.Y + m.cfg.MaxRay*math32.Sin(beamAngle),
	}

	var expected float32
	found := false
	raytrace.Trace(from, to, func(cx, cy int32, remaining int) bool {
		if lookup(cx, cy) != distmap.Occupied {
			return false
		}
		center := pose.Pose{X: float32(cx) + 0.5, Y: float32(cy) + 0.5}
		expected = pose.Distance(p, center)
		found = true
		return true
	})

	if !found {
		return 1.0
	}
	return mathx.ProbNormal(measuredRange, expected, m.cfg.Variance)
}

// beamAngle returns the world-frame direction of sampled beam i relative
// to p's heading. The sweep assumes a 360° scan starting at angle 0 in
// the sensor frame (spec.md §9).
func (m *Model) beamAngle(p pose.Pose, i int) float32 {
	return p.Theta + m.deltaRot*float32(i)
}

// sampledIndices yields the beam indices evaluated this step:
// start_index, start_index+range_size, ... spanning the full scan.
func (m *Model) sampledIndices() []int {
	idx := make([]int, 0, m.cfg.Samples)
	for i := m.startIndex; i < m.cfg.Size; i += m.rangeSize {
		idx = append(idx, i)
	}
	return idx
}

// Prob returns the scan's likelihood under p and lookup: the product of
// max(epsilon, ProbRay(...)) across the sampled beam indices.
func (m *Model) Prob(p pose.Pose, scan Measurement, lookup Lookup) float32 {
	assert.That(scan.Len() == m.cfg.Size, "sensor: scan length %d != configured size %d", scan.Len(), m.cfg.Size)

	prob := float32(1.0)
	for _, i := range m.sampledIndices() {
		angle := m.beamAngle(p, i)
		pr := m.ProbRay(p, angle, scan.Range(i), lookup)
		if pr < epsilon {
			pr = epsilon
		}
		prob *= pr
	}
	return prob
}

// Update ray-traces each sampled beam out to its reported hit endpoint,
// calling writer(Free, cx, cy) for every cell along the way except the
// terminal one and writer(Occupied, cx, cy) for the terminal cell. Beams
// with a zero measured range ("no return") are skipped entirely: there is
// no hit endpoint to trace to, so scenario 5 (still control, all-zero
// scan) leaves the map untouched by construction.
func (m *Model) Update(p pose.Pose, scan Measurement, writer Writer) {
	assert.That(scan.Len() == m.cfg.Size, "sensor: scan length %d != configured size %d", scan.Len(), m.cfg.Size)

	for _, i := range m.sampledIndices() {
		r := scan.Range(i)
		if r == 0 {
			continue
		}
		angle := m.beamAngle(p, i)
		from := raytrace.Point{X: p.X, Y: p.Y}
		to := raytrace.Point{
			X: p.X + r*math32.Cos(angle),
			Y: p.Y + r*math32.Sin(angle),
		}
		raytrace.Trace(from, to, func(cx, cy int32, remaining int) bool {
			if remaining == 0 {
				writer(distmap.Occupied, cx, cy)
			} else {
				writer(distmap.Free, cx, cy)
			}
			return false
		})
	}
}
