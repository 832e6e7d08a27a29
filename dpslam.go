// Package dpslam implements the distributed-particle SLAM estimator: a
// particle filter over robot pose, backed by a shared ancestry tree and a
// distributed occupancy map, driven by an odometry motion model and a
// beam-based sensor model. spec.md §4.H.
//
// Estimator is not safe for concurrent Update calls: all mutation to the
// ancestry tree, the distributed map, and the filter's weights happens
// inside one logical step and must be serialized across particles to
// preserve the tree's structural invariants (spec.md §5).
package dpslam

import (
	"github.com/itohio/dpslam/ancestry"
	"github.com/itohio/dpslam/config"
	"github.com/itohio/dpslam/distmap"
	"github.com/itohio/dpslam/internal/rng"
	"github.com/itohio/dpslam/logger"
	"github.com/itohio/dpslam/motion"
	"github.com/itohio/dpslam/particle"
	"github.com/itohio/dpslam/pose"
	"github.com/itohio/dpslam/sensor"
)

// Option configures an Estimator at construction time.
type Option func(*Estimator)

// WithResampleFrac overrides the default 0.5 ESS-triggered resample
// fraction.
func WithResampleFrac(frac float64) Option {
	return func(e *Estimator) { e.resampleFrac = frac }
}

// WithSeed overrides the default random source seed.
func WithSeed(seed int64) Option {
	return func(e *Estimator) { e.rng = rng.New(seed) }
}

// Estimator is the DP-SLAM driver: an ancestry tree, a distributed map, a
// generic particle filter over NodeID particles, and the motion/sensor
// models that predict and weight them.
type Estimator struct {
	tree   *ancestry.Tree
	dmap   *distmap.Map
	motion *motion.Model
	sensor *sensor.Model
	filter *particle.Filter[ancestry.NodeID, pose.Control, sensor.Measurement]

	resampleFrac float64
	rng          rng.Source
}

// New builds an Estimator with size particles, all attached to a fresh
// root at pose (0,0,0).
func New(size uint32, m *motion.Model, s *sensor.Model, eliminationFactor float32, opts ...Option) *Estimator {
	e := &Estimator{
		tree:         ancestry.NewTree(),
		dmap:         distmap.New(),
		motion:       m,
		sensor:       s,
		resampleFrac: 0.5,
		rng:          rng.New(1),
	}

	particles := make([]ancestry.NodeID, size)
	root := e.tree.Root()
	for i := range particles {
		particles[i] = e.tree.Add(root, pose.Pose{})
	}

	e.filter = particle.New(particles, eliminationFactor, e.predictOne, e.weightOne)

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// NewFromConfig builds an Estimator from a loaded config.Config, wiring
// its motion/sensor parameters into fresh motion.Model/sensor.Model
// instances.
func NewFromConfig(cfg *config.Config, opts ...Option) *Estimator {
	m := motion.New(motion.Config{
		A1: cfg.Motion.A1,
		A2: cfg.Motion.A2,
		A3: cfg.Motion.A3,
		A4: cfg.Motion.A4,
	})
	s := sensor.New(sensor.Config{
		Variance: cfg.Sensor.Variance,
		MaxRay:   cfg.Sensor.MaxRay,
		Samples:  cfg.Sensor.Samples,
		Size:     cfg.Sensor.Size,
	})

	all := append([]Option{WithResampleFrac(cfg.ResampleFrac)}, opts...)
	return New(uint32(cfg.Size), m, s, cfg.EliminationFactor, all...)
}

func (e *Estimator) predictOne(id ancestry.NodeID, control pose.Control) ancestry.NodeID {
	prior := e.tree.Pose(id)
	next := e.motion.Sample(e.rng, control, prior)
	return e.tree.Add(id, next)
}

func (e *Estimator) weightOne(id ancestry.NodeID, scan sensor.Measurement) float32 {
	p := e.tree.Pose(id)
	lookup := func(cx, cy int32) distmap.Bit {
		return e.dmap.Lookup(pose.Cell{X: cx, Y: cy}, id, e.tree.ParentOf)
	}
	return e.sensor.Prob(p, scan, lookup)
}

// Update advances the estimator by one step: predict every particle
// through the motion model, weight against scan, conditionally resample
// and trim the ancestry tree, then write the scan's implied free/occupied
// cells under each surviving particle's id.
func (e *Estimator) Update(control pose.Control, scan sensor.Measurement) {
	e.filter.Predict(control)
	e.filter.Weight(scan)

	ess := e.filter.EffectiveSampleSize()
	size := float64(e.filter.Size())

	if float64(ess) < e.resampleFrac*size {
		logger.Log.Debug().Float32("ess", ess).Msg("dpslam: resampling")
		previous := append([]ancestry.NodeID(nil), e.filter.Particles()...)
		e.filter.Resample(e.rng)
		e.trimGeneration(previous)
	} else {
		current := append([]ancestry.NodeID(nil), e.filter.Particles()...)
		e.trimGeneration(current)
	}

	e.writeScan(scan)
	e.sensor.Increment()
}

// trimGeneration marks every distinct id in previous as a surviving leaf
// if it still appears among the filter's current particles (or, when no
// resampling occurred, previous IS the current set, so every id survives)
// and false otherwise, then trims each distinct id exactly once and
// rewrites the filter's particle slice through the ids Trim returns —
// folding may have relocated a surviving particle's identity (spec.md
// §4.G's chain-collapse case).
func (e *Estimator) trimGeneration(previous []ancestry.NodeID) {
	current := e.filter.Particles()

	survivors := make(map[ancestry.NodeID]bool, len(current))
	for _, id := range current {
		survivors[id] = true
	}

	distinct := make(map[ancestry.NodeID]bool, len(previous))
	for _, id := range previous {
		distinct[id] = true
	}

	for id := range distinct {
		e.tree.SetLeaf(id, survivors[id])
	}

	trimmed := make(map[ancestry.NodeID]ancestry.NodeID, len(distinct))
	for id := range distinct {
		trimmed[id] = e.tree.Trim(id, e.dmap)
	}

	for i, id := range current {
		current[i] = trimmed[id]
	}
}

// writeScan writes every surviving particle's sensor observation into the
// distributed map, recording each cell a particle actually wins
// first-writer-wins into that particle's modified-cells list.
func (e *Estimator) writeScan(scan sensor.Measurement) {
	for _, id := range e.filter.Particles() {
		p := e.tree.Pose(id)
		writer := func(v distmap.Bit, cx, cy int32) {
			c := pose.Cell{X: cx, Y: cy}
			if e.dmap.Update(v, c, id, e.tree.ParentOf) {
				e.tree.AddCell(id, c)
			}
		}
		e.sensor.Update(p, scan, writer)
	}
}

// Sample draws one particle via the filter's weighted distribution and
// materializes the requested rectangular region of its map view.
func (e *Estimator) Sample(xMin, xMax, yMin, yMax int32) (pose.Pose, [][]bool) {
	id := e.filter.Sample(e.rng)
	p := e.tree.Pose(id)

	width := int(xMax - xMin)
	height := int(yMax - yMin)
	grid := make([][]bool, width)
	for i := range grid {
		grid[i] = make([]bool, height)
		cx := xMin + int32(i)
		for j := range grid[i] {
			cy := yMin + int32(j)
			grid[i][j] = e.dmap.Lookup(pose.Cell{X: cx, Y: cy}, id, e.tree.ParentOf) == distmap.Occupied
		}
	}

	return p, grid
}
