// Package particle implements a generic particle filter: predict, weight,
// effective sample size, and low-variance (systematic) resampling over an
// arbitrary particle payload type. spec.md §4.E.
package particle

import (
	"github.com/itohio/dpslam/internal/assert"
	"github.com/itohio/dpslam/internal/rng"
)

// PredictFunc advances one particle through the motion model given a
// control input, returning the new particle.
type PredictFunc[P any, C any] func(p P, control C) P

// WeightFunc scores one particle's likelihood against a measurement.
type WeightFunc[P any, M any] func(p P, m M) float32

// Filter is a generic particle filter parameterized over the particle
// payload type P, the control type C, and the measurement type M — e.g.
// the DP-SLAM driver instantiates Filter[NodeID, pose.Control,
// sensor.Measurement], while a unit test can instantiate Filter[pose.Pose,
// ...] directly, mirroring the teacher's graph.GenericTree[N any, E any]
// convention of parameterizing payload type while keeping the filter's
// own bookkeeping (weights, threshold) concrete.
type Filter[P any, C any, M any] struct {
	particles []P
	weights   []float32

	n         float32 // 1 / size
	threshold float32 // elimination_factor * n

	predict PredictFunc[P, C]
	weight  WeightFunc[P, M]
}

// New builds a Filter of the given size, all weights initialized to
// 1/size. eliminationFactor scales the per-particle weight floor below
// which weighting zeroes a particle out instead of multiplying it.
func New[P any, C any, M any](particles []P, eliminationFactor float32, predict PredictFunc[P, C], weight WeightFunc[P, M]) *Filter[P, C, M] {
	size := len(particles)
	assert.That(size > 0, "particle: filter size must be > 0")

	n := 1.0 / float32(size)
	weights := make([]float32, size)
	for i := range weights {
		weights[i] = n
	}

	return &Filter[P, C, M]{
		particles: particles,
		weights:   weights,
		n:         n,
		threshold: eliminationFactor * n,
		predict:   predict,
		weight:    weight,
	}
}

// Particles returns the filter's current particle vector. The returned
// slice is the filter's own backing array; callers must not retain it
// across a Predict/Resample call.
func (f *Filter[P, C, M]) Particles() []P {
	return f.particles
}

// Weights returns the filter's current weight vector.
func (f *Filter[P, C, M]) Weights() []float32 {
	return f.weights
}

// Size returns the number of particles.
func (f *Filter[P, C, M]) Size() int {
	return len(f.particles)
}

// Predict replaces every particle with predict(particle, control).
// Weights are left unchanged.
func (f *Filter[P, C, M]) Predict(control C) {
	next := make([]P, len(f.particles))
	for i, p := range f.particles {
		next[i] = f.predict(p, control)
	}
	f.particles = next
}

// Weight scores every particle above threshold against m, multiplying
// its weight by weight(particle, m); particles at or below threshold are
// zeroed instead. The result is normalized by the sum; if the sum falls
// below 1e-10 (catastrophic underflow), all weights reset to n instead of
// propagating NaN.
func (f *Filter[P, C, M]) Weight(m M) {
	var sum float32
	for i, p := range f.particles {
		if f.weights[i] > f.threshold {
			f.weights[i] *= f.weight(p, m)
		} else {
			f.weights[i] = 0
		}
		sum += f.weights[i]
	}

	if sum < 1e-10 {
		for i := range f.weights {
			f.weights[i] = f.n
		}
		return
	}

	for i := range f.weights {
		f.weights[i] /= sum
	}
}

// EffectiveSampleSize returns 1 / Σ wᵢ², a proxy for how many particles
// carry non-negligible weight.
func (f *Filter[P, C, M]) EffectiveSampleSize() float32 {
	var sumSq float32
	for _, w := range f.weights {
		sumSq += w * w
	}
	return 1 / sumSq
}

// Resample performs low-variance (systematic) resampling: draw r in
// [0,n) uniformly, then for m = 0..size-1 walk the cumulative weight
// array to find the smallest index i with cum[i] >= r + m*n, emitting
// particles[i]. Weights reset to n afterward.
func (f *Filter[P, C, M]) Resample(r rng.Source) {
	size := len(f.particles)
	cum := make([]float32, size)
	var running float32
	for i, w := range f.weights {
		running += w
		cum[i] = running
	}

	draw := float32(r.Float64()) * f.n

	next := make([]P, size)
	i := 0
	for m := 0; m < size; m++ {
		target := draw + float32(m)*f.n
		for i < size-1 && cum[i] < target {
			i++
		}
		next[m] = f.particles[i]
	}

	f.particles = next
	for k := range f.weights {
		f.weights[k] = f.n
	}
}

// Sample draws one particle according to the current weight
// distribution, for visualization/diagnostics.
func (f *Filter[P, C, M]) Sample(r rng.Source) P {
	draw := float32(r.Float64())
	var running float32
	for i, w := range f.weights {
		running += w
		if draw <= running {
			return f.particles[i]
		}
	}
	return f.particles[len(f.particles)-1]
}
