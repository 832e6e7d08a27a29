// Package mathx implements the sampling primitives behind the motion and
// sensor models: a Box-Muller normal sampler and the matching Gaussian pdf.
// Grounded on the teacher's pervasive use of github.com/chewxy/math32 for
// embedded-friendly float32 trigonometry/exponentials instead of the math
// package.
package mathx

import (
	"github.com/chewxy/math32"
	"github.com/itohio/dpslam/internal/assert"
	"github.com/itohio/dpslam/internal/rng"
)

// SampleNormal draws one sample from Normal(mu, variance) using the
// Box-Muller transform. The two uniform draws are flipped off zero
// (1-u instead of u) so the logarithm stays finite, per spec.md §4.A/§7.
func SampleNormal(r rng.Source, mu, variance float32) float32 {
	assert.That(variance >= 0, "mathx: variance must be non-negative, got %v", variance)
	if variance == 0 {
		return mu
	}

	u1 := 1 - r.Float64()
	u2 := 1 - r.Float64()

	mag := math32.Sqrt(-2 * math32.Log(float32(u1)))
	z := mag * math32.Cos(2*math32.Pi*float32(u2))

	return mu + math32.Sqrt(variance)*z
}

// ProbNormal returns the Gaussian pdf of v under Normal(mu, variance).
func ProbNormal(v, mu, variance float32) float32 {
	assert.That(variance > 0, "mathx: variance must be positive, got %v", variance)
	diff := v - mu
	return math32.Exp(-(diff*diff)/(2*variance)) / math32.Sqrt(2*math32.Pi*variance)
}
