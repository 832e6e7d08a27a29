// Package motion implements the odometry-based motion model: given a pair
// of consecutive odometry poses (a Control) and a prior pose, sample a new
// pose perturbed by Gaussian noise scaled by the motion magnitude.
// spec.md §4.C.
package motion

import (
	"github.com/chewxy/math32"

	"github.com/itohio/dpslam/internal/mathx"
	"github.com/itohio/dpslam/internal/rng"
	"github.com/itohio/dpslam/pose"
)

// Config carries the four non-negative odometry noise coefficients.
// Mirrors the teacher's small-plain-struct config convention (e.g.
// ahrs.Options) for numeric parameter bags that don't need builder methods
// of their own.
type Config struct {
	A1, A2, A3, A4 float32
}

// Option configures a Model at construction time, grounded on the teacher's
// ahrs.Option/WithKP functional-options convention.
type Option func(*Config)

func WithA1(a float32) Option { return func(c *Config) { c.A1 = a } }
func WithA2(a float32) Option { return func(c *Config) { c.A2 = a } }
func WithA3(a float32) Option { return func(c *Config) { c.A3 = a } }
func WithA4(a float32) Option { return func(c *Config) { c.A4 = a } }

// Model is the odometry motion model.
type Model struct {
	cfg Config
}

// New builds a Model from a Config.
func New(cfg Config) *Model {
	return &Model{cfg: cfg}
}

// NewWithOptions builds a Model from functional options starting from the
// zero Config (all coefficients 0, i.e. noiseless odometry).
func NewWithOptions(opts ...Option) *Model {
	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	return New(cfg)
}

// Sample draws a new pose from control's odometry delta applied to prior,
// perturbed by additive Gaussian noise scaled by the odometry parameters.
// If control.Still(), prior is returned unchanged (not recomputed through
// zero deltas, so scenario 3 — a1..a4=0 and current==last — is exact by
// construction, not by coincidence of zero noise).
func (m *Model) Sample(r rng.Source, control pose.Control, prior pose.Pose) pose.Pose {
	if control.Still() {
		return prior
	}

	dx := control.Current.X - control.Last.X
	dy := control.Current.Y - control.Last.Y

	drot1 := math32.Atan2(dy, dx) - control.Last.Theta
	dtrans := math32.Sqrt(dx*dx + dy*dy)
	drot2 := control.Current.Theta - control.Last.Theta - drot1

	rot1Var := m.cfg.A1*drot1*drot1 + m.cfg.A2*dtrans*dtrans
	transVar := m.cfg.A3*dtrans*dtrans + m.cfg.A4*(drot1*drot1+drot2*drot2)
	rot2Var := m.cfg.A1*drot2*drot2 + m.cfg.A2*dtrans*dtrans

	drot1Hat := drot1 + mathx.SampleNormal(r, 0, rot1Var)
	dtransHat := dtrans + mathx.SampleNormal(r, 0, transVar)
	drot2Hat := drot2 + mathx.SampleNormal(r, 0, rot2Var)

	advanced := pose.Advance(prior, dtransHat, drot1Hat)
	return pose.Rotate(advanced, drot2Hat)
}
