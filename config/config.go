// Package config loads the YAML configuration that parameterizes an
// Estimator: particle count, resampling threshold, and the motion/sensor
// model coefficients. Modeled on the teacher's
// cmd/spectrometer/internal/config loader pattern, trimmed to the single
// YAML format DP-SLAM needs (no proto/JSON variants). spec.md §6.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MotionConfig carries the odometry noise coefficients.
type MotionConfig struct {
	A1 float32 `yaml:"a1"`
	A2 float32 `yaml:"a2"`
	A3 float32 `yaml:"a3"`
	A4 float32 `yaml:"a4"`
}

// SensorConfig carries the beam sensor model's parameters.
type SensorConfig struct {
	Variance float32 `yaml:"variance"`
	MaxRay   float32 `yaml:"max_ray"`
	Samples  int     `yaml:"samples"`
	Size     int     `yaml:"size"`
}

// Config is the top-level Estimator configuration.
type Config struct {
	Size              int          `yaml:"size"`
	ResampleFrac      float64      `yaml:"resample_frac"`
	EliminationFactor float32      `yaml:"elimination_factor"`
	Motion            MotionConfig `yaml:"motion"`
	Sensor            SensorConfig `yaml:"sensor"`
}

// Load reads and parses a YAML config file, validating it before return.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	return &cfg, nil
}

// Validate checks the constraints spec.md §6/§7 place on configuration:
// the particle count must be positive, the sensor scan must evaluate at
// least one beam per step, sensor.size must be a multiple of
// sensor.samples, sensor.variance must be non-negative, and resample_frac
// must lie in (0, 1].
func (c *Config) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("size must be > 0, got %d", c.Size)
	}
	if c.Sensor.Samples < 1 {
		return fmt.Errorf("sensor.samples must be >= 1, got %d", c.Sensor.Samples)
	}
	if c.Sensor.Size%c.Sensor.Samples != 0 {
		return fmt.Errorf("sensor.size (%d) must be a multiple of sensor.samples (%d)", c.Sensor.Size, c.Sensor.Samples)
	}
	if c.Sensor.Variance < 0 {
		return fmt.Errorf("sensor.variance must be non-negative, got %f", c.Sensor.Variance)
	}
	if c.ResampleFrac <= 0 || c.ResampleFrac > 1 {
		return fmt.Errorf("resample_frac must be in (0, 1], got %f", c.ResampleFrac)
	}
	return nil
}
