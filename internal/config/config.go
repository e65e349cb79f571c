package config

import (
	"fmt"
	"os"

	"github.com/san-kum/vvho/internal/dynamo"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTotalTime = 100.0
	DefaultPosStart  = 0.0
	DefaultParallel  = 1
	DefaultDataDir   = ".vvho"
)

var (
	DefaultTimeSteps  = []float64{0.0002, 0.001, 0.01, 1, 2, 4}
	DefaultVelocities = []float64{1, 2, 4, 8}
)

type Config struct {
	TotalTime  float64   `yaml:"total_time"`
	PosStart   float64   `yaml:"pos_start"`
	TimeSteps  []float64 `yaml:"time_steps"`
	Velocities []float64 `yaml:"velocities"`
	Parallel   int       `yaml:"parallel"`
	Plot       bool      `yaml:"plot"`
}

func DefaultConfig() *Config {
	return &Config{
		TotalTime:  DefaultTotalTime,
		PosStart:   DefaultPosStart,
		TimeSteps:  append([]float64(nil), DefaultTimeSteps...),
		Velocities: append([]float64(nil), DefaultVelocities...),
		Parallel:   DefaultParallel,
		Plot:       true,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the sweep parameters. Time steps and the total time
// must be positive and both parameter sets non-empty.
func (c *Config) Validate() error {
	if c.TotalTime <= 0 {
		return fmt.Errorf("%w: total_time must be positive, got %g", dynamo.ErrParameterBounds, c.TotalTime)
	}
	if len(c.TimeSteps) == 0 || len(c.Velocities) == 0 {
		return dynamo.ErrEmptySweep
	}
	for _, dt := range c.TimeSteps {
		if dt <= 0 {
			return fmt.Errorf("%w: time step must be positive, got %g", dynamo.ErrParameterBounds, dt)
		}
	}
	if c.Parallel < 0 {
		return fmt.Errorf("%w: parallel must not be negative, got %d", dynamo.ErrParameterBounds, c.Parallel)
	}
	return nil
}

// Trials returns the number of (time step, velocity) combinations.
func (c *Config) Trials() int {
	return len(c.TimeSteps) * len(c.Velocities)
}
