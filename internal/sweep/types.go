// Package sweep runs the Velocity Verlet trial sweep: every combination of
// time step and initial velocity, each integrated forward autonomously,
// forward against the analytic force, and backwards from the forward
// run's midpoint.
package sweep

import (
	"fmt"

	"github.com/san-kum/vvho/internal/config"
	"github.com/san-kum/vvho/internal/dynamo"
	"github.com/san-kum/vvho/internal/metrics"
)

type Params struct {
	TimeStep float64
	Velocity float64
}

func (p Params) String() string {
	return fmt.Sprintf("dt=%g v=%g", p.TimeStep, p.Velocity)
}

// Report is what survives a trial once its trajectories are released.
type Report struct {
	Params
	Steps        int
	ReverseSteps int
	Summary      metrics.Summary
	Finite       bool
}

// TrialResult carries a finished trial to exporters and observers. The
// trajectories are only valid for the duration of those calls.
type TrialResult struct {
	Report
	PosStart float64
	Forward  *dynamo.Trajectory
	Reverse  *dynamo.Trajectory
	Taylor   *dynamo.Trajectory
}

type Observer interface {
	OnTrial(res *TrialResult)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(res *TrialResult)

func (f ObserverFunc) OnTrial(res *TrialResult) { f(res) }

type Exporter interface {
	Export(res *TrialResult) error
}

type Options struct {
	TotalTime  float64
	PosStart   float64
	TimeSteps  []float64
	Velocities []float64
	// Parallel bounds concurrent trials. Zero uses one worker per CPU.
	Parallel int
}

// OptionsFromConfig copies the sweep parameters out of a loaded config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		TotalTime:  cfg.TotalTime,
		PosStart:   cfg.PosStart,
		TimeSteps:  append([]float64(nil), cfg.TimeSteps...),
		Velocities: append([]float64(nil), cfg.Velocities...),
		Parallel:   cfg.Parallel,
	}
}

func (o Options) Validate() error {
	if o.TotalTime <= 0 {
		return fmt.Errorf("%w: total time must be positive, got %g", dynamo.ErrParameterBounds, o.TotalTime)
	}
	if len(o.TimeSteps) == 0 || len(o.Velocities) == 0 {
		return dynamo.ErrEmptySweep
	}
	for _, dt := range o.TimeSteps {
		if dt <= 0 {
			return fmt.Errorf("%w: time step must be positive, got %g", dynamo.ErrParameterBounds, dt)
		}
	}
	if o.Parallel < 0 {
		return fmt.Errorf("%w: parallel must not be negative, got %d", dynamo.ErrParameterBounds, o.Parallel)
	}
	return nil
}
