package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for sweep operations.
var (
	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrEmptySweep indicates a sweep with no time steps or no velocities.
	ErrEmptySweep = errors.New("dynamo: sweep has no trials")

	// ErrTrajectoryMismatch indicates series of different lengths.
	ErrTrajectoryMismatch = errors.New("dynamo: trajectory series lengths differ")
)

// TrialError wraps an error with the parameters of the trial that failed.
type TrialError struct {
	TimeStep float64
	Velocity float64
	Wrapped  error
}

func (e *TrialError) Error() string {
	return fmt.Sprintf("trial dt=%g v=%g: %v", e.TimeStep, e.Velocity, e.Wrapped)
}

func (e *TrialError) Unwrap() error {
	return e.Wrapped
}
