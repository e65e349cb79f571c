package metrics

import (
	"math"

	"github.com/san-kum/vvho/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// EnergyDrift returns the spread max(E)-min(E) of a trajectory's energy.
func EnergyDrift(traj *dynamo.Trajectory) float64 {
	if traj.Len() == 0 {
		return 0
	}
	return floats.Max(traj.Energy) - floats.Min(traj.Energy)
}

// RelativeDrift returns the largest |E-E0|/|E0| over the trajectory.
func RelativeDrift(traj *dynamo.Trajectory) float64 {
	if traj.Len() == 0 || traj.Energy[0] == 0 {
		return 0
	}
	e0 := traj.Energy[0]
	maxDrift := 0.0
	for _, e := range traj.Energy {
		maxDrift = math.Max(maxDrift, math.Abs(e-e0)/math.Abs(e0))
	}
	return maxDrift
}

// ReturnError measures time-reversal symmetry. A reverse run of n samples
// started from forward index n ends where the forward run was at index 1.
// It returns false when either run is too short to compare.
func ReturnError(forward, reverse *dynamo.Trajectory) (float64, bool) {
	n := reverse.Len()
	if n < 2 || forward.Len() < 2 {
		return 0, false
	}
	return math.Abs(reverse.Position[n-1] - forward.Position[1]), true
}
