package metrics

import (
	"math"

	"github.com/san-kum/vvho/internal/dynamo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Chart scaling thresholds.
const (
	PositionLimit            = 10.0
	EnergyAutoscaleThreshold = 32.5
	EnergyWindow             = 0.5
)

// Summary holds the statistics of one trial. MaxPosition, MaxEnergy and
// MeanEnergy are taken over the Taylor reference series.
type Summary struct {
	MaxPosition float64
	MaxEnergy   float64
	MeanEnergy  float64
	EnergyDrift float64
	ReturnError float64
}

// Summarize computes the chart statistics over the Taylor series. An empty
// series yields zeros.
func Summarize(taylor *dynamo.Trajectory) Summary {
	if taylor.Len() == 0 {
		return Summary{}
	}
	return Summary{
		MaxPosition: floats.Max(taylor.Position),
		MaxEnergy:   floats.Max(taylor.Energy),
		MeanEnergy:  stat.Mean(taylor.Energy, nil),
	}
}

func (s Summary) Map() map[string]float64 {
	return map[string]float64{
		"max_position": s.MaxPosition,
		"max_energy":   s.MaxEnergy,
		"mean_energy":  s.MeanEnergy,
		"energy_drift": s.EnergyDrift,
		"return_error": s.ReturnError,
	}
}

// SummaryFromMap is the inverse of Map. Missing keys read as zero.
func SummaryFromMap(m map[string]float64) Summary {
	return Summary{
		MaxPosition: m["max_position"],
		MaxEnergy:   m["max_energy"],
		MeanEnergy:  m["mean_energy"],
		EnergyDrift: m["energy_drift"],
		ReturnError: m["return_error"],
	}
}

type AxisRange struct {
	Min  float64
	Max  float64
	Auto bool
}

// PositionAxis clamps the position panel to [-10, 10] unless the Taylor
// series exceeds 10.
func (s Summary) PositionAxis() AxisRange {
	if s.MaxPosition > PositionLimit {
		return AxisRange{Auto: true}
	}
	return AxisRange{Min: -PositionLimit, Max: PositionLimit}
}

// EnergyAxis centres the energy panel on the mean energy unless the Taylor
// series exceeds the autoscale threshold.
func (s Summary) EnergyAxis() AxisRange {
	if s.MaxEnergy > EnergyAutoscaleThreshold {
		return AxisRange{Auto: true}
	}
	return AxisRange{Min: s.MeanEnergy - EnergyWindow, Max: s.MeanEnergy + EnergyWindow}
}

// MaxAbsError returns the largest deviation of the position series from
// the closed-form solution.
func MaxAbsError(traj *dynamo.Trajectory, exact func(t float64) float64) float64 {
	worst := 0.0
	for i, t := range traj.Time {
		worst = math.Max(worst, math.Abs(traj.Position[i]-exact(t)))
	}
	return worst
}
