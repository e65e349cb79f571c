package dynamo

import (
	"fmt"
	"math"
)

// Mode selects the force law used by the integrator.
type Mode int

const (
	// Autonomous evaluates the restoring force at the running position.
	Autonomous Mode = iota
	// TimeDriven evaluates the analytic acceleration of the exact solution
	// from the initial conditions, producing a Taylor reference series.
	TimeDriven
)

func (m Mode) String() string {
	switch m {
	case Autonomous:
		return "autonomous"
	case TimeDriven:
		return "time-driven"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

type Grid []float64

// ForwardGrid returns n timestamps t_k = k*dt.
func ForwardGrid(n int, dt float64) Grid {
	if n < 0 {
		n = 0
	}
	g := make(Grid, n)
	for k := range g {
		g[k] = float64(k) * dt
	}
	return g
}

// ReverseGrid returns n timestamps counting down, t_k = (n-k)*dt.
func ReverseGrid(n int, dt float64) Grid {
	if n < 0 {
		n = 0
	}
	g := make(Grid, n)
	for k := range g {
		g[k] = float64(n-k) * dt
	}
	return g
}

func (g Grid) Len() int { return len(g) }

type InitialConditions struct {
	Pos  float64
	Vel  float64
	Mode Mode
}

// Trajectory holds the series produced by one integrator call. All four
// slices share the same length and index k refers to the same instant.
type Trajectory struct {
	Time     []float64
	Position []float64
	Velocity []float64
	Energy   []float64
}

// NewTrajectory allocates position, velocity and energy series sized to
// the grid. Time borrows the grid.
func NewTrajectory(grid Grid) *Trajectory {
	n := len(grid)
	return &Trajectory{
		Time:     grid,
		Position: make([]float64, n),
		Velocity: make([]float64, n),
		Energy:   make([]float64, n),
	}
}

func (t *Trajectory) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Time)
}

// Aligned reports whether all series have the same length.
func (t *Trajectory) Aligned() bool {
	n := len(t.Time)
	return len(t.Position) == n && len(t.Velocity) == n && len(t.Energy) == n
}

// At returns the position and velocity recorded at index k.
func (t *Trajectory) At(k int) (pos, vel float64, ok bool) {
	if t == nil || k < 0 || k >= len(t.Position) || k >= len(t.Velocity) {
		return 0, 0, false
	}
	return t.Position[k], t.Velocity[k], true
}

// IsFinite reports whether no series contains NaN or Inf.
func (t *Trajectory) IsFinite() bool {
	for _, s := range [][]float64{t.Time, t.Position, t.Velocity, t.Energy} {
		for _, v := range s {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

type Integrator interface {
	Integrate(ic InitialConditions, dt float64, grid Grid) *Trajectory
}
