package integrators

import (
	"github.com/san-kum/vvho/internal/dynamo"
	"github.com/san-kum/vvho/internal/physics"
)

// Verlet integrates the harmonic oscillator with the Velocity Verlet
// position update. In autonomous mode the velocity uses the average of the
// old and new acceleration; in time-driven mode it takes a first-order
// step with the old acceleration, and the new acceleration comes from the
// exact solution at the previous grid time.
type Verlet struct {
	osc physics.Harmonic
}

func NewVerlet() *Verlet {
	return &Verlet{}
}

// VelocityVerlet runs a single integration with a fresh Verlet.
func VelocityVerlet(ic dynamo.InitialConditions, dt float64, grid dynamo.Grid) *dynamo.Trajectory {
	return NewVerlet().Integrate(ic, dt, grid)
}

func (v *Verlet) Integrate(ic dynamo.InitialConditions, dt float64, grid dynamo.Grid) *dynamo.Trajectory {
	n := len(grid)
	traj := dynamo.NewTrajectory(grid)
	if n == 0 {
		return traj
	}

	timeDriven := ic.Mode == dynamo.TimeDriven

	pos := ic.Pos
	vel := ic.Vel
	traj.Position[0] = pos
	traj.Velocity[0] = vel
	traj.Energy[0] = v.osc.Energy(pos, vel)

	var acc float64
	if timeDriven {
		acc = v.osc.AnalyticAccel(ic.Pos, ic.Vel, grid[0])
	} else {
		acc = v.osc.Accel(pos)
	}

	for i := 1; i < n; i++ {
		pos = pos + vel*dt + 0.5*acc*dt*dt

		var newAcc float64
		if timeDriven {
			newAcc = v.osc.AnalyticAccel(ic.Pos, ic.Vel, grid[i-1])
			vel = vel + acc*dt
		} else {
			newAcc = v.osc.Accel(pos)
			vel = vel + 0.5*(acc+newAcc)*dt
		}

		traj.Position[i] = pos
		traj.Velocity[i] = vel
		acc = newAcc

		traj.Energy[i] = v.osc.Energy(pos, vel)
	}

	return traj
}
