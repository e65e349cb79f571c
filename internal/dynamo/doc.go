// Package dynamo provides the shared primitives of the oscillator sweep.
//
// The package defines the types passed between the integrator, the trial
// driver and the exporters:
//
//   - [Grid]: ordered timestamps a trajectory is indexed against
//   - [InitialConditions]: starting position, velocity and force mode
//   - [Trajectory]: parallel position, velocity and energy series
//   - [Integrator]: maps initial conditions and a grid to a trajectory
//
// # Example
//
//	grid := dynamo.ForwardGrid(5001, 0.0002)
//	ic := dynamo.InitialConditions{Pos: 0, Vel: 1, Mode: dynamo.Autonomous}
//	traj := integrators.NewVerlet().Integrate(ic, 0.0002, grid)
//
// # Ownership
//
// Grids are immutable once built and may be shared between trajectories.
// A Trajectory is never mutated after the integrator returns it.
package dynamo
