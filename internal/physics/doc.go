// Package physics provides the force law of the swept oscillator.
//
// [Harmonic] is a unit-mass, unit-stiffness oscillator. It exposes the
// restoring acceleration used by self-consistent integration, the analytic
// acceleration of the exact solution used by the Taylor reference series,
// and the conserved total energy:
//
//	var osc physics.Harmonic
//	acc := osc.Accel(pos)
//	e := osc.Energy(pos, vel)
package physics
