package physics

import "math"

const (
	DefaultMass      = 1.0
	DefaultStiffness = 1.0
)

// Harmonic is a unit-mass, unit-stiffness harmonic oscillator, x'' = -x.
type Harmonic struct{}

// Accel returns the restoring acceleration at pos.
func (Harmonic) Accel(pos float64) float64 {
	return -1.0 * pos
}

// AnalyticAccel returns the acceleration of the exact solution started
// from (pos0, vel0), evaluated at time t.
func (Harmonic) AnalyticAccel(pos0, vel0, t float64) float64 {
	return -1.0 * (pos0*math.Cos(t) + vel0*math.Sin(t))
}

// Exact returns the closed-form position at time t.
func (Harmonic) Exact(pos0, vel0, t float64) float64 {
	return pos0*math.Cos(t) + vel0*math.Sin(t)
}

func (Harmonic) Energy(pos, vel float64) float64 {
	return 0.5*DefaultMass*vel*vel + 0.5*DefaultStiffness*pos*pos
}
