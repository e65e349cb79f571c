// Package analysis provides oscillation analysis tools for trajectories.
//
//   - [PowerSpectrum]: magnitude spectrum of a sampled series
//   - [DominantFrequency]: strongest non-zero frequency of a series
//   - [Crossings]: upward zero crossings of the position series
//   - [Period]: mean spacing between crossings
//   - [NewPhasePortrait]: position/velocity phase space points
//
// A unit harmonic oscillator has angular frequency 1, so both estimates
// should land near 1/(2π) Hz and a period of 2π:
//
//	f := analysis.DominantFrequency(traj.Position, dt)
//	p, ok := analysis.Period(traj)
package analysis
