// Package analysis inspects recorded trajectories.
//
//   - [PowerSpectrum]: windowed FFT magnitude of a uniformly sampled signal
//   - [DominantFrequency]: interpolated spectral peak, e.g. the free
//     precession frequency Δ/2π of u(t)
//   - [CrossingFrequency]: the same estimate from zero crossings
//   - [Project]: a 2D projection of the Bloch trajectory for terminal plots
//
// # Ramsey fringes
//
// After a π/2 pulse the transverse components precess at the detuning:
//
//	f := analysis.DominantFrequency(u, dt)
//	detuning := 2 * math.Pi * f
package analysis
