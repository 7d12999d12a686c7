// Package pulse models the control envelope driving the two-level system.
//
// Three mutually exclusive shapes are available:
//
//   - [SquareEnvelope]: constant amplitude/width over a window centred on Center
//   - [GaussianEnvelope]: area-normalised Gaussian with FWHM equal to Width
//   - [ChirpedEnvelope]: Gaussian with quadratic phase (linear frequency sweep)
//
// All shape functions are pure and read [Params] on every call. A [Selector]
// binds the currently selected [Kind] to a shared parameter struct so callers
// can evaluate "Ω at time t" without knowing which shape is active.
package pulse
