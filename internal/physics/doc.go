// Package physics provides the Bloch equations for a driven two-level system.
//
// [Bloch] implements the [dynamo.System] interface in the rotating frame:
//
//	du/dt =  Δ·v − Im(Ω)·w − u/T1
//	dv/dt = −Δ·u − Re(Ω)·w − v/T2
//	dw/dt =  Re(Ω)·v + Im(Ω)·u − (1+w)/T1
//
// Ω(t) comes from an [Envelope], normally a *pulse.Selector. The model also
// implements [dynamo.Configurable] for runtime adjustment of Δ, T1 and T2.
//
// # Preconditions
//
// T1 and T2 must be non-zero and finite. They are not checked here; a zero
// relaxation time produces non-finite derivatives.
package physics
