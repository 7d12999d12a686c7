// Package dynamo provides core simulation primitives for the Bloch simulator.
//
// The package defines the fundamental interfaces and types shared by the
// numerical layers:
//
//   - [State]: vector representing system state
//   - [System]: interface for vector fields (dX/dt = f(X, t))
//   - [Integrator]: fixed-step numerical stepper interface
//   - [Metric] and [Observer]: hooks called once per step
//
// # Example
//
//	dyn := physics.NewBloch(selector)
//	integ := integrators.NewRK4()
//	x = integ.Step(dyn, x, t, dt)
//
// # Thread Safety
//
// Integrators keep scratch buffers and are NOT safe for concurrent use.
// Run independent simulations with one integrator each, see [ParallelFor].
package dynamo
