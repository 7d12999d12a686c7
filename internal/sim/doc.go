// Package sim owns a running Bloch simulation.
//
// A [Controller] holds the Bloch vector, the pulse parameters, the selected
// envelope, the clock and the relaxation constants, and is the only thing
// that mutates them. Hosts drive it one frame at a time:
//
//	q := sim.NewEditQueue()
//	c := sim.New(sim.DefaultConfig())
//	for running {
//	    // input goroutines call q.Push(...)
//	    c.Frame(q)
//	    render(c.Snapshot())
//	}
//
// # Thread Safety
//
// Controller is NOT safe for concurrent use; call it from one goroutine.
// Edits produced elsewhere go through an [EditQueue], which Frame drains
// before the tick so no edit ever lands between integrator stages.
package sim
