// Package viz renders a live Bloch sphere in the terminal using Bubble Tea.
//
//   - [Model]: the interactive program; key presses become sim edits pushed
//     onto an edit queue, and every frame drains the queue then ticks
//   - [Canvas]: braille dot canvas
//   - [Scene]: wire-frame unit sphere, axes and the Bloch vector, projected
//     through a rotatable [Camera]
//
// # Key Bindings
//
//	1       - Recenter the pulse 1.5 widths ahead of now
//	2 / 3   - Widen / narrow the pulse by 0.01
//	4 / 5   - Raise / lower the amplitude by 0.01
//	g s c   - Select the Gaussian, square or chirped envelope
//	Arrows  - Rotate the view
//	Space   - Pause/Resume
//	R       - Reset
//	T       - Cycle color themes
//	?       - Show help overlay
package viz
