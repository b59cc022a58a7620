// Package viz provides the terminal live view of a running simulation.
//
// The view is a Bubble Tea program:
//
//   - [Model]: steps a [sim.Stepper] on a timer and renders it
//   - [Canvas]: Braille-based pixel canvas the particles are plotted on
//   - Theme selection with 3 built-in color schemes
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset to initial state
//	+/-   - Double/halve steps per frame
//	T     - Cycle color themes
//	?     - Show help
//	Q     - Quit
package viz
