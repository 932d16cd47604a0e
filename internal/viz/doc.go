// Package viz provides a terminal front-end for the ball simulation.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: live view of one simulation, driven by the wall clock
//   - [Canvas]: Braille-based pixel canvas, one colored disc per ball
//   - Scenario and preset menu via [RunInteractive]
//   - Theme selection with 4 built-in color schemes
//
// Left clicks on the canvas are queued and applied between frames: a click
// inside a ball disposes it, a click on empty space spawns a ball there.
// Resizing the terminal resizes the world.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Rebuild the scenario
//	C     - Clear all balls
//	N     - Add a random ball
//	+/-   - Double/halve speed
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
//
// # Recording
//
// The G key records the world itself, not the terminal cells, as a GIF
// animation written to [Model.GIFPath] when recording stops or the view exits.
package viz
