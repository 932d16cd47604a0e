// Package control carries user input into the simulation.
//
// Pointer events arrive on whatever goroutine the front end runs on.
// They are buffered in a [Queue] and drained by the simulation between
// frames, so ball creation and disposal never race with a step:
//
//	q := control.NewQueue()
//	q.Click(dynamo.V(x, y))    // from an input handler
//	sim.Drain(q, bounds)       // between frames
//
// A [Script] replays timed commands for headless runs.
package control
