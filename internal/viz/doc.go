// Package viz renders vehicle runs in the terminal.
//
// [Model] is a Bubble Tea program that drives a vehicle live: it advances
// the simulation on every frame tick and draws speed and position history
// with asciigraph next to a lipgloss stats panel. [RenderSummary] and
// [Plot] format finished runs for the CLI.
//
// Keys in the live view:
//
//	space    pause / resume
//	up/down  throttle (manual driving only)
//	r        reset the vehicle
//	q        quit
package viz
