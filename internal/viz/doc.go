// Package viz renders simulation output in the terminal.
//
// Static plots go through asciigraph; the live view is a Bubble Tea program
// that steps replicate lines one generation per tick.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	N     - Step one generation while paused
//	R     - Restart with fresh seeds
//	Up/K  - Double the population size
//	Down/J - Halve the population size
//	Q     - Quit
package viz
