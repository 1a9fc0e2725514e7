// Package viz is a terminal host for the bubble field.
//
// [Model] is a Bubble Tea program that ticks a [sim.Field] at 60 frames per
// second, draws the bodies on a braille [Canvas] and turns mouse input into
// touch events:
//
//   - press on a body to focus it, drag to move it
//   - hold for the dwell time to push neighbors aside
//   - tap to open the selection panel
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Replan the field
//	Esc   - Close the selection panel
//	?     - Show help overlay
//	Q     - Quit
package viz
