// Package dynamo provides the core types shared by the bubble kernel.
//
// The package defines the data that flows between the kernel's parts:
//
//   - [Body]: a circular body with a stable index, position, radius and velocity
//   - [Arena]: the fixed rectangle bodies live in
//   - [TouchEvent]: a press, move or release delivered by the host
//   - [Frame]: the per-frame positions, radii and color tags handed to the host
//   - [Selection]: the event fired when a body is tapped
//
// # Example
//
//	field, _ := sim.NewField(sim.DefaultConfig(), nil)
//	_ = field.Load(magnitudes, dynamo.Arena{Width: 350, Height: 622})
//	field.Touch(dynamo.TouchEvent{Phase: dynamo.TouchStart, X: 120, Y: 300})
//	field.Tick(16)
//	frame := field.Frame()
//
// # Thread Safety
//
// None of these types carry locks. The kernel mutates bodies from a single
// frame loop and hosts must serialize touch and tick calls.
package dynamo
