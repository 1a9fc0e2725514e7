package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for kernel operations.
var (
	// ErrLayoutExhausted indicates rejection sampling ran out of attempts for a body.
	ErrLayoutExhausted = errors.New("dynamo: layout exhausted (no free spot within attempt cap)")

	// ErrDegenerateArena indicates an arena with a non-positive or non-finite dimension.
	ErrDegenerateArena = errors.New("dynamo: degenerate arena")

	// ErrInvalidTouch indicates a move or release with no matching press.
	ErrInvalidTouch = errors.New("dynamo: touch event without matching press")

	// ErrInvalidConfig indicates a parameter value outside its valid range.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrInvalidState indicates a body position or velocity went NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid body state (NaN or Inf detected)")
)

// LayoutError wraps a layout failure with the body that could not be placed.
type LayoutError struct {
	Body     int
	Attempts int
	Wrapped  error
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("body %d after %d attempts: %v", e.Body, e.Attempts, e.Wrapped)
}

func (e *LayoutError) Unwrap() error {
	return e.Wrapped
}
