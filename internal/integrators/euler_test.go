package integrators

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/bubblesim/internal/dynamo"
)

func TestEulerStep(t *testing.T) {
	integ := NewEuler()
	b := &dynamo.Body{Pos: r2.Vec{X: 10, Y: 20}, Vel: r2.Vec{X: 1.5, Y: -2}, Radius: 4}

	integ.Step(b, 1)
	if b.Pos.X != 11.5 || b.Pos.Y != 18 {
		t.Errorf("after one step got %v, want {11.5 18}", b.Pos)
	}

	integ.Step(b, 2)
	if b.Pos.X != 14.5 || b.Pos.Y != 14 {
		t.Errorf("after a double step got %v, want {14.5 14}", b.Pos)
	}

	if b.Vel.X != 1.5 || b.Vel.Y != -2 {
		t.Errorf("velocity changed: %v", b.Vel)
	}
}
