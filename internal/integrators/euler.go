package integrators

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/bubblesim/internal/dynamo"
)

// Euler advances a body's position by its velocity. One frame is one unit
// of time, so velocities are in arena units per frame.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(b *dynamo.Body, dt float64) {
	b.Pos = r2.Add(b.Pos, r2.Scale(dt, b.Vel))
}
