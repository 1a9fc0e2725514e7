// Package geom holds the stateless 2D helpers used by layout and physics.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

func Distance(a, b r2.Vec) float64 {
	return r2.Norm(r2.Sub(b, a))
}

// Rotate turns v about the origin by angle radians, counter-clockwise.
func Rotate(v r2.Vec, angle float64) r2.Vec {
	return r2.Rotate(v, angle, r2.Vec{})
}

// Angle is the direction of the line from a to b.
func Angle(a, b r2.Vec) float64 {
	d := r2.Sub(b, a)
	return math.Atan2(d.Y, d.X)
}

// Clamp bounds v to [lo, hi]. When lo > hi the upper bound wins.
func Clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// ClampCircle moves p so a circle of radius r centered there stays inside
// the box [0,w] x [0,h].
func ClampCircle(p r2.Vec, r, w, h float64) r2.Vec {
	return r2.Vec{
		X: Clamp(p.X, r, w-r),
		Y: Clamp(p.Y, r, h-r),
	}
}

// Gap is the distance between two circle edges; zero or less means overlap.
func Gap(a r2.Vec, ra float64, b r2.Vec, rb float64) float64 {
	return Distance(a, b) - (ra + rb)
}

// Finite reports whether both components are real numbers.
func Finite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}
