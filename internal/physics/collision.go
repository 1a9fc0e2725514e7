package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/bubblesim/internal/dynamo"
	"github.com/san-kum/bubblesim/internal/geom"
)

// Mix is each body's share of the pair's mass. Bodies are treated as equal
// mass whatever their radius, so the normal components swap outright.
const Mix = 0.5

// GravityUsable is the share of the arena height open to bodies while the
// cascade runs, leaving room for host chrome at the bottom.
const GravityUsable = 0.87

// Overlaps reports whether two bodies touch or intersect.
func Overlaps(a, b *dynamo.Body) bool {
	return geom.Gap(a.Pos, a.Radius, b.Pos, b.Radius) <= 0
}

// Approaching reports whether a moves toward b along their center line,
// relative to b's motion.
func Approaching(a, b *dynamo.Body) bool {
	return r2.Dot(r2.Sub(a.Vel, b.Vel), r2.Sub(b.Pos, a.Pos)) >= 0
}

// Resolve exchanges the velocity components of a and b along the line
// joining their centers and keeps the tangential components. Pairs already
// moving apart are left alone. It reports whether velocities changed hands.
func Resolve(a, b *dynamo.Body) bool {
	if !Approaching(a, b) {
		return false
	}

	angle := -geom.Angle(a.Pos, b.Pos)
	u1 := geom.Rotate(a.Vel, angle)
	u2 := geom.Rotate(b.Vel, angle)

	v1 := r2.Vec{X: u2.X * 2 * Mix, Y: u1.Y}
	v2 := r2.Vec{X: u1.X * 2 * Mix, Y: u2.Y}

	a.Vel = geom.Rotate(v1, -angle)
	b.Vel = geom.Rotate(v2, -angle)
	return true
}

// ReflectWalls negates each velocity component whose next step would put the
// body against or past a wall. usable is the open share of the arena height.
func ReflectWalls(b *dynamo.Body, arena dynamo.Arena, usable float64) (flipX, flipY bool) {
	next := r2.Add(b.Pos, b.Vel)
	bottom := arena.UsableHeight(usable)

	if next.X <= b.Radius || next.X >= arena.Width-b.Radius {
		b.Vel.X = -b.Vel.X
		flipX = true
	}
	if next.Y <= b.Radius || next.Y >= bottom-b.Radius {
		b.Vel.Y = -b.Vel.Y
		flipY = true
	}
	return flipX, flipY
}

// NormalTangential splits a's and b's velocities into components along and
// across the line of centers.
func NormalTangential(a, b *dynamo.Body) (an, at, bn, bt float64) {
	angle := -geom.Angle(a.Pos, b.Pos)
	u1 := geom.Rotate(a.Vel, angle)
	u2 := geom.Rotate(b.Vel, angle)
	return u1.X, u1.Y, u2.X, u2.Y
}

// KineticEnergy is the unit-mass kinetic energy of a body.
func KineticEnergy(b *dynamo.Body) float64 {
	return 0.5 * r2.Norm2(b.Vel)
}

// Speed is the magnitude of a body's velocity.
func Speed(b *dynamo.Body) float64 {
	return math.Hypot(b.Vel.X, b.Vel.Y)
}
