// Package physics resolves contacts between bubble bodies.
//
//   - [Resolve]: equal-mass elastic exchange along the line of centers
//   - [ReflectWalls]: bounce a body off the arena edges before it moves
//   - [Cascade]: ripple a disturbance through chains of overlapping bodies
//
// All functions mutate bodies in place and assume a single caller.
package physics
