package integrators

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"gonum.org/v1/gonum/spatial/r2"
)

// SpringConfig describes a damped spring with unit-free stiffness and
// damping coefficients. Velocity is the kick a spring gets when it starts
// moving from rest, in units per second.
type SpringConfig struct {
	Damping   float64 `yaml:"damping"`
	Stiffness float64 `yaml:"stiffness"`
	Mass      float64 `yaml:"mass"`
	Velocity  float64 `yaml:"velocity"`
}

var (
	// PlacementSpring settles freshly planned bodies into place.
	PlacementSpring = SpringConfig{Damping: 15, Stiffness: 2, Mass: 1, Velocity: 150}

	// DragSpring follows the pointer. Stiffer and quicker than placement.
	DragSpring = SpringConfig{Damping: 20, Stiffness: 10, Mass: 1, Velocity: 550}
)

func (c SpringConfig) mass() float64 {
	if c.Mass <= 0 {
		return 1
	}
	return c.Mass
}

// AngularFrequency is sqrt(k/m).
func (c SpringConfig) AngularFrequency() float64 {
	return math.Sqrt(c.Stiffness / c.mass())
}

// DampingRatio is c / (2*sqrt(k*m)).
func (c SpringConfig) DampingRatio() float64 {
	return c.Damping / (2 * math.Sqrt(c.Stiffness*c.mass()))
}

func (c SpringConfig) Valid() bool {
	return c.Stiffness > 0 && c.Damping >= 0 && c.Mass >= 0 &&
		!math.IsNaN(c.Velocity) && !math.IsInf(c.Velocity, 0)
}

// Spring is a resumable scalar spring. Retargeting keeps the current value
// and velocity, so a new target mid-flight bends the motion instead of
// restarting it.
type Spring struct {
	Current  float64
	Target   float64
	Velocity float64
	Config   SpringConfig

	dt     float64
	spring harmonica.Spring
}

func NewSpring(current float64, cfg SpringConfig) *Spring {
	return &Spring{Current: current, Target: current, Config: cfg}
}

// Retarget points the spring at a new target under cfg. A spring at rest
// receives the config's initial velocity toward the target.
func (s *Spring) Retarget(target float64, cfg SpringConfig) {
	if cfg != s.Config {
		s.Config = cfg
		s.dt = 0
	}
	s.Target = target
	if s.Velocity == 0 && target != s.Current {
		s.Velocity = math.Copysign(cfg.Velocity, target-s.Current)
	}
}

// Jump places the spring at v with no motion.
func (s *Spring) Jump(v float64) {
	s.Current = v
	s.Target = v
	s.Velocity = 0
}

// Step advances the spring by dt seconds and returns the new value.
func (s *Spring) Step(dt float64) float64 {
	if dt <= 0 {
		return s.Current
	}
	if dt != s.dt {
		s.spring = harmonica.NewSpring(dt, s.Config.AngularFrequency(), s.Config.DampingRatio())
		s.dt = dt
	}
	s.Current, s.Velocity = s.spring.Update(s.Current, s.Velocity, s.Target)
	return s.Current
}

// Settled reports whether the spring is within eps of its target and
// practically still.
func (s *Spring) Settled(eps float64) bool {
	return math.Abs(s.Current-s.Target) <= eps && math.Abs(s.Velocity) <= eps
}

// Spring2 drives a point with one spring per axis.
type Spring2 struct {
	X, Y   Spring
	Active bool
}

func NewSpring2(p r2.Vec, cfg SpringConfig) *Spring2 {
	return &Spring2{X: *NewSpring(p.X, cfg), Y: *NewSpring(p.Y, cfg)}
}

func (s *Spring2) Retarget(p r2.Vec, cfg SpringConfig) {
	s.X.Retarget(p.X, cfg)
	s.Y.Retarget(p.Y, cfg)
	s.Active = true
}

// Hold moves the spring to p, dropping the velocity of every axis that moved.
// The target and the active flag are kept.
func (s *Spring2) Hold(p r2.Vec) {
	if p.X != s.X.Current {
		s.X.Current, s.X.Velocity = p.X, 0
	}
	if p.Y != s.Y.Current {
		s.Y.Current, s.Y.Velocity = p.Y, 0
	}
}

func (s *Spring2) Jump(p r2.Vec) {
	s.X.Jump(p.X)
	s.Y.Jump(p.Y)
	s.Active = false
}

// Step advances both axes. Once both settle the spring snaps to its target
// and goes inactive.
func (s *Spring2) Step(dt, eps float64) r2.Vec {
	if !s.Active {
		return s.Current()
	}
	s.X.Step(dt)
	s.Y.Step(dt)
	if s.X.Settled(eps) && s.Y.Settled(eps) {
		s.Jump(s.Target())
	}
	return s.Current()
}

func (s *Spring2) Current() r2.Vec { return r2.Vec{X: s.X.Current, Y: s.Y.Current} }
func (s *Spring2) Target() r2.Vec  { return r2.Vec{X: s.X.Target, Y: s.Y.Target} }
