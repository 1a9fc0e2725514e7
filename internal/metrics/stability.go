package metrics

import (
	"github.com/san-kum/bubblesim/internal/dynamo"
	"github.com/san-kum/bubblesim/internal/physics"
)

// Containment is the share of frames in which every body lies fully inside
// the arena, within a tolerance.
type Containment struct {
	name       string
	arena      dynamo.Arena
	tolerance  float64
	violations int
	samples    int
}

func NewContainment(arena dynamo.Arena, tolerance float64) *Containment {
	return &Containment{
		name:      "containment",
		arena:     arena,
		tolerance: tolerance,
	}
}

func (s *Containment) Name() string {
	return s.name
}

func (s *Containment) Observe(bodies []dynamo.Body, t float64) {
	s.samples++
	for _, b := range bodies {
		if !s.arena.Contains(b.Pos, b.Radius-s.tolerance) {
			s.violations++
			break
		}
	}
}

func (s *Containment) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Containment) Reset() {
	s.violations = 0
	s.samples = 0
}

// Overlap counts touching or intersecting pairs. Value is the worst frame
// seen.
type Overlap struct {
	name  string
	last  int
	worst int
}

func NewOverlap() *Overlap {
	return &Overlap{name: "overlap"}
}

func (o *Overlap) Name() string { return o.name }

func (o *Overlap) Observe(bodies []dynamo.Body, t float64) {
	o.last = 0
	for i := range bodies {
		for j := i + 1; j < len(bodies); j++ {
			if physics.Overlaps(&bodies[i], &bodies[j]) {
				o.last++
			}
		}
	}
	o.worst = max(o.worst, o.last)
}

func (o *Overlap) Value() float64 { return float64(o.worst) }

func (o *Overlap) Last() float64 { return float64(o.last) }

func (o *Overlap) Reset() {
	o.last = 0
	o.worst = 0
}
