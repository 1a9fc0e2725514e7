package physics

import (
	"github.com/san-kum/bubblesim/internal/dynamo"
	"github.com/san-kum/bubblesim/internal/integrators"
)

type CascadeConfig struct {
	// Usable is the open share of the arena height, see GravityUsable.
	Usable float64
	// MaxDepth bounds the recursion. Zero means the number of bodies.
	MaxDepth int
}

// CascadeStats describes one cascade pass.
type CascadeStats struct {
	Touched  []int
	Resolved int
	Depth    int
}

type cascader struct {
	bodies  []dynamo.Body
	arena   dynamo.Arena
	cfg     CascadeConfig
	visited []bool
	euler   *integrators.Euler
	stats   CascadeStats
}

// Cascade pushes every body overlapping the focused one, then every body
// overlapping those, depth first in index order. Each pushed body collides
// with the body that reached it, bounces off the walls and takes one step.
// A body is pushed at most once per call.
func Cascade(bodies []dynamo.Body, focus int, arena dynamo.Arena, cfg CascadeConfig) CascadeStats {
	if focus < 0 || focus >= len(bodies) {
		return CascadeStats{}
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = len(bodies)
	}

	c := &cascader{
		bodies:  bodies,
		arena:   arena,
		cfg:     cfg,
		visited: make([]bool, len(bodies)),
		euler:   integrators.NewEuler(),
	}
	c.visited[focus] = true
	c.spread(focus, 1)
	return c.stats
}

func (c *cascader) spread(origin, depth int) {
	if depth > c.cfg.MaxDepth {
		return
	}

	src := &c.bodies[origin]
	for j := range c.bodies {
		if c.visited[j] {
			continue
		}
		nb := &c.bodies[j]
		if !Overlaps(src, nb) {
			continue
		}

		c.visited[j] = true
		c.stats.Touched = append(c.stats.Touched, j)
		if depth > c.stats.Depth {
			c.stats.Depth = depth
		}
		if Resolve(nb, src) {
			c.stats.Resolved++
		}
		ReflectWalls(nb, c.arena, c.cfg.Usable)
		c.euler.Step(nb, 1)

		c.spread(j, depth+1)
	}
}
