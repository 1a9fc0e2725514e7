// Package interact tracks a single touch from press to release and decides
// whether it was a tap or a drag.
package interact

import (
	"log/slog"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/bubblesim/internal/dynamo"
	"github.com/san-kum/bubblesim/internal/geom"
	"github.com/san-kum/bubblesim/internal/logging"
)

type State uint8

const (
	Idle State = iota
	Focused
	Dragging
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Focused:
		return "focused"
	case Dragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// noSample marks a press that has not seen a move yet.
const noSample = -1.0

// Machine is the touch state machine. The zero value is not ready; use New.
type Machine struct {
	state     State
	focus     int
	sample    float64
	pressedAt float64
	log       *slog.Logger
}

func New(logger *slog.Logger) *Machine {
	return &Machine{focus: -1, sample: noSample, log: logging.OrNop(logger)}
}

func (m *Machine) State() State { return m.state }

// Focus is the index of the held body, or -1.
func (m *Machine) Focus() int { return m.focus }

// Sample is the last pointer-to-center distance, or -1 before any move.
func (m *Machine) Sample() float64 { return m.sample }

// Press starts a new touch cycle at p. The hit body is the one whose center
// is nearest p among those containing it, ties going to the lower index.
func (m *Machine) Press(p r2.Vec, bodies []dynamo.Body, now float64) bool {
	m.reset()
	m.pressedAt = now

	idx := HitTest(bodies, p)
	if idx < 0 {
		return false
	}
	m.focus = idx
	m.state = Focused
	m.log.Debug("body focused", "index", idx, "x", p.X, "y", p.Y)
	return true
}

// Move reports where the held body should head: the pointer, clamped so
// the body stays inside the arena. It also records the live distance between
// the pointer and the body's center, which marks the touch as a drag.
func (m *Machine) Move(p r2.Vec, bodies []dynamo.Body, arena dynamo.Arena) (r2.Vec, bool) {
	if m.state == Idle {
		m.log.Debug("move ignored", "error", dynamo.ErrInvalidTouch)
		return r2.Vec{}, false
	}
	if m.focus >= len(bodies) {
		m.reset()
		return r2.Vec{}, false
	}

	b := bodies[m.focus]
	target := geom.ClampCircle(p, b.Radius, arena.Width, arena.Height)
	m.sample = geom.Distance(p, b.Pos)
	m.state = Dragging
	return target, true
}

// Release ends the touch. A press that never saw a move is a tap and yields a
// selection for the held body. The machine is idle afterwards.
func (m *Machine) Release(bodies []dynamo.Body) (dynamo.Selection, bool) {
	defer m.reset()

	if m.state == Idle {
		m.log.Debug("release ignored", "error", dynamo.ErrInvalidTouch)
		return dynamo.Selection{}, false
	}
	if m.focus >= len(bodies) || m.sample >= 0 {
		return dynamo.Selection{}, false
	}

	b := bodies[m.focus]
	m.log.Debug("body tapped", "index", b.Index, "magnitude", b.Magnitude)
	return dynamo.Selection{
		Index:     b.Index,
		Magnitude: b.Magnitude,
		X:         b.Pos.X,
		Y:         b.Pos.Y,
		Radius:    b.Radius,
	}, true
}

// DwellElapsed reports whether a body has been held still for at least
// dwell. A body being dragged never dwells.
func (m *Machine) DwellElapsed(now, dwell float64) bool {
	return m.state == Focused && now-m.pressedAt >= dwell
}

// Cancel drops any touch in progress without a selection.
func (m *Machine) Cancel() {
	m.reset()
}

func (m *Machine) reset() {
	m.state = Idle
	m.focus = -1
	m.sample = noSample
}

// HitTest returns the index of the body under p, or -1.
func HitTest(bodies []dynamo.Body, p r2.Vec) int {
	found := -1
	best := 0.0
	for i := range bodies {
		d := geom.Distance(p, bodies[i].Pos)
		if d > bodies[i].Radius {
			continue
		}
		if found < 0 || d < best {
			found, best = i, d
		}
	}
	return found
}
