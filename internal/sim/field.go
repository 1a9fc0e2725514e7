package sim

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/bubblesim/internal/dynamo"
	"github.com/san-kum/bubblesim/internal/geom"
	"github.com/san-kum/bubblesim/internal/integrators"
	"github.com/san-kum/bubblesim/internal/interact"
	"github.com/san-kum/bubblesim/internal/layout"
	"github.com/san-kum/bubblesim/internal/logging"
	"github.com/san-kum/bubblesim/internal/physics"
)

// Field is the bubble kernel. It owns the bodies of one session and advances
// them one frame per Tick. A Field is not safe for concurrent use; the host
// must serialize Touch and Tick.
type Field struct {
	cfg      Config
	log      *slog.Logger
	rng      *rand.Rand
	arena    dynamo.Arena
	bodies   []dynamo.Body
	springs  []*integrators.Spring2
	machine  *interact.Machine
	plan     *layout.Placement
	clock    float64
	frame    dynamo.Frame
	onSelect func(dynamo.Selection)
	cascade  physics.CascadeStats

	metrics   []Metric
	observers []Observer
}

func NewField(cfg Config, logger *slog.Logger) (*Field, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	logger = logging.OrNop(logger)
	return &Field{
		cfg:     cfg,
		log:     logger,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
		machine: interact.New(logger),
		frame:   dynamo.Frame{Bodies: []dynamo.BodyView{}},
	}, nil
}

func (f *Field) AddMetric(m Metric)     { f.metrics = append(f.metrics, m) }
func (f *Field) AddObserver(o Observer) { f.observers = append(f.observers, o) }

// OnSelect registers the handler called when a body is tapped.
func (f *Field) OnSelect(fn func(dynamo.Selection)) { f.onSelect = fn }

// Load supplies magnitudes and the arena. Bodies are rebuilt and replanned
// when the count or the arena changes; otherwise only magnitudes and color
// tags are refreshed and radii stay put. A degenerate arena is rejected and
// the previous frame kept.
func (f *Field) Load(magnitudes []float64, arena dynamo.Arena) error {
	if !arena.IsValid() {
		return fmt.Errorf("load %vx%v arena: %w", arena.Width, arena.Height, dynamo.ErrDegenerateArena)
	}

	if len(magnitudes) == len(f.bodies) && arena == f.arena && f.plan != nil {
		for i, m := range magnitudes {
			f.bodies[i].Magnitude = m
			f.bodies[i].Tag = dynamo.TagFor(m)
		}
		f.commit()
		return nil
	}

	radii := layout.Radii(magnitudes, arena, f.cfg.FillFactor)
	plan, err := layout.Plan(radii, arena,
		layout.WithMaxAttempts(f.cfg.MaxAttempts),
		layout.WithRand(f.rng),
		layout.WithLogger(f.log),
	)
	if err != nil {
		return fmt.Errorf("plan %d bodies: %w", len(radii), err)
	}

	center := arena.Center()
	bodies := make([]dynamo.Body, len(magnitudes))
	springs := make([]*integrators.Spring2, len(magnitudes))
	for i, m := range magnitudes {
		bodies[i] = dynamo.Body{
			Index:     i,
			Pos:       center,
			Vel:       f.randomVelocity(),
			Radius:    plan.Radii[i],
			Magnitude: m,
			Tag:       dynamo.TagFor(m),
		}
		springs[i] = integrators.NewSpring2(center, f.cfg.PlacementSpring)
		springs[i].Retarget(plan.Positions[i], f.cfg.PlacementSpring)
	}

	f.arena = arena
	f.bodies = bodies
	f.springs = springs
	f.plan = plan
	f.machine.Cancel()
	f.cascade = physics.CascadeStats{}
	f.commit()

	f.log.Info("bodies planned",
		"bodies", len(bodies),
		"width", arena.Width,
		"height", arena.Height,
		"fallback", plan.Fallback,
		"attempts", plan.Attempts)
	return nil
}

// Restore replaces the session with the given bodies, already in place.
func (f *Field) Restore(bodies []dynamo.Body, arena dynamo.Arena) error {
	if !arena.IsValid() {
		return fmt.Errorf("restore: %w", dynamo.ErrDegenerateArena)
	}
	for i, b := range bodies {
		if !b.IsValid() {
			return fmt.Errorf("restore body %d: %w", i, dynamo.ErrInvalidState)
		}
	}

	f.arena = arena
	f.bodies = make([]dynamo.Body, len(bodies))
	f.springs = make([]*integrators.Spring2, len(bodies))
	for i, b := range bodies {
		b.Index = i
		f.bodies[i] = b
		f.springs[i] = integrators.NewSpring2(b.Pos, f.cfg.PlacementSpring)
	}
	radii := make([]float64, len(bodies))
	positions := make([]r2.Vec, len(bodies))
	for i, b := range f.bodies {
		radii[i], positions[i] = b.Radius, b.Pos
	}
	f.plan = &layout.Placement{Positions: positions, Radii: radii, Scale: 1}
	f.machine.Cancel()
	f.cascade = physics.CascadeStats{}
	f.commit()
	return nil
}

// Touch feeds one pointer event to the interaction state machine. A release
// that completes a tap returns the selection and calls the OnSelect handler.
func (f *Field) Touch(ev dynamo.TouchEvent) (dynamo.Selection, bool) {
	p := ev.Point()
	if ev.Phase != dynamo.TouchEnd && !geom.Finite(p) {
		f.log.Debug("touch ignored", "phase", ev.Phase, "error", dynamo.ErrInvalidTouch)
		return dynamo.Selection{}, false
	}

	switch ev.Phase {
	case dynamo.TouchStart:
		f.machine.Press(p, f.bodies, f.clock)
	case dynamo.TouchMove:
		target, ok := f.machine.Move(p, f.bodies, f.arena)
		if ok {
			f.springs[f.machine.Focus()].Retarget(target, f.cfg.DragSpring)
		}
	case dynamo.TouchEnd:
		sel, ok := f.machine.Release(f.bodies)
		if ok && f.onSelect != nil {
			f.onSelect(sel)
		}
		return sel, ok
	default:
		f.log.Debug("touch ignored", "phase", ev.Phase, "error", dynamo.ErrInvalidTouch)
	}
	return dynamo.Selection{}, false
}

// Tick advances the session clock by dt milliseconds, steps every moving
// spring, runs the gravity cascade once a held body has dwelt long enough,
// and returns the new frame.
func (f *Field) Tick(dt float64) dynamo.Frame {
	if !(dt > 0) || math.IsInf(dt, 0) {
		dt = 0
	}
	f.clock += dt

	seconds := dt / 1000
	for i, s := range f.springs {
		if !s.Active {
			continue
		}
		// Springs overshoot; the body's edge stays on the arena.
		pos := s.Step(seconds, f.cfg.SettleEps)
		in := geom.ClampCircle(pos, f.bodies[i].Radius, f.arena.Width, f.arena.Height)
		if in != pos {
			s.Hold(in)
		}
		f.bodies[i].Pos = in
	}

	f.cascade = physics.CascadeStats{}
	if focus := f.machine.Focus(); focus >= 0 && f.machine.DwellElapsed(f.clock, f.cfg.DwellMs) {
		f.cascade = physics.Cascade(f.bodies, focus, f.arena, physics.CascadeConfig{
			Usable:   f.cfg.GravityUsable,
			MaxDepth: f.cfg.MaxCascadeDepth,
		})
		for _, j := range f.cascade.Touched {
			f.springs[j].Jump(f.bodies[j].Pos)
		}
	}

	f.commit()

	for _, m := range f.metrics {
		m.Observe(f.bodies, f.clock)
	}
	for _, o := range f.observers {
		o.OnFrame(f.frame)
	}
	return f.Frame()
}

// commit rebuilds the frame. A body that went NaN or Inf is put back where
// the last frame had it and stopped.
func (f *Field) commit() {
	views := make([]dynamo.BodyView, len(f.bodies))
	for i := range f.bodies {
		b := &f.bodies[i]
		if !b.IsValid() {
			f.log.Warn("body reset to last frame", "index", i, "error", dynamo.ErrInvalidState)
			if i < len(f.frame.Bodies) {
				prev := f.frame.Bodies[i]
				b.Pos = r2.Vec{X: prev.X, Y: prev.Y}
			} else {
				b.Pos = f.arena.Center()
			}
			b.Vel = r2.Vec{}
			f.springs[i].Jump(b.Pos)
		}
		views[i] = b.View()
	}
	f.frame = dynamo.Frame{Time: f.clock, Bodies: views}
}

func (f *Field) randomVelocity() r2.Vec {
	s := f.cfg.InitialSpeed
	return r2.Vec{X: f.rng.Float64()*2*s - s, Y: f.rng.Float64()*2*s - s}
}

// Frame returns a copy of the latest frame.
func (f *Field) Frame() dynamo.Frame {
	views := make([]dynamo.BodyView, len(f.frame.Bodies))
	copy(views, f.frame.Bodies)
	return dynamo.Frame{Time: f.frame.Time, Bodies: views}
}

// Bodies returns a copy of the body state.
func (f *Field) Bodies() []dynamo.Body {
	out := make([]dynamo.Body, len(f.bodies))
	copy(out, f.bodies)
	return out
}

func (f *Field) Arena() dynamo.Arena               { return f.arena }
func (f *Field) Clock() float64                    { return f.clock }
func (f *Field) Focus() int                        { return f.machine.Focus() }
func (f *Field) State() interact.State             { return f.machine.State() }
func (f *Field) Placement() *layout.Placement      { return f.plan }
func (f *Field) LastCascade() physics.CascadeStats { return f.cascade }

// Settled reports whether no body is still being animated by a spring.
func (f *Field) Settled() bool {
	for _, s := range f.springs {
		if s.Active {
			return false
		}
	}
	return true
}
