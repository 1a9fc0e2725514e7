package sim_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/bubblesim/internal/dynamo"
	"github.com/san-kum/bubblesim/internal/interact"
	"github.com/san-kum/bubblesim/internal/sim"
)

var phone = dynamo.Arena{Width: 350, Height: 622}

const frameMs = 16.0

func newField() *sim.Field {
	f, err := sim.NewField(sim.DefaultConfig(), nil)
	Expect(err).NotTo(HaveOccurred())
	return f
}

func tickFor(f *sim.Field, ms float64) {
	for n := int(ms / frameMs); n > 0; n-- {
		f.Tick(frameMs)
	}
}

func pair() []dynamo.Body {
	return []dynamo.Body{
		{Pos: r2.Vec{X: 100, Y: 100}, Radius: 40, Magnitude: 10, Tag: dynamo.Gain},
		{Pos: r2.Vec{X: 250, Y: 400}, Radius: 40, Magnitude: -5, Tag: dynamo.Loss},
	}
}

var _ = Describe("Field", func() {
	var f *sim.Field

	BeforeEach(func() {
		f = newField()
	})

	Describe("NewField", func() {
		It("rejects an invalid config", func() {
			cfg := sim.DefaultConfig()
			cfg.FillFactor = 0
			_, err := sim.NewField(cfg, nil)
			Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
		})

		It("starts with an empty frame", func() {
			Expect(f.Frame().Bodies).To(BeEmpty())
			Expect(f.Focus()).To(Equal(-1))
			Expect(f.State()).To(Equal(interact.Idle))
		})
	})

	Describe("Load", func() {
		It("grows a single body from the center to its planned spot", func() {
			Expect(f.Load([]float64{42}, phone)).To(Succeed())

			frame := f.Frame()
			Expect(frame.Bodies).To(HaveLen(1))
			Expect(frame.Bodies[0].Radius).To(Equal(135.0))
			Expect(frame.Bodies[0].X).To(Equal(175.0))
			Expect(frame.Bodies[0].Y).To(Equal(311.0))
			Expect(frame.Bodies[0].Tag).To(Equal(dynamo.Gain))
			Expect(f.Settled()).To(BeFalse())

			tickFor(f, 120_000)

			Expect(f.Settled()).To(BeTrue())
			target := f.Placement().Positions[0]
			b := f.Frame().Bodies[0]
			Expect(b.X).To(Equal(target.X))
			Expect(b.Y).To(Equal(target.Y))
			Expect(b.X).To(Equal(135.0))
			Expect(b.Y).To(BeNumerically(">=", 135.0))
			Expect(b.Y).To(BeNumerically("<=", 622.0-2*135))
		})

		It("keeps bodies apart once settled", func() {
			mags := []float64{120, -40, 300, 15, -220, 80, 60, -10}
			Expect(f.Load(mags, phone)).To(Succeed())

			tickFor(f, 120_000)

			bodies := f.Bodies()
			for i := range bodies {
				for j := i + 1; j < len(bodies); j++ {
					d := r2.Norm(r2.Sub(bodies[i].Pos, bodies[j].Pos))
					Expect(d).To(BeNumerically(">=", bodies[i].Radius+bodies[j].Radius-1e-6))
				}
			}
		})

		It("refreshes magnitudes in place when nothing else changed", func() {
			Expect(f.Load([]float64{10, 20}, phone)).To(Succeed())
			before := f.Frame()

			Expect(f.Load([]float64{-10, 20}, phone)).To(Succeed())
			after := f.Frame()

			Expect(after.Bodies[0].Tag).To(Equal(dynamo.Loss))
			Expect(after.Bodies[0].Radius).To(Equal(before.Bodies[0].Radius))
			Expect(after.Bodies[0].X).To(Equal(before.Bodies[0].X))
			Expect(f.Bodies()[0].Magnitude).To(Equal(-10.0))
		})

		It("rejects a degenerate arena and keeps the last frame", func() {
			Expect(f.Load([]float64{1, 2, 3}, phone)).To(Succeed())

			err := f.Load([]float64{1, 2, 3}, dynamo.Arena{Width: 0, Height: 622})
			Expect(err).To(MatchError(dynamo.ErrDegenerateArena))
			Expect(f.Frame().Bodies).To(HaveLen(3))
			Expect(f.Arena()).To(Equal(phone))
		})

		It("accepts an empty body list", func() {
			Expect(f.Load(nil, phone)).To(Succeed())
			Expect(f.Tick(frameMs).Bodies).To(BeEmpty())
			Expect(f.Settled()).To(BeTrue())
		})
	})

	Describe("Restore", func() {
		It("rejects bodies with NaN positions", func() {
			bodies := pair()
			bodies[1].Pos.X = math.NaN()
			Expect(f.Restore(bodies, phone)).To(MatchError(dynamo.ErrInvalidState))
		})

		It("places bodies without animation", func() {
			Expect(f.Restore(pair(), phone)).To(Succeed())
			Expect(f.Settled()).To(BeTrue())
			frame := f.Tick(frameMs)
			Expect(frame.Bodies[1].X).To(Equal(250.0))
			Expect(frame.Time).To(Equal(frameMs))
		})
	})

	Describe("Touch", func() {
		var selected []dynamo.Selection

		BeforeEach(func() {
			selected = nil
			Expect(f.Restore(pair(), phone)).To(Succeed())
			f.OnSelect(func(s dynamo.Selection) { selected = append(selected, s) })
		})

		It("selects a tapped body", func() {
			f.Touch(dynamo.TouchEvent{Phase: dynamo.TouchStart, X: 105, Y: 100})
			Expect(f.State()).To(Equal(interact.Focused))

			sel, ok := f.Touch(dynamo.TouchEvent{Phase: dynamo.TouchEnd})
			Expect(ok).To(BeTrue())
			Expect(sel.Index).To(Equal(0))
			Expect(sel.Magnitude).To(Equal(10.0))
			Expect(sel.X).To(Equal(100.0))
			Expect(selected).To(ConsistOf(sel))
			Expect(f.State()).To(Equal(interact.Idle))
		})

		It("ignores a tap on empty space", func() {
			f.Touch(dynamo.TouchEvent{Phase: dynamo.TouchStart, X: 300, Y: 50})
			_, ok := f.Touch(dynamo.TouchEvent{Phase: dynamo.TouchEnd})
			Expect(ok).To(BeFalse())
			Expect(selected).To(BeEmpty())
		})

		It("drags the held body toward the pointer without selecting it", func() {
			f.Touch(dynamo.TouchEvent{Phase: dynamo.TouchStart, X: 100, Y: 100})
			f.Touch(dynamo.TouchEvent{Phase: dynamo.TouchMove, X: 200, Y: 300})
			Expect(f.State()).To(Equal(interact.Dragging))

			_, ok := f.Touch(dynamo.TouchEvent{Phase: dynamo.TouchEnd})
			Expect(ok).To(BeFalse())
			Expect(selected).To(BeEmpty())

			tickFor(f, 60_000)
			b := f.Frame().Bodies[0]
			Expect(b.X).To(BeNumerically("~", 200, 0.05))
			Expect(b.Y).To(BeNumerically("~", 300, 0.05))
		})

		It("keeps a dragged body inside the arena", func() {
			f.Touch(dynamo.TouchEvent{Phase: dynamo.TouchStart, X: 100, Y: 100})
			f.Touch(dynamo.TouchEvent{Phase: dynamo.TouchMove, X: -50, Y: 5})
			f.Touch(dynamo.TouchEvent{Phase: dynamo.TouchEnd})

			tickFor(f, 60_000)
			b := f.Frame().Bodies[0]
			Expect(b.X).To(BeNumerically("~", 40, 0.05))
			Expect(b.Y).To(BeNumerically("~", 40, 0.05))
		})

		It("holds the body's edge on the wall on every frame of a drag", func() {
			Expect(f.Restore([]dynamo.Body{{Pos: r2.Vec{X: 30, Y: 300}, Radius: 20, Magnitude: 1}}, phone)).To(Succeed())
			f.Touch(dynamo.TouchEvent{Phase: dynamo.TouchStart, X: 30, Y: 300})
			f.Touch(dynamo.TouchEvent{Phase: dynamo.TouchMove, X: 0, Y: 300})

			for i := 0; i < 120; i++ {
				b := f.Tick(frameMs).Bodies[0]
				Expect(b.X).To(BeNumerically(">=", 20), "frame %d", i)
				Expect(b.X).To(BeNumerically("<=", 330), "frame %d", i)
				Expect(b.Y).To(BeNumerically(">=", 20), "frame %d", i)
				Expect(b.Y).To(BeNumerically("<=", 602), "frame %d", i)
			}
			Expect(f.Frame().Bodies[0].X).To(Equal(20.0))
		})

		It("ignores non-finite coordinates", func() {
			f.Touch(dynamo.TouchEvent{Phase: dynamo.TouchStart, X: math.NaN(), Y: 100})
			Expect(f.State()).To(Equal(interact.Idle))
		})

		It("ignores a move with nothing held", func() {
			f.Touch(dynamo.TouchEvent{Phase: dynamo.TouchMove, X: 200, Y: 200})
			Expect(f.State()).To(Equal(interact.Idle))
			Expect(f.Settled()).To(BeTrue())
		})
	})

	Describe("gravity cascade", func() {
		BeforeEach(func() {
			bodies := []dynamo.Body{
				{Pos: r2.Vec{X: 100, Y: 100}, Radius: 30, Magnitude: 1},
				{Pos: r2.Vec{X: 140, Y: 100}, Vel: r2.Vec{X: -2}, Radius: 30, Magnitude: 1},
				{Pos: r2.Vec{X: 300, Y: 500}, Vel: r2.Vec{X: 1}, Radius: 20, Magnitude: 1},
			}
			Expect(f.Restore(bodies, phone)).To(Succeed())
			f.Touch(dynamo.TouchEvent{Phase: dynamo.TouchStart, X: 100, Y: 100})
		})

		It("waits for the dwell before pushing neighbors", func() {
			tickFor(f, 218*frameMs)
			Expect(f.Clock()).To(Equal(3488.0))
			Expect(f.LastCascade().Touched).To(BeEmpty())

			f.Tick(frameMs)
			c := f.LastCascade()
			Expect(c.Touched).To(Equal([]int{1}))
			Expect(c.Resolved).To(Equal(1))
			Expect(c.Depth).To(Equal(1))

			bodies := f.Bodies()
			Expect(bodies[0].Vel.X).To(BeNumerically("~", -2, 1e-9))
			Expect(bodies[1].Vel.X).To(BeNumerically("~", 0, 1e-9))
			Expect(bodies[0].Pos).To(Equal(r2.Vec{X: 100, Y: 100}))
			Expect(bodies[2].Pos).To(Equal(r2.Vec{X: 300, Y: 500}))
		})

		It("does not cascade while dragging", func() {
			f.Touch(dynamo.TouchEvent{Phase: dynamo.TouchMove, X: 101, Y: 100})
			Expect(f.State()).To(Equal(interact.Dragging))

			for i := 0; i < 250; i++ {
				f.Tick(frameMs)
				Expect(f.LastCascade().Touched).To(BeEmpty(), "frame %d", i)
			}
			Expect(f.Clock()).To(BeNumerically(">", 3500))
		})

		It("stops once the body is released", func() {
			tickFor(f, 4000)
			Expect(f.LastCascade().Touched).NotTo(BeEmpty())

			f.Touch(dynamo.TouchEvent{Phase: dynamo.TouchEnd})
			f.Tick(frameMs)
			Expect(f.LastCascade().Touched).To(BeEmpty())
		})
	})

	Describe("observers and metrics", func() {
		It("sees every frame", func() {
			obs := &frameCounter{}
			m := &tickMetric{}
			f.AddObserver(obs)
			f.AddMetric(m)
			Expect(f.Restore(pair(), phone)).To(Succeed())

			tickFor(f, 10*frameMs)
			Expect(obs.frames).To(Equal(10))
			Expect(obs.last.Time).To(Equal(160.0))
			Expect(m.Value()).To(Equal(10.0))
		})
	})
})

type frameCounter struct {
	frames int
	last   dynamo.Frame
}

func (c *frameCounter) OnFrame(f dynamo.Frame) {
	c.frames++
	c.last = f
}

type tickMetric struct {
	n    float64
	last float64
}

func (m *tickMetric) Name() string { return "ticks" }
func (m *tickMetric) Observe(bodies []dynamo.Body, t float64) {
	m.n++
	m.last = float64(len(bodies))
}
func (m *tickMetric) Value() float64 { return m.n }
func (m *tickMetric) Reset()         { m.n, m.last = 0, 0 }
func (m *tickMetric) Last() float64  { return m.last }
