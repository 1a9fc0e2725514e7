package sim_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/bubblesim/internal/dynamo"
	"github.com/san-kum/bubblesim/internal/sim"
)

func press(at, x, y float64) sim.ScriptEvent {
	return sim.ScriptEvent{At: at, TouchEvent: dynamo.TouchEvent{Phase: dynamo.TouchStart, X: x, Y: y}}
}

func release(at float64) sim.ScriptEvent {
	return sim.ScriptEvent{At: at, TouchEvent: dynamo.TouchEvent{Phase: dynamo.TouchEnd}}
}

var _ = Describe("Run", func() {
	var (
		f  *sim.Field
		rc sim.RunConfig
	)

	BeforeEach(func() {
		f = newField()
		Expect(f.Restore(pair(), phone)).To(Succeed())
		rc = sim.RunConfig{Dt: frameMs, Duration: 1000}
	})

	It("rejects a bad run config", func() {
		for _, bad := range []sim.RunConfig{
			{Dt: 0, Duration: 1000},
			{Dt: -1, Duration: 1000},
			{Dt: 16, Duration: 0},
		} {
			_, err := f.Run(context.Background(), nil, bad)
			Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
		}
	})

	It("records one sample per frame", func() {
		m := &tickMetric{}
		f.AddMetric(m)

		result, err := f.Run(context.Background(), nil, rc)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.StepsTaken).To(Equal(62))
		Expect(result.Times).To(HaveLen(62))
		Expect(result.Times[0]).To(Equal(frameMs))
		Expect(result.Series["ticks"]).To(HaveLen(62))
		Expect(result.Series["ticks"][0]).To(Equal(2.0))
		Expect(result.Metrics["ticks"]).To(Equal(62.0))
		Expect(result.Final.Bodies).To(HaveLen(2))
	})

	It("plays a scripted tap out of order", func() {
		script := sim.Script{release(100), press(0, 250, 400)}

		result, err := f.Run(context.Background(), script, rc)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Selections).To(HaveLen(1))
		Expect(result.Selections[0].Index).To(Equal(1))
		Expect(result.Selections[0].Magnitude).To(Equal(-5.0))
	})

	It("delivers events scheduled past the end", func() {
		script := sim.Script{press(0, 100, 100), release(5000)}

		result, err := f.Run(context.Background(), script, rc)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Selections).To(HaveLen(1))
		Expect(result.Cascades).To(BeZero())
	})

	It("counts cascades while a body is held", func() {
		bodies := []dynamo.Body{
			{Pos: r2.Vec{X: 100, Y: 100}, Radius: 30, Magnitude: 1},
			{Pos: r2.Vec{X: 140, Y: 100}, Radius: 30, Magnitude: 1},
		}
		Expect(f.Restore(bodies, phone)).To(Succeed())

		result, err := f.Run(context.Background(), sim.Script{press(0, 100, 100)},
			sim.RunConfig{Dt: frameMs, Duration: 4000})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Cascades).To(Equal(32))
		Expect(result.MaxReach).To(Equal(1))
	})

	It("stops on cancellation with a partial result", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result, err := f.Run(ctx, nil, rc)
		Expect(err).To(MatchError(context.Canceled))
		Expect(result).NotTo(BeNil())
		Expect(result.StepsTaken).To(BeZero())
		Expect(result.Final.Bodies).To(HaveLen(2))
	})

	Describe("RunWithCallback", func() {
		It("stops when the callback says so", func() {
			frames := 0
			err := f.RunWithCallback(context.Background(), rc, func(dynamo.Frame) bool {
				frames++
				return frames < 5
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(frames).To(Equal(5))
			Expect(f.Clock()).To(Equal(5 * frameMs))
		})

		It("runs to the end of the duration", func() {
			frames := 0
			err := f.RunWithCallback(context.Background(), rc, func(dynamo.Frame) bool {
				frames++
				return true
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(frames).To(Equal(63))
		})
	})
})

var _ = Describe("Ensemble", func() {
	It("runs one field per seed", func() {
		mags := []float64{10, -20, 30, 5}
		e := sim.NewEnsemble(sim.DefaultConfig(), 3, 7, nil).
			WithMetrics(func() []sim.Metric { return []sim.Metric{&tickMetric{}} })

		results, err := e.Run(context.Background(), mags, phone, nil, sim.RunConfig{Dt: frameMs, Duration: 160})
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(3))
		for _, r := range results {
			Expect(r.StepsTaken).To(Equal(10))
			Expect(r.Final.Bodies).To(HaveLen(4))
			Expect(r.Metrics["ticks"]).To(Equal(10.0))
		}
	})

	It("fails on a degenerate arena", func() {
		e := sim.NewEnsemble(sim.DefaultConfig(), 2, 1, nil)
		_, err := e.Run(context.Background(), []float64{1}, dynamo.Arena{}, nil, sim.RunConfig{Dt: 16, Duration: 16})
		Expect(err).To(MatchError(dynamo.ErrDegenerateArena))
	})

	It("needs at least one run", func() {
		e := sim.NewEnsemble(sim.DefaultConfig(), 0, 1, nil)
		_, err := e.Run(context.Background(), nil, phone, nil, sim.RunConfig{Dt: 16, Duration: 16})
		Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
	})
})
