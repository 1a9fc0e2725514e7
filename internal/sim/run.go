package sim

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/bubblesim/internal/dynamo"
)

func validateRunConfig(cfg RunConfig) error {
	if !(cfg.Dt > 0) || math.IsInf(cfg.Dt, 0) {
		return fmt.Errorf("dt must be positive, got %v: %w", cfg.Dt, dynamo.ErrInvalidConfig)
	}
	if !(cfg.Duration > 0) || math.IsInf(cfg.Duration, 0) {
		return fmt.Errorf("duration must be positive, got %v: %w", cfg.Duration, dynamo.ErrInvalidConfig)
	}
	return nil
}

// Run drives the field headlessly for cfg.Duration, feeding script events
// before the first frame at or after their time. Events left over when the
// run ends are delivered before it returns, so a trailing release still
// completes its tap. On cancellation the partial result is returned with
// ctx.Err().
func (f *Field) Run(ctx context.Context, script Script, cfg RunConfig) (*Result, error) {
	if err := validateRunConfig(cfg); err != nil {
		return nil, err
	}

	events := make(Script, len(script))
	copy(events, script)
	sort.SliceStable(events, func(i, j int) bool { return events[i].At < events[j].At })

	steps := int(cfg.Duration / cfg.Dt)
	result := &Result{
		Times:   make([]float64, 0, steps),
		Series:  make(map[string][]float64),
		Metrics: make(map[string]float64),
	}

	for _, m := range f.metrics {
		m.Reset()
	}

	start := f.clock
	next := 0
	deliver := func(until float64) {
		for next < len(events) && events[next].At <= until {
			if sel, ok := f.Touch(events[next].TouchEvent); ok {
				result.Selections = append(result.Selections, sel)
			}
			next++
		}
	}

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			f.finish(result)
			return result, ctx.Err()
		default:
		}

		deliver(f.clock - start)
		f.Tick(cfg.Dt)
		result.StepsTaken++
		result.Times = append(result.Times, f.clock-start)

		if c := f.cascade; len(c.Touched) > 0 {
			result.Cascades++
			result.MaxReach = max(result.MaxReach, c.Depth)
		}
		for _, m := range f.metrics {
			if s, ok := m.(Sampler); ok {
				result.Series[m.Name()] = append(result.Series[m.Name()], s.Last())
			}
		}
	}

	deliver(math.Inf(1))
	f.finish(result)
	return result, nil
}

func (f *Field) finish(result *Result) {
	result.Final = f.Frame()
	for _, m := range f.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

// RunWithCallback ticks the field until cfg.Duration elapses or the callback
// returns false.
func (f *Field) RunWithCallback(ctx context.Context, cfg RunConfig, callback func(dynamo.Frame) bool) error {
	if err := validateRunConfig(cfg); err != nil {
		return err
	}

	end := f.clock + cfg.Duration
	for f.clock < end {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !callback(f.Tick(cfg.Dt)) {
			return nil
		}
	}
	return nil
}
