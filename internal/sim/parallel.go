package sim

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/san-kum/bubblesim/internal/dynamo"
	"github.com/san-kum/bubblesim/internal/logging"
)

// Ensemble replays one script against independent fields that differ only
// in their seed, one goroutine per field.
type Ensemble struct {
	cfg       Config
	numRuns   int
	seedStart int64
	metrics   func() []Metric
	log       *slog.Logger
}

func NewEnsemble(cfg Config, numRuns int, seedStart int64, logger *slog.Logger) *Ensemble {
	return &Ensemble{cfg: cfg, numRuns: numRuns, seedStart: seedStart, log: logging.OrNop(logger)}
}

// WithMetrics sets a factory for the metrics each run gets. Metrics carry
// state, so every field needs its own set.
func (e *Ensemble) WithMetrics(fn func() []Metric) *Ensemble {
	e.metrics = fn
	return e
}

func (e *Ensemble) Run(ctx context.Context, magnitudes []float64, arena dynamo.Arena, script Script, rc RunConfig) ([]*Result, error) {
	if e.numRuns < 1 {
		return nil, fmt.Errorf("ensemble needs at least one run, got %d: %w", e.numRuns, dynamo.ErrInvalidConfig)
	}

	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfgCopy := e.cfg
			cfgCopy.Seed = e.seedStart + int64(idx)

			field, err := NewField(cfgCopy, e.log.With("seed", cfgCopy.Seed))
			if err != nil {
				errs[idx] = err
				return
			}
			if e.metrics != nil {
				for _, m := range e.metrics() {
					field.AddMetric(m)
				}
			}
			if err := field.Load(magnitudes, arena); err != nil {
				errs[idx] = err
				return
			}

			results[idx], errs[idx] = field.Run(ctx, script, rc)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
