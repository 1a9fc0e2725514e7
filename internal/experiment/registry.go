package experiment

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/san-kum/bubblesim/internal/dynamo"
	"github.com/san-kum/bubblesim/internal/metrics"
	"github.com/san-kum/bubblesim/internal/sim"
)

// Source generates n magnitudes within [lo, hi].
type Source func(rng *rand.Rand, n int, lo, hi float64) []float64

type Registry struct {
	sources map[string]Source
}

func NewRegistry() *Registry {
	r := &Registry{
		sources: make(map[string]Source),
	}

	r.sources["uniform"] = func(rng *rand.Rand, n int, lo, hi float64) []float64 {
		out := make([]float64, n)
		for i := range out {
			out[i] = lo + rng.Float64()*(hi-lo)
		}
		return out
	}
	r.sources["ramp"] = func(_ *rand.Rand, n int, lo, hi float64) []float64 {
		out := make([]float64, n)
		for i := range out {
			if n == 1 {
				out[i] = hi
				continue
			}
			out[i] = lo + (hi-lo)*float64(i)/float64(n-1)
		}
		return out
	}
	r.sources["constant"] = func(_ *rand.Rand, n int, _, hi float64) []float64 {
		out := make([]float64, n)
		for i := range out {
			out[i] = hi
		}
		return out
	}
	r.sources["zero"] = func(_ *rand.Rand, n int, _, _ float64) []float64 {
		return make([]float64, n)
	}

	return r
}

func (r *Registry) GetSource(name string) (Source, error) {
	fn, ok := r.sources[name]
	if !ok {
		return nil, fmt.Errorf("unknown magnitude source: %s", name)
	}
	return fn, nil
}

func (r *Registry) ListSources() []string {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics(arena dynamo.Arena) []sim.Metric {
	return []sim.Metric{
		metrics.NewEnergy(),
		metrics.NewEnergyDrift(),
		metrics.NewTravel(),
		metrics.NewOverlap(),
		metrics.NewContainment(arena, 0.5),
	}
}
