package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/san-kum/bubblesim/internal/config"
	"github.com/san-kum/bubblesim/internal/logging"
	"github.com/san-kum/bubblesim/internal/sim"
)

// Experiment is one headless session built from a config file.
type Experiment struct {
	cfg      *config.Config
	registry *Registry
	field    *sim.Field
	log      *slog.Logger
}

func New(cfg *config.Config, logger *slog.Logger) *Experiment {
	return &Experiment{
		cfg:      cfg,
		registry: NewRegistry(),
		log:      logging.OrNop(logger),
	}
}

// Magnitudes returns the configured values, or generates them from the
// configured source. Generation is seeded separately from the field, so the
// same seed always yields the same magnitudes.
func (e *Experiment) Magnitudes() ([]float64, error) {
	if len(e.cfg.Magnitudes.Values) > 0 {
		return append([]float64(nil), e.cfg.Magnitudes.Values...), nil
	}
	src, err := e.registry.GetSource(e.cfg.Source)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(e.cfg.Seed))
	return src(rng, e.cfg.Bodies, e.cfg.Magnitudes.Min, e.cfg.Magnitudes.Max), nil
}

// Setup builds and loads the field. Nil metrics means the defaults.
func (e *Experiment) Setup(metrics []sim.Metric) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	mags, err := e.Magnitudes()
	if err != nil {
		return err
	}

	field, err := sim.NewField(e.cfg.FieldConfig(), e.log)
	if err != nil {
		return err
	}
	if metrics == nil {
		metrics = e.registry.DefaultMetrics(e.cfg.Arena)
	}
	for _, m := range metrics {
		field.AddMetric(m)
	}
	if err := field.Load(mags, e.cfg.Arena); err != nil {
		return err
	}

	e.field = field
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.field == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.field.Run(ctx, e.cfg.Script, e.cfg.RunConfig())
}

// RunEnsemble replays the script on runs fields seeded from the config seed
// upward. Every field gets the same magnitudes.
func (e *Experiment) RunEnsemble(ctx context.Context, runs int) ([]*sim.Result, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	mags, err := e.Magnitudes()
	if err != nil {
		return nil, err
	}

	ens := sim.NewEnsemble(e.cfg.FieldConfig(), runs, e.cfg.Seed, e.log).
		WithMetrics(func() []sim.Metric { return e.registry.DefaultMetrics(e.cfg.Arena) })
	return ens.Run(ctx, mags, e.cfg.Arena, e.cfg.Script, e.cfg.RunConfig())
}

// Field returns the loaded field for attaching observers.
func (e *Experiment) Field() *sim.Field {
	return e.field
}
