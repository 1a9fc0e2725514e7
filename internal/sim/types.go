package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/bubblesim/internal/dynamo"
	"github.com/san-kum/bubblesim/internal/integrators"
	"github.com/san-kum/bubblesim/internal/layout"
	"github.com/san-kum/bubblesim/internal/physics"
)

// Config tunes the kernel. Times are in milliseconds, speeds in arena units
// per frame.
type Config struct {
	FillFactor      float64
	MaxAttempts     int
	DwellMs         float64
	GravityUsable   float64
	MaxCascadeDepth int
	InitialSpeed    float64
	SettleEps       float64
	Seed            int64
	PlacementSpring integrators.SpringConfig
	DragSpring      integrators.SpringConfig
}

func DefaultConfig() Config {
	return Config{
		FillFactor:      layout.DefaultFill,
		MaxAttempts:     layout.DefaultMaxAttempts,
		DwellMs:         3500,
		GravityUsable:   physics.GravityUsable,
		InitialSpeed:    5,
		SettleEps:       0.01,
		Seed:            1,
		PlacementSpring: integrators.PlacementSpring,
		DragSpring:      integrators.DragSpring,
	}
}

func validateConfig(cfg Config) error {
	if !(cfg.FillFactor > 0) || cfg.FillFactor > 1 {
		return fmt.Errorf("fill factor must be in (0, 1], got %v: %w", cfg.FillFactor, dynamo.ErrInvalidConfig)
	}
	if cfg.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be positive, got %d: %w", cfg.MaxAttempts, dynamo.ErrInvalidConfig)
	}
	if cfg.DwellMs < 0 || math.IsNaN(cfg.DwellMs) {
		return fmt.Errorf("dwell must be non-negative, got %v: %w", cfg.DwellMs, dynamo.ErrInvalidConfig)
	}
	if cfg.GravityUsable < 0 || cfg.GravityUsable > 1 {
		return fmt.Errorf("gravity usable height must be in [0, 1], got %v: %w", cfg.GravityUsable, dynamo.ErrInvalidConfig)
	}
	if cfg.MaxCascadeDepth < 0 {
		return fmt.Errorf("cascade depth must be non-negative, got %d: %w", cfg.MaxCascadeDepth, dynamo.ErrInvalidConfig)
	}
	if cfg.InitialSpeed < 0 || math.IsNaN(cfg.InitialSpeed) {
		return fmt.Errorf("initial speed must be non-negative, got %v: %w", cfg.InitialSpeed, dynamo.ErrInvalidConfig)
	}
	if !(cfg.SettleEps > 0) {
		return fmt.Errorf("settle epsilon must be positive, got %v: %w", cfg.SettleEps, dynamo.ErrInvalidConfig)
	}
	if !cfg.PlacementSpring.Valid() || !cfg.DragSpring.Valid() {
		return fmt.Errorf("spring configs need positive stiffness: %w", dynamo.ErrInvalidConfig)
	}
	return nil
}

type Metric interface {
	Name() string
	Observe(bodies []dynamo.Body, t float64)
	Value() float64
	Reset()
}

// Sampler is implemented by metrics that expose a per-frame reading in
// addition to their aggregate value. Run records those readings as series.
type Sampler interface {
	Last() float64
}

type Observer interface {
	OnFrame(f dynamo.Frame)
}

// ScriptEvent is a touch delivered At milliseconds after a run starts.
type ScriptEvent struct {
	At                float64 `yaml:"at"`
	dynamo.TouchEvent `yaml:",inline"`
}

type Script []ScriptEvent

// RunConfig sets the frame length and run length of a headless run, both in
// milliseconds.
type RunConfig struct {
	Dt       float64
	Duration float64
}

type Result struct {
	Final      dynamo.Frame
	Times      []float64
	Series     map[string][]float64
	Metrics    map[string]float64
	Selections []dynamo.Selection
	Cascades   int
	MaxReach   int
	StepsTaken int
}
