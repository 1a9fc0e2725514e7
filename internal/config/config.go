package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/bubblesim/internal/dynamo"
	"github.com/san-kum/bubblesim/internal/integrators"
	"github.com/san-kum/bubblesim/internal/layout"
	"github.com/san-kum/bubblesim/internal/physics"
	"github.com/san-kum/bubblesim/internal/sim"
)

const (
	DefaultWidth    = 350.0
	DefaultHeight   = 622.0
	DefaultBodies   = 100
	DefaultSource   = "uniform"
	DefaultMagMin   = -500.0
	DefaultMagMax   = 500.0
	DefaultDt       = 16.0
	DefaultDuration = 10_000.0
	DefaultDwellMs  = 3500.0
	DefaultSpeed    = 5.0
	DefaultSettle   = 0.01
)

type Config struct {
	Arena        dynamo.Arena    `yaml:"arena"`
	Bodies       int             `yaml:"bodies"`
	Seed         int64           `yaml:"seed"`
	Source       string          `yaml:"source"`
	Magnitudes   MagnitudeConfig `yaml:"magnitudes"`
	Layout       LayoutConfig    `yaml:"layout"`
	Gravity      GravityConfig   `yaml:"gravity"`
	Springs      SpringsConfig   `yaml:"springs"`
	Dt           float64         `yaml:"dt"`
	Duration     float64         `yaml:"duration"`
	InitialSpeed float64         `yaml:"initial_speed"`
	SettleEps    float64         `yaml:"settle_eps"`
	Script       sim.Script      `yaml:"script,omitempty"`
}

// MagnitudeConfig bounds generated magnitudes. Values, when set, is used as
// is and overrides Bodies and Source.
type MagnitudeConfig struct {
	Min    float64   `yaml:"min"`
	Max    float64   `yaml:"max"`
	Values []float64 `yaml:"values,omitempty"`
}

type LayoutConfig struct {
	FillFactor  float64 `yaml:"fill_factor"`
	MaxAttempts int     `yaml:"max_attempts"`
}

type GravityConfig struct {
	DwellMs  float64 `yaml:"dwell_ms"`
	Usable   float64 `yaml:"usable"`
	MaxDepth int     `yaml:"max_depth"`
}

type SpringsConfig struct {
	Placement integrators.SpringConfig `yaml:"placement"`
	Drag      integrators.SpringConfig `yaml:"drag"`
}

func DefaultConfig() *Config {
	return &Config{
		Arena:  dynamo.Arena{Width: DefaultWidth, Height: DefaultHeight},
		Bodies: DefaultBodies,
		Seed:   1,
		Source: DefaultSource,
		Magnitudes: MagnitudeConfig{
			Min: DefaultMagMin,
			Max: DefaultMagMax,
		},
		Layout: LayoutConfig{
			FillFactor:  layout.DefaultFill,
			MaxAttempts: layout.DefaultMaxAttempts,
		},
		Gravity: GravityConfig{
			DwellMs: DefaultDwellMs,
			Usable:  physics.GravityUsable,
		},
		Springs: SpringsConfig{
			Placement: integrators.PlacementSpring,
			Drag:      integrators.DragSpring,
		},
		Dt:           DefaultDt,
		Duration:     DefaultDuration,
		InitialSpeed: DefaultSpeed,
		SettleEps:    DefaultSettle,
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads path on top of base. Fields the file leaves out keep their
// base values. base is not modified.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := *base
	cfg.Script = append(sim.Script(nil), base.Script...)
	cfg.Magnitudes.Values = append([]float64(nil), base.Magnitudes.Values...)
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the fields the kernel does not check itself.
func (c *Config) Validate() error {
	if !c.Arena.IsValid() {
		return fmt.Errorf("arena %vx%v: %w", c.Arena.Width, c.Arena.Height, dynamo.ErrDegenerateArena)
	}
	if c.Bodies < 0 {
		return fmt.Errorf("bodies must be non-negative, got %d: %w", c.Bodies, dynamo.ErrInvalidConfig)
	}
	if c.Magnitudes.Min > c.Magnitudes.Max {
		return fmt.Errorf("magnitude range [%v, %v] is empty: %w", c.Magnitudes.Min, c.Magnitudes.Max, dynamo.ErrInvalidConfig)
	}
	return nil
}

// FieldConfig maps the file layout onto the kernel's tuning knobs.
func (c *Config) FieldConfig() sim.Config {
	return sim.Config{
		FillFactor:      c.Layout.FillFactor,
		MaxAttempts:     c.Layout.MaxAttempts,
		DwellMs:         c.Gravity.DwellMs,
		GravityUsable:   c.Gravity.Usable,
		MaxCascadeDepth: c.Gravity.MaxDepth,
		InitialSpeed:    c.InitialSpeed,
		SettleEps:       c.SettleEps,
		Seed:            c.Seed,
		PlacementSpring: c.Springs.Placement,
		DragSpring:      c.Springs.Drag,
	}
}

func (c *Config) RunConfig() sim.RunConfig {
	return sim.RunConfig{Dt: c.Dt, Duration: c.Duration}
}

// Count is the number of bodies the config describes.
func (c *Config) Count() int {
	if len(c.Magnitudes.Values) > 0 {
		return len(c.Magnitudes.Values)
	}
	return c.Bodies
}
