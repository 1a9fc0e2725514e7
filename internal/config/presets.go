package config

import (
	"sort"

	"github.com/san-kum/bubblesim/internal/dynamo"
	"github.com/san-kum/bubblesim/internal/sim"
)

func preset(mutate func(c *Config)) *Config {
	c := DefaultConfig()
	mutate(c)
	return c
}

var Presets = map[string]*Config{
	"phone": DefaultConfig(),
	"single": preset(func(c *Config) {
		c.Bodies = 1
		c.Duration = 5_000
	}),
	"sparse": preset(func(c *Config) {
		c.Bodies = 12
		c.Layout.FillFactor = 0.4
	}),
	"dense": preset(func(c *Config) {
		c.Bodies = 250
		c.Layout.FillFactor = 0.9
		c.Layout.MaxAttempts = 500
	}),
	"tablet": preset(func(c *Config) {
		c.Arena = dynamo.Arena{Width: 820, Height: 1180}
		c.Bodies = 160
	}),
	"gains": preset(func(c *Config) {
		c.Source = "uniform"
		c.Magnitudes.Min = 1
		c.Magnitudes.Max = 500
	}),
	"ramp": preset(func(c *Config) {
		c.Source = "ramp"
		c.Bodies = 30
	}),
	"hold": preset(func(c *Config) {
		c.Bodies = 40
		c.Duration = 6_000
		c.Script = sim.Script{
			{At: 2_000, TouchEvent: dynamo.TouchEvent{Phase: dynamo.TouchStart, X: 175, Y: 311}},
			{At: 5_800, TouchEvent: dynamo.TouchEvent{Phase: dynamo.TouchEnd}},
		}
	}),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	c.Script = append(sim.Script(nil), cfg.Script...)
	c.Magnitudes.Values = append([]float64(nil), cfg.Magnitudes.Values...)
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
