package dynamo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// ColorTag is the opaque category a host maps to a color.
type ColorTag uint8

const (
	Loss ColorTag = iota
	Gain
)

// TagFor derives the tag from the sign of a magnitude. Zero counts as a loss.
func TagFor(magnitude float64) ColorTag {
	if magnitude > 0 {
		return Gain
	}
	return Loss
}

func (t ColorTag) String() string {
	if t == Gain {
		return "gain"
	}
	return "loss"
}

// Body is a simulated circle. Radius is fixed once the body is placed.
type Body struct {
	Index     int
	Pos       r2.Vec
	Vel       r2.Vec
	Radius    float64
	Magnitude float64
	Tag       ColorTag
}

func (b Body) IsValid() bool {
	for _, v := range [...]float64{b.Pos.X, b.Pos.Y, b.Vel.X, b.Vel.Y, b.Radius} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return b.Radius > 0
}

// View returns the render-facing part of the body.
func (b Body) View() BodyView {
	return BodyView{X: b.Pos.X, Y: b.Pos.Y, Radius: b.Radius, Tag: b.Tag}
}

// Arena is the fixed rectangle bodies are confined to.
type Arena struct {
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

func (a Arena) IsValid() bool {
	return a.Width > 0 && a.Height > 0 &&
		!math.IsInf(a.Width, 0) && !math.IsInf(a.Height, 0)
}

func (a Arena) Center() r2.Vec {
	return r2.Vec{X: a.Width / 2, Y: a.Height / 2}
}

// UsableHeight is the height bodies may occupy when only fraction k of the
// arena is free. k <= 0 means the full height.
func (a Arena) UsableHeight(k float64) float64 {
	if k <= 0 {
		return a.Height
	}
	return a.Height * k
}

// Contains reports whether a circle lies fully inside the arena.
func (a Arena) Contains(p r2.Vec, r float64) bool {
	return p.X >= r && p.X <= a.Width-r && p.Y >= r && p.Y <= a.Height-r
}

type BodyView struct {
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Radius float64  `json:"r"`
	Tag    ColorTag `json:"tag"`
}

// Frame is what the host renders after each tick.
type Frame struct {
	Time   float64    `json:"time"`
	Bodies []BodyView `json:"bodies"`
}

// Selection is fired when a body is tapped rather than dragged.
type Selection struct {
	Index     int     `json:"index"`
	Magnitude float64 `json:"magnitude"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Radius    float64 `json:"r"`
}

type TouchPhase uint8

const (
	TouchStart TouchPhase = iota
	TouchMove
	TouchEnd
)

func (p TouchPhase) String() string {
	switch p {
	case TouchStart:
		return "start"
	case TouchMove:
		return "move"
	case TouchEnd:
		return "end"
	default:
		return "unknown"
	}
}

// ParseTouchPhase accepts the names produced by String.
func ParseTouchPhase(s string) (TouchPhase, error) {
	switch s {
	case "start", "press":
		return TouchStart, nil
	case "move", "drag":
		return TouchMove, nil
	case "end", "release":
		return TouchEnd, nil
	}
	return 0, fmt.Errorf("unknown touch phase %q", s)
}

func (p TouchPhase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *TouchPhase) UnmarshalText(text []byte) error {
	v, err := ParseTouchPhase(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// TouchEvent is a pointer sample in arena-local coordinates.
type TouchEvent struct {
	Phase TouchPhase `yaml:"phase"`
	X     float64    `yaml:"x"`
	Y     float64    `yaml:"y"`
}

func (e TouchEvent) Point() r2.Vec {
	return r2.Vec{X: e.X, Y: e.Y}
}
