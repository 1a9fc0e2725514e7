package layout

import (
	"math"

	"github.com/san-kum/bubblesim/internal/dynamo"
	"github.com/san-kum/bubblesim/internal/geom"
)

const (
	// DefaultFill is the share of the width-squared area the average body covers.
	DefaultFill = 0.6

	// MinRadius guards degenerate inputs from producing empty bodies.
	MinRadius = 1.0
)

// BaseRadius is the radius of an average body: sqrt(W*W*fill/n)/2.
func BaseRadius(arena dynamo.Arena, n int, fill float64) float64 {
	if n <= 0 || !arena.IsValid() {
		return MinRadius
	}
	if fill <= 0 {
		fill = DefaultFill
	}
	base := math.Sqrt(arena.Width*arena.Width*fill/float64(n)) / 2
	if math.IsNaN(base) || base < MinRadius {
		return MinRadius
	}
	return base
}

// Radii scales each magnitude against the mean absolute magnitude and clamps
// the result to [base/2, base*2] before flooring. When every magnitude is zero
// all bodies get the base radius.
func Radii(magnitudes []float64, arena dynamo.Arena, fill float64) []float64 {
	n := len(magnitudes)
	radii := make([]float64, n)
	if n == 0 {
		return radii
	}

	base := BaseRadius(arena, n, fill)

	total := 0.0
	for _, m := range magnitudes {
		if !math.IsNaN(m) && !math.IsInf(m, 0) {
			total += math.Abs(m)
		}
	}
	avg := total / float64(n)

	for i, m := range magnitudes {
		scaled := base
		if avg > 0 && !math.IsNaN(m) && !math.IsInf(m, 0) {
			scaled = base * math.Abs(m) / avg
		}
		r := math.Floor(geom.Clamp(scaled, base/2, base*2))
		if r < MinRadius {
			r = MinRadius
		}
		radii[i] = r
	}
	return radii
}
