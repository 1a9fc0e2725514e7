// Package layout turns magnitudes into radii and finds a non-overlapping
// starting position for every body.
package layout

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/bubblesim/internal/dynamo"
	"github.com/san-kum/bubblesim/internal/geom"
	"github.com/san-kum/bubblesim/internal/logging"
)

// DefaultMaxAttempts caps rejection sampling per body.
const DefaultMaxAttempts = 5000

type options struct {
	maxAttempts int
	rng         *rand.Rand
	logger      *slog.Logger
}

type Option func(*options)

func WithMaxAttempts(n int) Option {
	return func(o *options) { o.maxAttempts = n }
}

func WithRand(rng *rand.Rand) Option {
	return func(o *options) { o.rng = rng }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Placement is the result of planning. Radii equal the input unless the grid
// fallback had to shrink them, in which case Scale < 1.
type Placement struct {
	Positions []r2.Vec
	Radii     []float64
	Fallback  bool
	Scale     float64
	Attempts  int
}

// Plan places circles in input order, sampling each one until it clears every
// circle placed before it. If any body exhausts its attempts the whole set is
// laid out on a grid instead.
func Plan(radii []float64, arena dynamo.Arena, opts ...Option) (*Placement, error) {
	o := options{maxAttempts: DefaultMaxAttempts}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(1))
	}
	o.logger = logging.OrNop(o.logger)
	if o.maxAttempts < 1 {
		return nil, fmt.Errorf("max attempts must be positive, got %d: %w", o.maxAttempts, dynamo.ErrInvalidConfig)
	}
	if !arena.IsValid() {
		return nil, fmt.Errorf("plan %vx%v: %w", arena.Width, arena.Height, dynamo.ErrDegenerateArena)
	}
	for i, r := range radii {
		if !(r > 0) || math.IsInf(r, 0) {
			return nil, fmt.Errorf("radius %d is %v: %w", i, r, dynamo.ErrInvalidConfig)
		}
	}

	p := &Placement{
		Positions: make([]r2.Vec, 0, len(radii)),
		Radii:     append([]float64(nil), radii...),
		Scale:     1,
	}

	for i, r := range radii {
		pos, attempts, err := place(r, radii[:i], p.Positions, arena, &o)
		p.Attempts += attempts
		if err != nil {
			o.logger.Warn("layout exhausted, using grid fallback",
				"error", &dynamo.LayoutError{Body: i, Attempts: attempts, Wrapped: err},
				"bodies", len(radii))
			return Grid(radii, arena), nil
		}
		p.Positions = append(p.Positions, pos)
	}

	o.logger.Debug("layout planned", "bodies", len(radii), "attempts", p.Attempts)
	return p, nil
}

func place(r float64, placedRadii []float64, placed []r2.Vec, arena dynamo.Arena, o *options) (r2.Vec, int, error) {
	if 2*r > arena.Width || 2*r > arena.Height {
		return r2.Vec{}, 0, dynamo.ErrLayoutExhausted
	}

	for attempt := 1; attempt <= o.maxAttempts; attempt++ {
		c := r2.Vec{
			X: sample(o.rng, r, arena.Width),
			Y: sample(o.rng, r, arena.Height),
		}
		if isClear(c, r, placedRadii, placed) {
			return c, attempt, nil
		}
	}
	return r2.Vec{}, o.maxAttempts, dynamo.ErrLayoutExhausted
}

// sample draws from [lo, extent-2*lo], keeping samples off the far edge.
func sample(rng *rand.Rand, lo, extent float64) float64 {
	span := extent - lo*3
	if span <= 0 {
		return lo
	}
	return lo + rng.Float64()*span
}

func isClear(c r2.Vec, r float64, radii []float64, placed []r2.Vec) bool {
	for j, q := range placed {
		if geom.Distance(c, q) < r+radii[j] {
			return false
		}
	}
	return true
}

// Grid lays circles out row by row in square cells sized for the largest
// radius, centering the grid in the arena. When the cells do not fit, every
// radius is shrunk by the same factor until they do.
func Grid(radii []float64, arena dynamo.Arena) *Placement {
	n := len(radii)
	p := &Placement{
		Positions: make([]r2.Vec, n),
		Radii:     make([]float64, n),
		Fallback:  true,
		Scale:     1,
	}
	if n == 0 {
		return p
	}

	maxR := 0.0
	for _, r := range radii {
		maxR = math.Max(maxR, r)
	}

	cell := 2 * maxR
	cols, rows := gridDims(arena, cell)
	if cols*rows < n {
		// Largest square cell that still gives n slots, then step down
		// until the floor of each axis agrees.
		cell = math.Sqrt(arena.Width * arena.Height / float64(n))
		for {
			cols, rows = gridDims(arena, cell)
			if cols*rows >= n {
				break
			}
			cell *= 0.99
		}
		p.Scale = cell / (2 * maxR)
	}

	offX := (arena.Width - float64(cols)*cell) / 2
	offY := (arena.Height - float64(rows)*cell) / 2
	for i, r := range radii {
		col, row := i%cols, i/cols
		p.Positions[i] = r2.Vec{
			X: offX + cell*(float64(col)+0.5),
			Y: offY + cell*(float64(row)+0.5),
		}
		p.Radii[i] = r * p.Scale
	}
	return p
}

func gridDims(arena dynamo.Arena, cell float64) (int, int) {
	return int(arena.Width / cell), int(arena.Height / cell)
}
