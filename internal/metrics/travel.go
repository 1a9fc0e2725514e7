package metrics

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/bubblesim/internal/dynamo"
	"github.com/san-kum/bubblesim/internal/geom"
)

// Travel sums how far bodies moved between consecutive frames. Its per-frame
// reading drops to zero once the field has settled.
type Travel struct {
	name  string
	prev  []r2.Vec
	last  float64
	total float64
}

func NewTravel() *Travel {
	return &Travel{name: "travel"}
}

func (m *Travel) Name() string { return m.name }

func (m *Travel) Observe(bodies []dynamo.Body, t float64) {
	m.last = 0
	if len(m.prev) == len(bodies) {
		for i := range bodies {
			m.last += geom.Distance(m.prev[i], bodies[i].Pos)
		}
	}
	m.total += m.last

	m.prev = m.prev[:0]
	for i := range bodies {
		m.prev = append(m.prev, bodies[i].Pos)
	}
}

func (m *Travel) Value() float64 { return m.total }

func (m *Travel) Last() float64 { return m.last }

func (m *Travel) Reset() {
	m.prev = m.prev[:0]
	m.last = 0
	m.total = 0
}
