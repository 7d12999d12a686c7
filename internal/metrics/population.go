package metrics

import (
	"math"

	"github.com/san-kum/blochsim/internal/dynamo"
)

// Inversion reports the excited-state population (1+w)/2 of the last
// observed state.
type Inversion struct {
	name    string
	last    float64
	samples int
}

func NewInversion() *Inversion {
	return &Inversion{name: "inversion"}
}

func (m *Inversion) Name() string { return m.name }

func (m *Inversion) Observe(x dynamo.State, t float64) {
	if len(x) < 3 {
		return
	}
	m.last = (1 + x[2]) / 2
	m.samples++
}

func (m *Inversion) Value() float64 { return m.last }

func (m *Inversion) Reset() {
	m.last = 0
	m.samples = 0
}

// Transverse tracks the largest coherence √(u²+v²) seen.
type Transverse struct {
	name string
	max  float64
}

func NewTransverse() *Transverse {
	return &Transverse{name: "transverse"}
}

func (m *Transverse) Name() string { return m.name }

func (m *Transverse) Observe(x dynamo.State, t float64) {
	if len(x) < 2 {
		return
	}
	m.max = math.Max(m.max, math.Hypot(x[0], x[1]))
}

func (m *Transverse) Value() float64 { return m.max }
func (m *Transverse) Reset()         { m.max = 0 }
