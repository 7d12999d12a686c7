package metrics

import (
	"math"

	"github.com/san-kum/blochsim/internal/dynamo"
)

// NormDrift is the largest deviation of |R| from its initial length. With
// relaxation disabled the Bloch vector length is conserved, so this measures
// integrator error.
type NormDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewNormDrift() *NormDrift {
	return &NormDrift{name: "norm_drift"}
}

func (m *NormDrift) Name() string { return m.name }

func (m *NormDrift) Observe(x dynamo.State, t float64) {
	n := x.Norm()
	if m.samples == 0 {
		m.initial = n
	}
	m.samples++
	m.maxDrift = math.Max(m.maxDrift, math.Abs(n-m.initial))
}

func (m *NormDrift) Value() float64 { return m.maxDrift }

func (m *NormDrift) Reset() {
	m.initial = 0
	m.maxDrift = 0
	m.samples = 0
}
