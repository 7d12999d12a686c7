package metrics

import (
	"github.com/san-kum/blochsim/internal/dynamo"
	"github.com/san-kum/blochsim/internal/physics"
)

// PulseArea integrates Re Ω(t) over the observed times with the trapezoid
// rule. A resonant pulse of area θ rotates the ground state by θ.
type PulseArea struct {
	name    string
	drive   physics.Envelope
	area    float64
	lastT   float64
	lastRe  float64
	samples int
}

func NewPulseArea(drive physics.Envelope) *PulseArea {
	return &PulseArea{name: "pulse_area", drive: drive}
}

func (m *PulseArea) Name() string { return m.name }

func (m *PulseArea) Observe(x dynamo.State, t float64) {
	re := real(m.drive.Evaluate(t))
	if m.samples > 0 {
		m.area += 0.5 * (re + m.lastRe) * (t - m.lastT)
	}
	m.lastT, m.lastRe = t, re
	m.samples++
}

func (m *PulseArea) Value() float64 { return m.area }

func (m *PulseArea) Reset() {
	m.area = 0
	m.lastT = 0
	m.lastRe = 0
	m.samples = 0
}
