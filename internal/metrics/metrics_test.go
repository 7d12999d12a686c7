package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/blochsim/internal/dynamo"
	"github.com/san-kum/blochsim/internal/pulse"
)

func TestInversion(t *testing.T) {
	m := NewInversion()

	tests := []struct {
		x    dynamo.State
		want float64
	}{
		{dynamo.State{0, 0, -1}, 0},
		{dynamo.State{0, 0, 1}, 1},
		{dynamo.State{1, 0, 0}, 0.5},
	}
	for _, tt := range tests {
		m.Observe(tt.x, 0)
		if got := m.Value(); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("inversion of %v: expected %f, got %f", tt.x, tt.want, got)
		}
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestNormDrift(t *testing.T) {
	m := NewNormDrift()
	m.Observe(dynamo.State{0, 0, -1}, 0)
	m.Observe(dynamo.State{0.6, 0, -0.8}, 0.1)
	if m.Value() > 1e-12 {
		t.Errorf("unit vectors should not drift, got %g", m.Value())
	}

	m.Observe(dynamo.State{0, 0, -0.9}, 0.2)
	m.Observe(dynamo.State{0, 0, -0.95}, 0.3)
	if math.Abs(m.Value()-0.1) > 1e-12 {
		t.Errorf("expected max drift 0.1, got %g", m.Value())
	}
}

func TestTransverse(t *testing.T) {
	m := NewTransverse()
	m.Observe(dynamo.State{0.3, 0.4, 0}, 0)
	m.Observe(dynamo.State{0.1, 0, 0}, 1)
	if math.Abs(m.Value()-0.5) > 1e-12 {
		t.Errorf("expected 0.5, got %f", m.Value())
	}
}

func TestPulseArea(t *testing.T) {
	for _, amp := range []float64{math.Pi / 2, math.Pi} {
		p := pulse.DefaultParams()
		p.Amplitude = amp
		m := NewPulseArea(pulse.NewSelector(pulse.Gaussian, &p))

		dt := 0.001
		for i := 0; i <= 2000; i++ {
			m.Observe(dynamo.State{0, 0, -1}, float64(i)*dt)
		}
		if math.Abs(m.Value()-amp) > 1e-6 {
			t.Errorf("expected area %f, got %f", amp, m.Value())
		}
	}
}
