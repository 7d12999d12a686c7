package pulse

import (
	"math"
	"math/cmplx"
)

// fwhmToSigma converts a full width at half maximum to a standard deviation.
const fwhmToSigma = 2.335

const (
	DefaultCenter    = 1.0
	DefaultAmplitude = math.Pi / 2
	DefaultWidth     = 0.01
)

// Params holds the pulse parameters. Width must be non-zero; nothing here
// checks it.
type Params struct {
	Center    float64 `yaml:"center" json:"center"`
	Amplitude float64 `yaml:"amplitude" json:"amplitude"`
	Width     float64 `yaml:"width" json:"width"`
	ChirpRate float64 `yaml:"chirp_rate" json:"chirp_rate"`
}

func DefaultParams() Params {
	return Params{
		Center:    DefaultCenter,
		Amplitude: DefaultAmplitude,
		Width:     DefaultWidth,
	}
}

// Sigma is the Gaussian standard deviation implied by Width.
func (p Params) Sigma() float64 {
	return p.Width / fwhmToSigma
}

// SquareEnvelope returns Amplitude/Width inside [Center-Width/2, Center+Width/2]
// (both ends inclusive) and 0 elsewhere.
func SquareEnvelope(t float64, p Params) float64 {
	if t <= p.Center+p.Width/2 && t >= p.Center-p.Width/2 {
		return p.Amplitude / p.Width
	}
	return 0
}

// GaussianEnvelope is normalised so its integral over all t equals Amplitude.
func GaussianEnvelope(t float64, p Params) float64 {
	sigma := p.Sigma()
	norm := p.Amplitude / (sigma * math.Sqrt(2*math.Pi))
	d := t - p.Center
	return norm * math.Exp(-d*d/(2*sigma*sigma))
}

// ChirpedEnvelope applies the phase exp(-i*(ChirpRate/2)*(t-Center)^2) to GaussianEnvelope.
func ChirpedEnvelope(t float64, p Params) complex128 {
	d := t - p.Center
	phase := cmplx.Exp(complex(0, -(p.ChirpRate/2)*d*d))
	return complex(GaussianEnvelope(t, p), 0) * phase
}

// InstantaneousFrequency is the derivative of the chirp phase at t.
func InstantaneousFrequency(t float64, p Params) float64 {
	return -p.ChirpRate * (t - p.Center)
}
