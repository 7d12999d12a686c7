package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/blochsim/internal/dynamo"
)

const (
	DefaultDetuning = 0.1
	DefaultT1       = 1e6
	DefaultT2       = 1e6
)

// Envelope yields the complex control amplitude Ω(t).
type Envelope interface {
	Evaluate(t float64) complex128
}

// EnvelopeFunc adapts a plain function to Envelope.
type EnvelopeFunc func(t float64) complex128

func (f EnvelopeFunc) Evaluate(t float64) complex128 { return f(t) }

type Bloch struct {
	Detuning float64
	T1       float64
	T2       float64
	Drive    Envelope
}

func NewBloch(drive Envelope) *Bloch {
	return &Bloch{
		Detuning: DefaultDetuning,
		T1:       DefaultT1,
		T2:       DefaultT2,
		Drive:    drive,
	}
}

func (b *Bloch) StateDim() int {
	return 3
}

// Derive evaluates the Bloch equations at (x, t). A nil Drive means no field.
func (b *Bloch) Derive(x dynamo.State, t float64) dynamo.State {
	u, v, w := x[0], x[1], x[2]

	var om complex128
	if b.Drive != nil {
		om = b.Drive.Evaluate(t)
	}
	re, im := real(om), imag(om)

	du := b.Detuning*v - im*w - u/b.T1
	dv := -b.Detuning*u - re*w - v/b.T2
	dw := re*v + im*u - (1.0+w)/b.T1
	return dynamo.State{du, dv, dw}
}

func (b *Bloch) GetParams() map[string]float64 {
	return map[string]float64{
		"detuning": b.Detuning,
		"t1":       b.T1,
		"t2":       b.T2,
	}
}

func (b *Bloch) SetParam(name string, value float64) error {
	switch name {
	case "detuning":
		b.Detuning = value
	case "t1":
		b.T1 = value
	case "t2":
		b.T2 = value
	default:
		return fmt.Errorf("%w: %s", dynamo.ErrUnknownParam, name)
	}
	return nil
}

// Vector is a Bloch vector (u, v, w). Ground state is (0, 0, -1).
type Vector struct {
	U float64 `json:"u"`
	V float64 `json:"v"`
	W float64 `json:"w"`
}

func Ground() Vector { return Vector{W: -1} }

func VectorFromState(s dynamo.State) Vector {
	if len(s) < 3 {
		return Vector{}
	}
	return Vector{U: s[0], V: s[1], W: s[2]}
}

func (r Vector) State() dynamo.State {
	return dynamo.State{r.U, r.V, r.W}
}

func (r Vector) Norm() float64 {
	return math.Sqrt(r.U*r.U + r.V*r.V + r.W*r.W)
}

// Transverse is the magnitude of the (u, v) component.
func (r Vector) Transverse() float64 {
	return math.Hypot(r.U, r.V)
}

// Excited is the upper-level population (1+w)/2.
func (r Vector) Excited() float64 {
	return (1 + r.W) / 2
}

// Angles returns the polar angle from +w and the azimuth in the u-v plane.
func (r Vector) Angles() (theta, phi float64) {
	n := r.Norm()
	if n == 0 {
		return 0, 0
	}
	return math.Acos(math.Max(-1, math.Min(1, r.W/n))), math.Atan2(r.V, r.U)
}

func (r Vector) String() string {
	return fmt.Sprintf("(%.6f, %.6f, %.6f)", r.U, r.V, r.W)
}
