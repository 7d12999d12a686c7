package pulse

import (
	"fmt"
	"strings"

	"github.com/san-kum/blochsim/internal/dynamo"
)

// Kind selects which envelope shape is evaluated.
type Kind int

const (
	Square Kind = iota
	Gaussian
	Chirped
)

// Kinds lists every shape in key order.
var Kinds = []Kind{Square, Gaussian, Chirped}

func (k Kind) String() string {
	switch k {
	case Square:
		return "square"
	case Gaussian:
		return "gaussian"
	case Chirped:
		return "chirped"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind accepts the shape name or its single-letter key.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "square", "s":
		return Square, nil
	case "gaussian", "gauss", "g":
		return Gaussian, nil
	case "chirped", "chirp", "c":
		return Chirped, nil
	}
	return Gaussian, fmt.Errorf("%w: %q", dynamo.ErrUnknownEnvelope, name)
}

// Valid reports whether k names one of the shapes.
func (k Kind) Valid() bool { return k >= Square && k <= Chirped }

// Evaluate dispatches to the shape selected by kind. Real shapes are lifted
// to complex with a zero imaginary part. An unknown kind drives nothing.
func Evaluate(kind Kind, t float64, p Params) complex128 {
	switch kind {
	case Square:
		return complex(SquareEnvelope(t, p), 0)
	case Gaussian:
		return complex(GaussianEnvelope(t, p), 0)
	case Chirped:
		return ChirpedEnvelope(t, p)
	default:
		return 0
	}
}

// Selector binds the current Kind to a parameter struct owned elsewhere.
// Both are read on every Evaluate call.
type Selector struct {
	kind   Kind
	params *Params
}

func NewSelector(kind Kind, params *Params) *Selector {
	return &Selector{kind: kind, params: params}
}

func (s *Selector) Select(kind Kind) { s.kind = kind }
func (s *Selector) Kind() Kind       { return s.kind }

func (s *Selector) Evaluate(t float64) complex128 {
	return Evaluate(s.kind, t, *s.params)
}
