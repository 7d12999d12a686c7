package sim

import (
	"fmt"
	"strings"

	"github.com/san-kum/blochsim/internal/pulse"
)

const (
	WidthStep     = 0.01
	AmplitudeStep = 0.01
	// RecenterLead places the recentred pulse this many widths ahead of now.
	RecenterLead = 1.5
)

type EditKind int

const (
	RecenterPulse EditKind = iota
	WidenPulse
	NarrowPulse
	RaiseAmplitude
	LowerAmplitude
	SelectEnvelope
)

var editNames = map[EditKind]string{
	RecenterPulse:  "recenter",
	WidenPulse:     "widen",
	NarrowPulse:    "narrow",
	RaiseAmplitude: "raise",
	LowerAmplitude: "lower",
	SelectEnvelope: "select",
}

func (k EditKind) String() string {
	if name, ok := editNames[k]; ok {
		return name
	}
	return fmt.Sprintf("EditKind(%d)", int(k))
}

// Edit is a discrete parameter change requested between ticks. Envelope is
// only meaningful for SelectEnvelope.
type Edit struct {
	Kind     EditKind
	Envelope pulse.Kind
}

func Recenter() Edit              { return Edit{Kind: RecenterPulse} }
func Widen() Edit                 { return Edit{Kind: WidenPulse} }
func Narrow() Edit                { return Edit{Kind: NarrowPulse} }
func Raise() Edit                 { return Edit{Kind: RaiseAmplitude} }
func Lower() Edit                 { return Edit{Kind: LowerAmplitude} }
func Select(kind pulse.Kind) Edit { return Edit{Kind: SelectEnvelope, Envelope: kind} }

func (e Edit) String() string {
	if e.Kind == SelectEnvelope {
		return "select:" + e.Envelope.String()
	}
	return e.Kind.String()
}

// ParseEdit accepts the names produced by Edit.String. A bare envelope name
// ("chirped") is read as a selection.
func ParseEdit(s string) (Edit, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if rest, ok := strings.CutPrefix(name, "select:"); ok {
		kind, err := pulse.ParseKind(rest)
		if err != nil {
			return Edit{}, err
		}
		return Select(kind), nil
	}
	for kind, n := range editNames {
		if kind != SelectEnvelope && n == name {
			return Edit{Kind: kind}, nil
		}
	}
	if kind, err := pulse.ParseKind(name); err == nil {
		return Select(kind), nil
	}
	return Edit{}, fmt.Errorf("unknown edit: %q", s)
}

func (e Edit) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

func (e *Edit) UnmarshalText(text []byte) error {
	parsed, err := ParseEdit(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}
