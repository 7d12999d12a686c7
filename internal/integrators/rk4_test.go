package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/blochsim/internal/dynamo"
)

// rotation is f(R) = (-y, x, 0): rigid rotation about z with unit rate.
type rotation struct{}

func (rotation) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{-x[1], x[0], 0}
}
func (rotation) StateDim() int { return 3 }

type zeroField struct{}

func (zeroField) Derive(x dynamo.State, t float64) dynamo.State { return make(dynamo.State, len(x)) }
func (zeroField) StateDim() int                                 { return 3 }

// stageRecorder logs the times at which the field is evaluated.
type stageRecorder struct{ times []float64 }

func (s *stageRecorder) Derive(x dynamo.State, t float64) dynamo.State {
	s.times = append(s.times, t)
	return dynamo.State{1, 1, 1}
}
func (s *stageRecorder) StateDim() int { return 3 }

func TestRK4ZeroFieldIsIdentity(t *testing.T) {
	integ := NewRK4()
	cases := []struct {
		x     dynamo.State
		t, dt float64
	}{
		{dynamo.State{0, 0, -1}, 0, 0.001},
		{dynamo.State{0.3, -0.4, 0.5}, 12.5, 0.25},
		{dynamo.State{1e6, -1e-9, 3}, -4, 7},
	}
	for _, c := range cases {
		got := integ.Step(zeroField{}, c.x, c.t, c.dt)
		for i := range c.x {
			if got[i] != c.x[i] {
				t.Errorf("step(%v) = %v, want unchanged", c.x, got)
				break
			}
		}
	}
}

func TestRK4Accuracy(t *testing.T) {
	integ := NewRK4()

	x := dynamo.State{1.0, 0.0, 0.5}
	dt := 0.01
	steps := 100

	for i := 0; i < steps; i++ {
		x = integ.Step(rotation{}, x, float64(i)*dt, dt)
	}

	T := float64(steps) * dt
	if math.Abs(x[0]-math.Cos(T)) > 1e-8 {
		t.Errorf("x error too large: got %.10f, expected %.10f", x[0], math.Cos(T))
	}
	if math.Abs(x[1]-math.Sin(T)) > 1e-8 {
		t.Errorf("y error too large: got %.10f, expected %.10f", x[1], math.Sin(T))
	}
	if x[2] != 0.5 {
		t.Errorf("z should be untouched, got %v", x[2])
	}
}

func TestRK4LocalErrorOrder(t *testing.T) {
	integ := NewRK4()
	x0 := dynamo.State{1, 0, 0}

	localError := func(dt float64) float64 {
		x := integ.Step(rotation{}, x0, 0, dt)
		return math.Hypot(x[0]-math.Cos(dt), x[1]-math.Sin(dt))
	}

	dt := 0.2
	prev := localError(dt)
	for i := 0; i < 4; i++ {
		dt /= 2
		cur := localError(dt)
		ratio := prev / cur
		// O(dt^5) local error: halving dt divides the error by ~32.
		if ratio < 28 || ratio > 36 {
			t.Errorf("dt=%g: error ratio %.2f, want ~32", dt, ratio)
		}
		prev = cur
	}
}

func TestRK4StageTimes(t *testing.T) {
	rec := &stageRecorder{}
	integ := NewRK4()
	x := integ.Step(rec, dynamo.State{0, 0, 0}, 1.0, 0.5)

	want := []float64{1.0, 1.25, 1.25, 1.5}
	if len(rec.times) != len(want) {
		t.Fatalf("expected 4 evaluations, got %d", len(rec.times))
	}
	for i := range want {
		if rec.times[i] != want[i] {
			t.Errorf("stage %d evaluated at %v, want %v", i+1, rec.times[i], want[i])
		}
	}
	// Constant field: x' = x + dt*1.
	for i := range x {
		if math.Abs(x[i]-0.5) > 1e-15 {
			t.Errorf("component %d = %v, want 0.5", i, x[i])
		}
	}
}

func TestRK4DoesNotMutateInput(t *testing.T) {
	integ := NewRK4()
	x := dynamo.State{1, 0, 0}
	out := integ.Step(rotation{}, x, 0, 0.1)
	if x[0] != 1 || x[1] != 0 {
		t.Errorf("input mutated: %v", x)
	}
	out[0] = 42
	again := integ.Step(rotation{}, x, 0, 0.1)
	if again[0] == 42 {
		t.Error("returned state aliases integrator buffers")
	}
}
