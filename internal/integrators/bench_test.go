package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/blochsim/internal/dynamo"
	"github.com/san-kum/blochsim/internal/physics"
	"github.com/san-kum/blochsim/internal/pulse"
)

func BenchmarkRK4(b *testing.B) {
	integrator := NewRK4()
	dyn := rotation{}
	x := dynamo.State{1.0, 0.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, 0, 0.01)
	}
}

func BenchmarkRK4_Bloch(b *testing.B) {
	params := pulse.DefaultParams()
	params.ChirpRate = 1000
	dyn := physics.NewBloch(pulse.NewSelector(pulse.Chirped, &params))
	integrator := NewRK4()
	x := physics.Ground().State()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		t := math.Mod(float64(i)*0.001, 2)
		x = integrator.Step(dyn, x, t, 0.001)
	}
}
