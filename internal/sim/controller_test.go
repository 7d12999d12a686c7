package sim_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/blochsim/internal/dynamo"
	"github.com/san-kum/blochsim/internal/physics"
	"github.com/san-kum/blochsim/internal/pulse"
	"github.com/san-kum/blochsim/internal/sim"
)

// Reference values from an independent double-precision run of the same
// scheme: defaults, 2000 ticks of dt=0.001, t ≈ 2.
var (
	halfPiBaseline = physics.Vector{U: 0.10002930286936064, V: 0.9949828175934733, W: -3.747650146675708e-06}
	piBaseline     = physics.Vector{U: 0.0009057912149983248, V: -9.885087454278637e-06, W: 0.9999693971267025}
)

const baselineTolerance = 1e-6

type stepCounter struct {
	steps int
	last  float64
}

func (s *stepCounter) OnStep(x dynamo.State, t float64) {
	s.steps++
	s.last = t
}

type editLog struct{ edits []sim.Edit }

func (l *editLog) OnEdit(e sim.Edit) { l.edits = append(l.edits, e) }

func runTicks(c *sim.Controller, n int) {
	for i := 0; i < n; i++ {
		c.Tick()
	}
}

func distance(a, b physics.Vector) float64 {
	return math.Sqrt((a.U-b.U)*(a.U-b.U) + (a.V-b.V)*(a.V-b.V) + (a.W-b.W)*(a.W-b.W))
}

var _ = Describe("Controller", func() {
	var c *sim.Controller

	BeforeEach(func() {
		c = sim.New(sim.DefaultConfig())
	})

	Describe("defaults", func() {
		It("starts in the ground state with a Gaussian pi/2 pulse", func() {
			Expect(c.State()).To(Equal(physics.Vector{U: 0, V: 0, W: -1}))
			Expect(c.Kind()).To(Equal(pulse.Gaussian))
			Expect(c.Params()).To(Equal(pulse.Params{Center: 1, Amplitude: math.Pi / 2, Width: 0.01}))
			Expect(c.Time()).To(BeZero())
			Expect(c.Dt()).To(Equal(0.001))
			Expect(c.Constants()).To(Equal(sim.Constants{Detuning: 0.1, T1: 1e6, T2: 1e6}))
		})
	})

	Describe("Tick", func() {
		It("advances the clock by dt every tick", func() {
			runTicks(c, 10)
			Expect(c.Ticks()).To(Equal(10))
			Expect(c.Time()).To(BeNumerically("~", 0.01, 1e-15))
		})

		It("notifies observers once per tick", func() {
			obs := &stepCounter{}
			c.AddObserver(obs)
			runTicks(c, 5)
			Expect(obs.steps).To(Equal(5))
			Expect(obs.last).To(Equal(c.Time()))
		})

		It("barely moves before the pulse arrives", func() {
			runTicks(c, 500)
			Expect(c.State().W).To(BeNumerically("~", -1, 1e-9))
		})

		It("matches the pi/2 regression baseline", func() {
			runTicks(c, 2000)
			got := c.State()
			Expect(got.U).To(BeNumerically("~", halfPiBaseline.U, baselineTolerance))
			Expect(got.V).To(BeNumerically("~", halfPiBaseline.V, baselineTolerance))
			Expect(got.W).To(BeNumerically("~", halfPiBaseline.W, baselineTolerance))
		})

		It("matches the pi regression baseline", func() {
			cfg := sim.DefaultConfig()
			cfg.Pulse.Amplitude = math.Pi
			c = sim.New(cfg)
			runTicks(c, 2000)
			got := c.State()
			Expect(got.U).To(BeNumerically("~", piBaseline.U, baselineTolerance))
			Expect(got.V).To(BeNumerically("~", piBaseline.V, baselineTolerance))
			Expect(got.W).To(BeNumerically("~", piBaseline.W, baselineTolerance))
		})

		It("converges as dt is halved", func() {
			var finals []physics.Vector
			for _, dt := range []float64{0.002, 0.001, 0.0005, 0.00025} {
				cfg := sim.DefaultConfig()
				cfg.Dt = dt
				run := sim.New(cfg)
				runTicks(run, int(math.Round(2/dt)))
				finals = append(finals, run.State())
			}

			prev := distance(finals[0], finals[1])
			for i := 2; i < len(finals); i++ {
				cur := distance(finals[i-1], finals[i])
				Expect(cur).To(BeNumerically("<", prev/8))
				prev = cur
			}
			Expect(prev).To(BeNumerically("<", 1e-6))
		})

		It("keeps |R| at 1 without relaxation and decays it with relaxation", func() {
			runTicks(c, 2000)
			Expect(c.State().Norm()).To(BeNumerically("~", 1, 1e-5))

			cfg := sim.DefaultConfig()
			cfg.Constants.T1, cfg.Constants.T2 = 0.5, 0.2
			lossy := sim.New(cfg)
			runTicks(lossy, 2000)
			Expect(lossy.State().Transverse()).To(BeNumerically("<", 0.02))
		})
	})

	Describe("ApplyEdit", func() {
		It("recenters the pulse 1.5 widths ahead of now", func() {
			runTicks(c, 250)
			c.ApplyEdit(sim.Recenter())
			Expect(c.Params().Center).To(BeNumerically("~", c.Time()+1.5*0.01, 1e-15))
		})

		It("steps width and amplitude by 0.01", func() {
			c.ApplyEdit(sim.Widen())
			c.ApplyEdit(sim.Widen())
			c.ApplyEdit(sim.Narrow())
			c.ApplyEdit(sim.Raise())
			c.ApplyEdit(sim.Lower())
			c.ApplyEdit(sim.Lower())
			Expect(c.Params().Width).To(BeNumerically("~", 0.02, 1e-15))
			Expect(c.Params().Amplitude).To(BeNumerically("~", math.Pi/2-0.01, 1e-15))
		})

		It("selects envelopes", func() {
			c.ApplyEdit(sim.Select(pulse.Chirped))
			Expect(c.Kind()).To(Equal(pulse.Chirped))
			c.ApplyEdit(sim.Select(pulse.Square))
			Expect(c.Kind()).To(Equal(pulse.Square))
		})

		It("ignores selection of an unknown envelope", func() {
			log := &editLog{}
			c.AddEditListener(log)
			c.ApplyEdit(sim.Select(pulse.Kind(7)))
			Expect(c.Kind()).To(Equal(pulse.Gaussian))
			Expect(log.edits).To(BeEmpty())
			Expect(c.Drive()).To(Equal(pulse.Evaluate(pulse.Gaussian, c.Time(), c.Params())))
		})

		It("notifies edit listeners", func() {
			log := &editLog{}
			c.AddEditListener(log)
			c.ApplyEdit(sim.Widen())
			c.ApplyEdit(sim.Select(pulse.Square))
			c.ApplyEdit(sim.Edit{Kind: sim.EditKind(99)})
			Expect(log.edits).To(Equal([]sim.Edit{sim.Widen(), sim.Select(pulse.Square)}))
		})

		It("does not clamp the width", func() {
			c.ApplyEdit(sim.Narrow())
			Expect(c.Params().Width).To(BeNumerically("~", 0, 1e-15))
			c.ApplyEdit(sim.Narrow())
			Expect(c.Params().Width).To(BeNumerically("<", 0))
		})

		It("drives the state non-finite once the width reaches zero inside the pulse", func() {
			cfg := sim.DefaultConfig()
			cfg.Pulse.Center = 0
			c = sim.New(cfg)
			c.ApplyEdit(sim.Narrow())
			c.Tick()
			Expect(c.State().State().IsValid()).To(BeFalse())
		})

		It("only affects ticks that start after it", func() {
			cfg := sim.DefaultConfig()
			cfg.Pulse.Center = 0.002
			edited, untouched := sim.New(cfg), sim.New(cfg)

			edited.Tick()
			untouched.Tick()
			Expect(edited.State()).To(Equal(untouched.State()))
			afterFirst := edited.State()

			edited.ApplyEdit(sim.Raise())
			Expect(edited.State()).To(Equal(afterFirst))

			edited.Tick()
			untouched.Tick()
			Expect(edited.State()).NotTo(Equal(untouched.State()))
		})
	})

	Describe("Frame", func() {
		It("applies queued edits before ticking", func() {
			q := sim.NewEditQueue()
			q.Push(sim.Raise(), sim.Select(pulse.Square))

			Expect(c.Frame(q)).To(Equal(2))
			Expect(c.Ticks()).To(Equal(1))
			Expect(c.Kind()).To(Equal(pulse.Square))
			Expect(q.Len()).To(BeZero())

			Expect(c.Frame(q)).To(BeZero())
			Expect(c.Frame(nil)).To(BeZero())
			Expect(c.Ticks()).To(Equal(3))
		})

		It("gives the same trajectory as applying edits directly", func() {
			q := sim.NewEditQueue()
			direct := sim.New(sim.DefaultConfig())
			for i := 0; i < 1200; i++ {
				if i == 300 {
					q.Push(sim.Recenter(), sim.Select(pulse.Square))
					direct.ApplyEdit(sim.Recenter())
					direct.ApplyEdit(sim.Select(pulse.Square))
				}
				c.Frame(q)
				direct.Tick()
			}
			Expect(c.State()).To(Equal(direct.State()))
		})
	})

	Describe("Reset", func() {
		It("restores the initial configuration", func() {
			c.ApplyEdit(sim.Widen())
			c.ApplyEdit(sim.Select(pulse.Chirped))
			c.Dynamics().Detuning = 3
			runTicks(c, 1500)

			c.Reset()
			Expect(c.State()).To(Equal(physics.Ground()))
			Expect(c.Params()).To(Equal(pulse.DefaultParams()))
			Expect(c.Kind()).To(Equal(pulse.Gaussian))
			Expect(c.Time()).To(BeZero())
			Expect(c.Ticks()).To(BeZero())
			Expect(c.Constants().Detuning).To(Equal(0.1))
		})
	})

	Describe("Snapshot", func() {
		It("copies the current frame", func() {
			runTicks(c, 1000)
			snap := c.Snapshot()
			Expect(snap.Tick).To(Equal(1000))
			Expect(snap.Time).To(Equal(c.Time()))
			Expect(snap.State).To(Equal(c.State()))
			Expect(snap.Envelope).To(Equal(pulse.Gaussian))
			Expect(real(snap.Drive)).To(BeNumerically(">", 100))

			c.ApplyEdit(sim.Widen())
			Expect(snap.Pulse.Width).To(Equal(0.01))
		})
	})
})
