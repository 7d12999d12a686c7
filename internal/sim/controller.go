package sim

import (
	"context"

	"github.com/san-kum/blochsim/internal/dynamo"
	"github.com/san-kum/blochsim/internal/integrators"
	"github.com/san-kum/blochsim/internal/logging"
	"github.com/san-kum/blochsim/internal/physics"
	"github.com/san-kum/blochsim/internal/pulse"
)

const DefaultDt = 0.001

// Constants are the detuning and relaxation times. T1 and T2 must be
// non-zero; callers validate them before constructing a Controller.
type Constants struct {
	Detuning float64 `yaml:"detuning" json:"detuning"`
	T1       float64 `yaml:"t1" json:"t1"`
	T2       float64 `yaml:"t2" json:"t2"`
}

func DefaultConstants() Constants {
	return Constants{
		Detuning: physics.DefaultDetuning,
		T1:       physics.DefaultT1,
		T2:       physics.DefaultT2,
	}
}

type Config struct {
	Constants Constants
	Dt        float64
	Pulse     pulse.Params
	Envelope  pulse.Kind
	Initial   physics.Vector
}

func DefaultConfig() Config {
	return Config{
		Constants: DefaultConstants(),
		Dt:        DefaultDt,
		Pulse:     pulse.DefaultParams(),
		Envelope:  pulse.Gaussian,
		Initial:   physics.Ground(),
	}
}

// EditListener is told about every applied edit.
type EditListener interface {
	OnEdit(e Edit)
}

// Snapshot is a copy of everything a renderer needs for one frame.
type Snapshot struct {
	Time     float64
	Tick     int
	State    physics.Vector
	Pulse    pulse.Params
	Envelope pulse.Kind
	Drive    complex128
}

type Controller struct {
	cfg        Config
	dyn        *physics.Bloch
	integrator dynamo.Integrator
	selector   *pulse.Selector
	params     pulse.Params
	state      physics.Vector
	t, dt      float64
	ticks      int
	observers  []dynamo.Observer
	listeners  []EditListener
	logger     logging.Logger
}

// New builds a controller from cfg. The configuration is not validated.
func New(cfg Config) *Controller {
	c := &Controller{
		cfg:        cfg,
		integrator: integrators.NewRK4(),
		logger:     logging.Noop(),
	}
	c.params = cfg.Pulse
	c.selector = pulse.NewSelector(cfg.Envelope, &c.params)
	c.dyn = &physics.Bloch{
		Detuning: cfg.Constants.Detuning,
		T1:       cfg.Constants.T1,
		T2:       cfg.Constants.T2,
		Drive:    c.selector,
	}
	c.state = cfg.Initial
	c.dt = cfg.Dt
	return c
}

func (c *Controller) SetLogger(l logging.Logger) {
	if l == nil {
		l = logging.Noop()
	}
	c.logger = l
}

func (c *Controller) AddObserver(o dynamo.Observer)  { c.observers = append(c.observers, o) }
func (c *Controller) AddEditListener(l EditListener) { c.listeners = append(c.listeners, l) }

// Tick advances the state by one step of dt and the clock by exactly dt.
func (c *Controller) Tick() {
	next := c.integrator.Step(c.dyn, c.state.State(), c.t, c.dt)
	c.state = physics.VectorFromState(next)
	c.t += c.dt
	c.ticks++

	for _, obs := range c.observers {
		obs.OnStep(next, c.t)
	}
}

// ApplyEdit applies e in full. Results are not validated: repeated Narrow
// edits can drive the width to zero or below.
func (c *Controller) ApplyEdit(e Edit) {
	switch e.Kind {
	case RecenterPulse:
		c.params.Center = c.t + RecenterLead*c.params.Width
	case WidenPulse:
		c.params.Width += WidthStep
	case NarrowPulse:
		c.params.Width -= WidthStep
	case RaiseAmplitude:
		c.params.Amplitude += AmplitudeStep
	case LowerAmplitude:
		c.params.Amplitude -= AmplitudeStep
	case SelectEnvelope:
		if !e.Envelope.Valid() {
			c.logger.Warn(context.Background(), "ignoring unknown envelope", logging.String("envelope", e.Envelope.String()))
			return
		}
		c.selector.Select(e.Envelope)
	default:
		c.logger.Warn(context.Background(), "ignoring unknown edit", logging.Int("kind", int(e.Kind)))
		return
	}

	c.logger.Debug(context.Background(), "edit applied",
		logging.String("edit", e.String()),
		logging.Float("t", c.t),
		logging.Float("center", c.params.Center),
		logging.Float("width", c.params.Width),
		logging.Float("amplitude", c.params.Amplitude),
	)
	for _, l := range c.listeners {
		l.OnEdit(e)
	}
}

// Frame applies every queued edit and then ticks once.
func (c *Controller) Frame(q *EditQueue) int {
	var edits []Edit
	if q != nil {
		edits = q.Drain()
	}
	for _, e := range edits {
		c.ApplyEdit(e)
	}
	c.Tick()
	return len(edits)
}

// Reset restores the configuration the controller was built with.
func (c *Controller) Reset() {
	c.params = c.cfg.Pulse
	c.selector.Select(c.cfg.Envelope)
	c.dyn.Detuning = c.cfg.Constants.Detuning
	c.dyn.T1 = c.cfg.Constants.T1
	c.dyn.T2 = c.cfg.Constants.T2
	c.state = c.cfg.Initial
	c.t = 0
	c.dt = c.cfg.Dt
	c.ticks = 0
}

func (c *Controller) State() physics.Vector { return c.state }
func (c *Controller) Params() pulse.Params  { return c.params }
func (c *Controller) Kind() pulse.Kind      { return c.selector.Kind() }
func (c *Controller) Time() float64         { return c.t }
func (c *Controller) Dt() float64           { return c.dt }
func (c *Controller) Ticks() int            { return c.ticks }

func (c *Controller) Constants() Constants {
	return Constants{Detuning: c.dyn.Detuning, T1: c.dyn.T1, T2: c.dyn.T2}
}

// Dynamics exposes the vector field for runtime tuning of Δ, T1 and T2.
func (c *Controller) Dynamics() *physics.Bloch { return c.dyn }

// Drive is Ω at the current time under the current selection.
func (c *Controller) Drive() complex128 { return c.selector.Evaluate(c.t) }

func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		Time:     c.t,
		Tick:     c.ticks,
		State:    c.state,
		Pulse:    c.params,
		Envelope: c.selector.Kind(),
		Drive:    c.Drive(),
	}
}
