package experiment

import (
	"context"
	"fmt"
	"sort"

	"github.com/san-kum/blochsim/internal/config"
	"github.com/san-kum/blochsim/internal/dynamo"
	"github.com/san-kum/blochsim/internal/logging"
	"github.com/san-kum/blochsim/internal/sim"
)

// TimedEdit applies Edit before the first tick that starts at or after At.
type TimedEdit struct {
	At   float64  `yaml:"at" json:"at"`
	Edit sim.Edit `yaml:"edit" json:"edit"`
}

type Experiment struct {
	cfg        *config.Config
	controller *sim.Controller
	metrics    []dynamo.Metric
	edits      []TimedEdit
	logger     logging.Logger
}

func New(cfg *config.Config) *Experiment {
	ctrl := sim.New(cfg.SimConfig())
	return &Experiment{
		cfg:        cfg,
		controller: ctrl,
		logger:     logging.Noop(),
	}
}

func (e *Experiment) SetLogger(l logging.Logger) {
	if l == nil {
		l = logging.Noop()
	}
	e.logger = l
	e.controller.SetLogger(l)
}

func (e *Experiment) AddMetric(ms ...dynamo.Metric) { e.metrics = append(e.metrics, ms...) }

// Schedule queues timed edits. Edits sharing a time keep their given order.
func (e *Experiment) Schedule(edits ...TimedEdit) {
	e.edits = append(e.edits, edits...)
	sort.SliceStable(e.edits, func(i, j int) bool { return e.edits[i].At < e.edits[j].At })
}

// Controller returns the underlying controller for adding observers.
func (e *Experiment) Controller() *sim.Controller {
	return e.controller
}

// Run resets the controller and integrates for the configured duration.
// A non-finite state stops the run and is reported in Result.Errors.
func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	runCfg := e.cfg.RunConfig()
	steps := runCfg.Steps()
	result := &dynamo.Result{
		States:  make([]dynamo.State, 0, steps+1),
		Times:   make([]float64, 0, steps+1),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	c := e.controller
	c.Reset()
	for _, m := range e.metrics {
		m.Reset()
	}

	record := func() {
		x := c.State().State()
		for _, m := range e.metrics {
			m.Observe(x, c.Time())
		}
		result.States = append(result.States, x)
		result.Times = append(result.Times, c.Time())
	}
	record()

	e.logger.Info(ctx, "run started",
		logging.String("envelope", c.Kind().String()),
		logging.Int("steps", steps),
		logging.Float("dt", c.Dt()),
		logging.Int("edits", len(e.edits)),
	)

	next := 0
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		for next < len(e.edits) && e.edits[next].At <= c.Time()+c.Dt()/2 {
			c.ApplyEdit(e.edits[next].Edit)
			next++
		}

		c.Tick()
		result.StepsTaken++

		if runCfg.ValidateState && !c.State().State().IsValid() {
			err := &dynamo.SimulationError{
				Step:    i,
				Time:    c.Time(),
				State:   c.State().State(),
				Wrapped: dynamo.ErrInvalidState,
			}
			result.Errors = append(result.Errors, err)
			e.logger.Warn(ctx, "run stopped", logging.Err(err))
			break
		}
		record()
	}

	for _, m := range e.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	e.logger.Info(ctx, "run finished",
		logging.Int("steps_taken", result.StepsTaken),
		logging.String("final", c.State().String()),
	)
	return result, nil
}
