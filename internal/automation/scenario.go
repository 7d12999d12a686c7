package automation

import (
	"context"
	"fmt"
	"os"

	"github.com/san-kum/blochsim/internal/config"
	"github.com/san-kum/blochsim/internal/dynamo"
	"github.com/san-kum/blochsim/internal/experiment"
	"github.com/san-kum/blochsim/internal/logging"
	"github.com/san-kum/blochsim/internal/pulse"
	"gopkg.in/yaml.v3"
)

// Scenario defines a scripted sequence of runs
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run: a preset, parameter overrides and the edits to
// replay during it.
type ScenarioStep struct {
	Name     string                 `yaml:"name"`
	Preset   string                 `yaml:"preset"`
	Envelope string                 `yaml:"envelope"`
	Params   map[string]float64     `yaml:"params"`
	Edits    []experiment.TimedEdit `yaml:"edits"`
	SaveAs   string                 `yaml:"save_as"`
}

type StepResult struct {
	Step   ScenarioStep
	Config *config.Config
	Result *dynamo.Result
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// Config resolves the step's preset and overrides.
func (s ScenarioStep) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		cfg = config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	}
	if s.Envelope != "" {
		kind, err := pulse.ParseKind(s.Envelope)
		if err != nil {
			return nil, err
		}
		cfg.Envelope = kind
	}
	for name, v := range s.Params {
		if err := cfg.SetParam(name, v); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// RunScenario executes all steps in order. Results of the completed steps
// are returned alongside any error.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, logger logging.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = logging.Noop()
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		logger.Info(ctx, "scenario step",
			logging.String("scenario", scenario.Name),
			logging.Int("step", i+1),
			logging.Int("of", len(scenario.Steps)),
			logging.String("name", step.Name),
		)

		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp := experiment.New(cfg)
		exp.SetLogger(logger)
		exp.AddMetric(registry.DefaultMetrics(exp.Controller().Dynamics().Drive)...)
		exp.Schedule(step.Edits...)

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, StepResult{Step: step, Config: cfg, Result: result})
	}

	return results, nil
}
