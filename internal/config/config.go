package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/san-kum/blochsim/internal/dynamo"
	"github.com/san-kum/blochsim/internal/physics"
	"github.com/san-kum/blochsim/internal/pulse"
	"github.com/san-kum/blochsim/internal/sim"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt       = sim.DefaultDt
	DefaultDuration = 2.0
)

type Config struct {
	Dt        float64         `yaml:"dt"`
	Duration  float64         `yaml:"duration"`
	Envelope  pulse.Kind      `yaml:"envelope"`
	Pulse     pulse.Params    `yaml:"pulse"`
	Constants sim.Constants   `yaml:"constants"`
	InitState InitStateConfig `yaml:"init_state"`
}

type InitStateConfig struct {
	U float64 `yaml:"u"`
	V float64 `yaml:"v"`
	W float64 `yaml:"w"`
}

func DefaultConfig() *Config {
	return &Config{
		Dt:        DefaultDt,
		Duration:  DefaultDuration,
		Envelope:  pulse.Gaussian,
		Pulse:     pulse.DefaultParams(),
		Constants: sim.DefaultConstants(),
		InitState: InitStateConfig{W: -1},
	}
}

// Load reads a config file over DefaultConfig.
func Load(path string) (*Config, error) {
	return LoadInto(path, DefaultConfig())
}

// LoadInto reads a config file over a copy of base. Keys missing from the
// file keep base's values; base itself is not modified.
func LoadInto(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Resolve layers the named preset (if any) over the defaults and the file
// at path (if any) over that.
func Resolve(presetName, path string) (*Config, error) {
	cfg := DefaultConfig()
	if presetName != "" {
		cfg = GetPreset(presetName)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", presetName, ListPresets())
		}
	}
	if path == "" {
		return cfg, nil
	}
	loaded, err := LoadInto(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return loaded, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the positivity preconditions the simulation core relies
// on but never checks itself.
func (c *Config) Validate() error {
	var errs []error
	positive := func(name string, v float64) {
		if !(v > 0) || math.IsInf(v, 0) {
			errs = append(errs, fmt.Errorf("%w: %s must be positive and finite, got %g", dynamo.ErrParameterBounds, name, v))
		}
	}
	positive("dt", c.Dt)
	positive("duration", c.Duration)
	positive("pulse.width", c.Pulse.Width)
	positive("constants.t1", c.Constants.T1)
	positive("constants.t2", c.Constants.T2)

	for _, v := range []float64{c.Pulse.Center, c.Pulse.Amplitude, c.Pulse.ChirpRate, c.Constants.Detuning} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			errs = append(errs, fmt.Errorf("%w: pulse and detuning values must be finite", dynamo.ErrParameterBounds))
			break
		}
	}
	return errors.Join(errs...)
}

func (c *Config) InitialState() physics.Vector {
	return physics.Vector{U: c.InitState.U, V: c.InitState.V, W: c.InitState.W}
}

// SimConfig converts the file representation into a controller config.
func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Constants: c.Constants,
		Dt:        c.Dt,
		Pulse:     c.Pulse,
		Envelope:  c.Envelope,
		Initial:   c.InitialState(),
	}
}

// RunConfig is the batch-run view of the same file.
func (c *Config) RunConfig() dynamo.Config {
	return dynamo.Config{Dt: c.Dt, Duration: c.Duration, ValidateState: true}
}

func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
