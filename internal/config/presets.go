package config

import (
	"math"
	"sort"

	"github.com/san-kum/blochsim/internal/pulse"
)

func preset(mutate func(c *Config)) *Config {
	c := DefaultConfig()
	mutate(c)
	return c
}

var Presets = map[string]*Config{
	"half_pi": DefaultConfig(),
	"pi": preset(func(c *Config) {
		c.Pulse.Amplitude = math.Pi
	}),
	"square": preset(func(c *Config) {
		c.Envelope = pulse.Square
		c.Pulse.Width = 0.05
		c.Pulse.Amplitude = math.Pi
	}),
	// adiabatic passage; inverts across a wide range of amplitudes
	"chirped_sweep": preset(func(c *Config) {
		c.Envelope = pulse.Chirped
		c.Constants.Detuning = 0
		c.Pulse.Width = 0.2
		c.Pulse.Amplitude = 8 * math.Pi
		c.Pulse.ChirpRate = 1000
	}),
	"off_resonant": preset(func(c *Config) {
		c.Constants.Detuning = 50
		c.Pulse.Width = 0.05
		c.Pulse.Amplitude = math.Pi
	}),
	// pi/2 pulse early, then free precession at a detuning the spectrum can resolve
	"ramsey": preset(func(c *Config) {
		c.Pulse.Center = 0.2
		c.Constants.Detuning = 20
		c.Duration = 4
	}),
	"relaxing": preset(func(c *Config) {
		c.Constants.T1 = 0.5
		c.Constants.T2 = 0.2
		c.Duration = 4
	}),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
