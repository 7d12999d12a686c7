package config

import (
	"fmt"

	"github.com/san-kum/blochsim/internal/dynamo"
)

func (c *Config) GetParams() map[string]float64 {
	return map[string]float64{
		"dt":         c.Dt,
		"duration":   c.Duration,
		"detuning":   c.Constants.Detuning,
		"t1":         c.Constants.T1,
		"t2":         c.Constants.T2,
		"center":     c.Pulse.Center,
		"amplitude":  c.Pulse.Amplitude,
		"width":      c.Pulse.Width,
		"chirp_rate": c.Pulse.ChirpRate,
	}
}

// SetParam sets one numeric field by the name GetParams reports it under.
func (c *Config) SetParam(name string, value float64) error {
	switch name {
	case "dt":
		c.Dt = value
	case "duration":
		c.Duration = value
	case "detuning":
		c.Constants.Detuning = value
	case "t1":
		c.Constants.T1 = value
	case "t2":
		c.Constants.T2 = value
	case "center":
		c.Pulse.Center = value
	case "amplitude":
		c.Pulse.Amplitude = value
	case "width":
		c.Pulse.Width = value
	case "chirp_rate":
		c.Pulse.ChirpRate = value
	default:
		return fmt.Errorf("%w: %s", dynamo.ErrUnknownParam, name)
	}
	return nil
}

var _ dynamo.Configurable = (*Config)(nil)
