package automation

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/blochsim/internal/config"
	"github.com/san-kum/blochsim/internal/dynamo"
	"github.com/san-kum/blochsim/internal/experiment"
	"github.com/san-kum/blochsim/internal/metrics"
)

// ParameterSweep runs one independent simulation per parameter value.
// Sweeping amplitude traces a Rabi curve.
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	ParamValue    float64
	FinalState    dynamo.State
	Inversion     float64
	MaxTransverse float64
	Stable        bool
}

// RunSweep executes the sweep across all CPUs. Results are ordered by
// parameter value.
func RunSweep(ctx context.Context, sweep *ParameterSweep) ([]SweepResult, error) {
	if sweep.NumSteps < 2 {
		return nil, fmt.Errorf("sweep needs at least 2 steps, got %d", sweep.NumSteps)
	}
	if _, ok := sweep.Base.GetParams()[sweep.ParamName]; !ok {
		return nil, fmt.Errorf("%w: %s", dynamo.ErrUnknownParam, sweep.ParamName)
	}

	paramStep := (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	results := make([]SweepResult, sweep.NumSteps)
	errs := make([]error, sweep.NumSteps)

	dynamo.ParallelFor(sweep.NumSteps, 1, func(start, end int) {
		for i := start; i < end; i++ {
			paramVal := sweep.ParamMin + float64(i)*paramStep
			results[i], errs[i] = runPoint(ctx, sweep.Base, map[string]float64{sweep.ParamName: paramVal})
			results[i].ParamValue = paramVal
		}
	})

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return results, nil
}

func runPoint(ctx context.Context, base *config.Config, params map[string]float64) (SweepResult, error) {
	cfg := base.Clone()
	for name, v := range params {
		if err := cfg.SetParam(name, v); err != nil {
			return SweepResult{}, err
		}
	}

	inversion := metrics.NewInversion()
	transverse := metrics.NewTransverse()

	exp := experiment.New(cfg)
	exp.AddMetric(inversion, transverse)
	result, err := exp.Run(ctx)
	if err != nil {
		return SweepResult{}, err
	}

	return SweepResult{
		FinalState:    result.Final(),
		Inversion:     inversion.Value(),
		MaxTransverse: transverse.Value(),
		Stable:        len(result.Errors) == 0,
	}, nil
}
