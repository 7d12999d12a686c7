package automation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/san-kum/blochsim/internal/config"
	"github.com/san-kum/blochsim/internal/dynamo"
)

// MonteCarloConfig perturbs parameters of Base uniformly by a fraction of
// their value, e.g. {"amplitude": 0.1} draws amplitudes within ±10%.
type MonteCarloConfig struct {
	Base      *config.Config
	Spread    map[string]float64
	NumTrials int
	Seed      int64
}

// MonteCarloResult holds one perturbed trial
type MonteCarloResult struct {
	TrialID    int
	Params     map[string]float64
	FinalState dynamo.State
	Inversion  float64
	Stable     bool
}

// RunMonteCarlo draws all perturbations up front from Seed, so results are
// reproducible regardless of scheduling. Seed 0 uses the clock.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) ([]MonteCarloResult, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	names := make([]string, 0, len(cfg.Spread))
	for name := range cfg.Spread {
		names = append(names, name)
	}
	sort.Strings(names)

	base := cfg.Base.GetParams()
	for _, name := range names {
		if _, ok := base[name]; !ok {
			return nil, fmt.Errorf("%w: %s", dynamo.ErrUnknownParam, name)
		}
	}

	trials := make([]map[string]float64, cfg.NumTrials)
	for i := range trials {
		trials[i] = make(map[string]float64, len(names))
		for _, name := range names {
			frac := (rng.Float64() - 0.5) * 2 * cfg.Spread[name]
			trials[i][name] = base[name] * (1 + frac)
		}
	}

	results := make([]MonteCarloResult, cfg.NumTrials)
	errs := make([]error, cfg.NumTrials)
	dynamo.ParallelFor(cfg.NumTrials, 1, func(start, end int) {
		for i := start; i < end; i++ {
			point, err := runPoint(ctx, cfg.Base, trials[i])
			results[i] = MonteCarloResult{
				TrialID:    i,
				Params:     trials[i],
				FinalState: point.FinalState,
				Inversion:  point.Inversion,
				Stable:     point.Stable,
			}
			errs[i] = err
		}
	})

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return results, nil
}

// MonteCarloStats summarizes the inversion over stable trials.
func MonteCarloStats(results []MonteCarloResult) (mean, std float64, stableCount int) {
	for _, r := range results {
		if r.Stable {
			mean += r.Inversion
			stableCount++
		}
	}
	if stableCount == 0 {
		return 0, 0, 0
	}
	mean /= float64(stableCount)

	for _, r := range results {
		if r.Stable {
			d := r.Inversion - mean
			std += d * d
		}
	}
	std = math.Sqrt(std / float64(stableCount))
	return mean, std, stableCount
}
