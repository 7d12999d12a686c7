package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/blochsim/internal/dynamo"
	"github.com/san-kum/blochsim/internal/metrics"
	"github.com/san-kum/blochsim/internal/physics"
)

type Registry struct {
	metrics map[string]func(drive physics.Envelope) dynamo.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		metrics: make(map[string]func(physics.Envelope) dynamo.Metric),
	}

	r.metrics["inversion"] = func(physics.Envelope) dynamo.Metric { return metrics.NewInversion() }
	r.metrics["norm_drift"] = func(physics.Envelope) dynamo.Metric { return metrics.NewNormDrift() }
	r.metrics["transverse"] = func(physics.Envelope) dynamo.Metric { return metrics.NewTransverse() }
	r.metrics["pulse_area"] = func(d physics.Envelope) dynamo.Metric { return metrics.NewPulseArea(d) }

	return r
}

func (r *Registry) GetMetric(name string, drive physics.Envelope) (dynamo.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(drive), nil
}

func (r *Registry) ListMetrics() []string {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics builds one of every registered metric against drive.
func (r *Registry) DefaultMetrics(drive physics.Envelope) []dynamo.Metric {
	names := r.ListMetrics()
	ms := make([]dynamo.Metric, 0, len(names))
	for _, name := range names {
		ms = append(ms, r.metrics[name](drive))
	}
	return ms
}
