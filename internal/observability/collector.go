package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/san-kum/blochsim/internal/dynamo"
	"github.com/san-kum/blochsim/internal/sim"
)

// SimCollector exposes controller progress as Prometheus metrics. It is a
// dynamo.Observer for ticks and a sim.EditListener for edits.
type SimCollector struct {
	gatherer prometheus.Gatherer

	TicksTotal    prometheus.Counter
	EditsTotal    *prometheus.CounterVec
	FrameDuration prometheus.Histogram
	SimTime       prometheus.Gauge
	VectorNorm    prometheus.Gauge
	Population    prometheus.Gauge
}

// NewSimCollector registers simulation metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewSimCollector(reg prometheus.Registerer) (*SimCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	ticks, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "blochsim_ticks_total",
		Help: "Number of integration steps taken by the controller.",
	}), "blochsim_ticks_total")
	if err != nil {
		return nil, err
	}

	edits, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "blochsim_edits_total",
		Help: "Number of applied pulse edits, labeled by edit kind.",
	}, []string{"kind"}), "blochsim_edits_total")
	if err != nil {
		return nil, err
	}

	frames, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "blochsim_frame_duration_seconds",
		Help:    "Wall-clock time spent draining edits and ticking once.",
		Buckets: []float64{1e-6, 5e-6, 1e-5, 5e-5, 1e-4, 5e-4, 1e-3, 5e-3, 0.01},
	}), "blochsim_frame_duration_seconds")
	if err != nil {
		return nil, err
	}

	simTime, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "blochsim_time_seconds",
		Help: "Simulated time of the most recent tick.",
	}), "blochsim_time_seconds")
	if err != nil {
		return nil, err
	}
	norm, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "blochsim_vector_norm",
		Help: "Length of the Bloch vector after the most recent tick.",
	}), "blochsim_vector_norm")
	if err != nil {
		return nil, err
	}
	population, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "blochsim_population_inversion",
		Help: "Population inversion w after the most recent tick.",
	}), "blochsim_population_inversion")
	if err != nil {
		return nil, err
	}

	return &SimCollector{
		gatherer:      gatherer,
		TicksTotal:    ticks,
		EditsTotal:    edits,
		FrameDuration: frames,
		SimTime:       simTime,
		VectorNorm:    norm,
		Population:    population,
	}, nil
}

// Attach subscribes the collector to c's ticks and edits.
func (c *SimCollector) Attach(ctrl *sim.Controller) {
	ctrl.AddObserver(c)
	ctrl.AddEditListener(c)
}

func (c *SimCollector) OnStep(x dynamo.State, t float64) {
	if c == nil {
		return
	}
	c.TicksTotal.Inc()
	c.SimTime.Set(t)
	c.VectorNorm.Set(x.Norm())
	if len(x) > 2 {
		c.Population.Set(x[2])
	}
}

func (c *SimCollector) OnEdit(e sim.Edit) {
	if c == nil {
		return
	}
	c.EditsTotal.WithLabelValues(e.Kind.String()).Inc()
}

// Frame runs ctrl.Frame(q) and records how long it took.
func (c *SimCollector) Frame(ctrl *sim.Controller, q *sim.EditQueue) int {
	start := time.Now()
	n := ctrl.Frame(q)
	if c != nil {
		c.FrameDuration.Observe(time.Since(start).Seconds())
	}
	return n
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *SimCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// Handler exposes a ready-to-use /metrics handler.
func (c *SimCollector) Handler() http.Handler {
	gatherer := c.Gatherer()
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (c *SimCollector) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}
