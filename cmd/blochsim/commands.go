package main

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/blochsim/internal/analysis"
	"github.com/san-kum/blochsim/internal/automation"
	"github.com/san-kum/blochsim/internal/config"
	"github.com/san-kum/blochsim/internal/dynamo"
	"github.com/san-kum/blochsim/internal/experiment"
	"github.com/san-kum/blochsim/internal/export"
	"github.com/san-kum/blochsim/internal/optim"
	"github.com/san-kum/blochsim/internal/physics"
	"github.com/san-kum/blochsim/internal/storage"
	"github.com/san-kum/blochsim/internal/viz"
	"github.com/spf13/cobra"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	registry := experiment.NewRegistry()
	exp := experiment.New(cfg)
	exp.SetLogger(logger)
	exp.AddMetric(registry.DefaultMetrics(exp.Controller().Dynamics().Drive)...)

	fmt.Printf("running %s pulse: dt=%.4f, duration=%.2f, Δ=%.3f\n",
		cfg.Envelope, cfg.Dt, cfg.Duration, cfg.Constants.Detuning)

	start := time.Now()
	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v (%d steps)\n", elapsed, result.StepsTaken)
	for _, e := range result.Errors {
		fmt.Printf("warning: %v\n", e)
	}

	st := storage.New(dataDir)
	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("final state: %s\n", physics.VectorFromState(result.Final()))
	printMetrics(result.Metrics)
	return nil
}

func printMetrics(m map[string]float64) {
	if len(m) == 0 {
		return
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tENVELOPE\tTIME\tDURATION\tDT\tAMPLITUDE\tWIDTH\tINVERSION")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%.4f\t%.4f\t%.4f\t%.4f\n",
			run.ID,
			run.Envelope,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Pulse.Amplitude,
			run.Pulse.Width,
			run.Metrics["inversion"],
		)
	}

	return w.Flush()
}

// loadRun reads a stored run back into a Result.
func loadRun(runID string) (*storage.RunMetadata, *dynamo.Result, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}

	states, times, err := st.LoadStates(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(states) == 0 {
		return nil, nil, fmt.Errorf("run %s has no states", runID)
	}

	return meta, &dynamo.Result{
		States:     states,
		Times:      times,
		Metrics:    meta.Metrics,
		StepsTaken: meta.Steps,
	}, nil
}

func component(states []dynamo.State, idx int) []float64 {
	data := make([]float64, len(states))
	for i, s := range states {
		if idx < len(s) {
			data[i] = s[idx]
		}
	}
	return data
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("envelope: %s\n", meta.Envelope)
	fmt.Printf("samples: %d\n\n", len(result.States))

	captions := []string{"u (in-phase)", "v (quadrature)", "w (inversion)"}
	for i, caption := range captions {
		graph := asciigraph.Plot(component(result.States, i),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.LowerBound(-1),
			asciigraph.UpperBound(1),
			asciigraph.Caption(caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(args[0])
	if err != nil {
		return err
	}

	sampleDt := meta.Dt
	if len(result.Times) > 1 {
		sampleDt = result.Times[1] - result.Times[0]
	}

	u := component(result.States, 0)
	spectrum := analysis.PowerSpectrum(u, sampleDt)
	if len(spectrum.Magnitude) < 3 {
		return fmt.Errorf("not enough samples for a spectrum")
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("envelope: %s, Δ=%.3f\n\n", meta.Envelope, meta.Constants.Detuning)

	plotData := spectrum.Magnitude
	if len(plotData) > 200 {
		plotData = plotData[:200]
	}
	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("|U(f)|, %.3f hz per bin", spectrum.Freqs[1])),
	)
	fmt.Println(graph)
	fmt.Println()

	freq := analysis.DominantFrequency(u, sampleDt)
	crossing := analysis.CrossingFrequency(u, sampleDt)
	fmt.Printf("dominant frequency: %.4f hz\n", freq)
	fmt.Printf("crossing frequency: %.4f hz\n", crossing)
	if freq > 0 {
		fmt.Printf("period: %.4f s\n", 1.0/freq)
		fmt.Printf("implied detuning: %.4f rad/s\n", 2*math.Pi*freq)
	}

	fmt.Println("\nu-v portrait:")
	fmt.Println(analysis.Project(result.States, 0, 1).ASCII(41, 21))
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, *meta, result)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, result, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.WriteCSV(os.Stdout, result)
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("sweeping %s from %.4f to %.4f (%d points, %s pulse)\n",
		paramName, paramMin, paramMax, numSteps, cfg.Envelope)

	start := time.Now()
	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		Base:      cfg,
		ParamName: paramName,
		ParamMin:  paramMin,
		ParamMax:  paramMax,
		NumSteps:  numSteps,
	})
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tINVERSION\tMAX |u+iv|\tSTABLE\n", paramName)
	inversion := make([]float64, len(results))
	for i, r := range results {
		inversion[i] = r.Inversion
		fmt.Fprintf(w, "%.4f\t%.5f\t%.5f\t%v\n", r.ParamValue, r.Inversion, r.MaxTransverse, r.Stable)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(asciigraph.Plot(inversion,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(1),
		asciigraph.Caption("inversion vs "+paramName),
	))
	return nil
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	spreads := make(map[string]float64, len(spread))
	for name, raw := range spread {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("spread %s: %w", name, err)
		}
		spreads[name] = v
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Base:      cfg,
		Spread:    spreads,
		NumTrials: numTrials,
		Seed:      seed,
	})
	if err != nil {
		return err
	}

	mean, std, stable := automation.MonteCarloStats(results)
	fmt.Printf("%s pulse, %d trials, spread %v\n", cfg.Envelope, numTrials, spread)
	fmt.Printf("stable trials: %d/%d\n", stable, len(results))
	fmt.Printf("inversion: %.5f ± %.5f\n", mean, std)

	worst := 1.0
	for _, r := range results {
		if r.Stable && r.Inversion < worst {
			worst = r.Inversion
		}
	}
	if stable > 0 {
		fmt.Printf("worst trial: %.5f\n", worst)
	}
	return nil
}

func runCalibrate(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	gs := optim.NewGridSearch([]string{calParam}, [][]float64{optim.Linspace(calMin, calMax, calSteps)})
	gs.Target = calTarget

	fmt.Printf("searching %s in [%.4f, %.4f] for %s = %.4f\n", calParam, calMin, calMax, calMetric, calTarget)

	best, dist, err := gs.Search(ctx, optim.Builder(cfg, experiment.NewRegistry()), calMetric)
	if err != nil {
		return err
	}

	fmt.Printf("best %s: %.6f\n", calParam, best[calParam])
	fmt.Printf("distance from target: %.6f\n", dist)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("scenario: %s (%d steps)\n", scenario.Name, len(scenario.Steps))
	if scenario.Description != "" {
		fmt.Println(scenario.Description)
	}

	results, runErr := automation.RunScenario(ctx, scenario, experiment.NewRegistry(), logger)

	st := storage.New(dataDir)
	for i, r := range results {
		name := r.Step.Name
		if name == "" {
			name = fmt.Sprintf("step %d", i+1)
		}
		fmt.Printf("\n%s: %s pulse, %d edits\n", name, r.Config.Envelope, len(r.Step.Edits))
		fmt.Printf("  final state: %s\n", physics.VectorFromState(r.Result.Final()))
		fmt.Printf("  inversion: %.6f\n", r.Result.Metrics["inversion"])

		if r.Step.SaveAs == "" {
			continue
		}
		runID, err := st.Save(r.Config, r.Result)
		if err != nil {
			return err
		}
		fmt.Printf("  saved %s as run %s\n", r.Step.SaveAs, runID)
	}

	return runErr
}

func snapshot(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if snapshotAt >= 0 {
		cfg.Duration = snapshotAt
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	exp := experiment.New(cfg)
	exp.SetLogger(logger)
	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}

	var svg string
	if portrait {
		svg = export.PortraitToSVG(analysis.Project(result.States, 0, 1), 400, "#00ffcc")
	} else {
		trail := make([]viz.Vec3, 0, len(result.States))
		for _, s := range result.States {
			trail = append(trail, viz.FromBloch(physics.VectorFromState(s)))
		}
		canvas := viz.NewCanvas(60, 24)
		viz.NewScene().Render(canvas, viz.NewCamera(), physics.VectorFromState(result.Final()), trail)
		svg = export.CanvasToSVG(canvas, snapshotScale)
	}

	if err := os.WriteFile(args[0], []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s at t=%.4f\n", args[0], exp.Controller().Time())
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tENVELOPE\tAMPLITUDE\tWIDTH\tCENTER\tCHIRP\tDETUNING\tDURATION")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%.4f\t%.4f\t%.3f\t%.1f\t%.2f\t%.2f\n",
			name, p.Envelope, p.Pulse.Amplitude, p.Pulse.Width, p.Pulse.Center,
			p.Pulse.ChirpRate, p.Constants.Detuning, p.Duration)
	}
	return w.Flush()
}
