package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"sort"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/blochsim/internal/config"
	"github.com/san-kum/blochsim/internal/logging"
	"github.com/san-kum/blochsim/internal/observability"
	"github.com/san-kum/blochsim/internal/pulse"
	"github.com/san-kum/blochsim/internal/sim"
	"github.com/san-kum/blochsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	envelope   string

	dt        float64
	duration  float64
	detuning  float64
	t1        float64
	t2        float64
	center    float64
	amplitude float64
	width     float64
	chirp     float64

	// live view
	stepsPerFrame int
	frameRate     int
	themeName     string
	metricsAddr   string
	logFile       string

	// sweep
	paramName string
	paramMin  float64
	paramMax  float64
	numSteps  int

	// calibrate
	calParam  string
	calMin    float64
	calMax    float64
	calSteps  int
	calTarget float64
	calMetric string

	// montecarlo
	spread    map[string]string
	numTrials int
	seed      int64

	// snapshot
	snapshotAt    float64
	snapshotScale float64
	portrait      bool

	logger logging.Logger
)

// paramFlags maps the numeric config flags to config parameter names.
var paramFlags = map[string]string{
	"dt":        "dt",
	"time":      "duration",
	"detuning":  "detuning",
	"t1":        "t1",
	"t2":        "t2",
	"center":    "center",
	"amplitude": "amplitude",
	"width":     "width",
	"chirp":     "chirp_rate",
}

func main() {
	logger = logging.NewFromEnv()
	def := config.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:          "blochsim",
		Short:        "driven two-level system on the bloch sphere",
		Long:         "blochsim integrates the optical Bloch equations for a pulsed drive.\nWithout a subcommand it opens the live sphere view.",
		SilenceUsage: true,
		RunE:         runLive,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".blochsim", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.StringVar(&envelope, "envelope", def.Envelope.String(), "pulse envelope (square, gaussian, chirped)")
	pf.Float64Var(&dt, "dt", def.Dt, "timestep")
	pf.Float64Var(&duration, "time", def.Duration, "duration")
	pf.Float64Var(&detuning, "detuning", def.Constants.Detuning, "detuning Δ")
	pf.Float64Var(&t1, "t1", def.Constants.T1, "longitudinal relaxation time")
	pf.Float64Var(&t2, "t2", def.Constants.T2, "transverse relaxation time")
	pf.Float64Var(&center, "center", def.Pulse.Center, "pulse center")
	pf.Float64Var(&amplitude, "amplitude", def.Pulse.Amplitude, "pulse area")
	pf.Float64Var(&width, "width", def.Pulse.Width, "pulse width (fwhm for gaussian)")
	pf.Float64Var(&chirp, "chirp", def.Pulse.ChirpRate, "chirp rate")

	rootCmd.Flags().IntVar(&stepsPerFrame, "speed", 1, "ticks per frame")
	rootCmd.Flags().IntVar(&frameRate, "fps", 60, "frame rate")
	rootCmd.Flags().StringVar(&themeName, "theme", "cyberpunk", fmt.Sprintf("color theme %v", viz.ThemeNames()))
	rootCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address (e.g. :9090)")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "write live view logs to this file")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run simulation and store the trajectory",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot u, v and w of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "precession frequency and phase portrait",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run states as csv",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep one parameter (amplitude traces a rabi curve)",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&paramName, "param", "amplitude", "parameter to sweep")
	sweepCmd.Flags().Float64Var(&paramMin, "min", 0, "minimum value")
	sweepCmd.Flags().Float64Var(&paramMax, "max", 2*math.Pi, "maximum value")
	sweepCmd.Flags().IntVar(&numSteps, "steps", 25, "number of points")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "inversion under random parameter errors",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	monteCarloCmd.Flags().StringToStringVar(&spread, "spread", map[string]string{"amplitude": "0.1"}, "fractional spread per parameter")
	monteCarloCmd.Flags().IntVar(&numTrials, "trials", 100, "number of trials")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 uses the clock)")

	calibrateCmd := &cobra.Command{
		Use:   "calibrate",
		Short: "grid search a parameter so a metric hits a target",
		Args:  cobra.NoArgs,
		RunE:  runCalibrate,
	}
	calibrateCmd.Flags().StringVar(&calParam, "param", "amplitude", "parameter to search")
	calibrateCmd.Flags().Float64Var(&calMin, "min", 2.5, "minimum value")
	calibrateCmd.Flags().Float64Var(&calMax, "max", 3.8, "maximum value")
	calibrateCmd.Flags().IntVar(&calSteps, "steps", 27, "number of grid points")
	calibrateCmd.Flags().StringVar(&calMetric, "metric", "inversion", "metric to match")
	calibrateCmd.Flags().Float64Var(&calTarget, "target", 1, "target metric value")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "replay a scripted scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [file.svg]",
		Short: "render the sphere (or the u-v portrait) to svg",
		Args:  cobra.ExactArgs(1),
		RunE:  snapshot,
	}
	snapshotCmd.Flags().Float64Var(&snapshotAt, "at", -1, "simulation time to render (default: --time)")
	snapshotCmd.Flags().Float64Var(&snapshotScale, "scale", 4, "pixels per braille dot")
	snapshotCmd.Flags().BoolVar(&portrait, "portrait", false, "render the u-v trajectory instead of the sphere")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, analyzeCmd, exportJSONCmd, exportCSVCmd,
		sweepCmd, monteCarloCmd, calibrateCmd, scenarioCmd, snapshotCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveConfig layers defaults, the preset, the config file and finally
// any flags set on the command line.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Resolve(preset, configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	names := make([]string, 0, len(paramFlags))
	for name := range paramFlags {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetFloat64(name)
		if err != nil {
			return nil, err
		}
		if err := cfg.SetParam(paramFlags[name], v); err != nil {
			return nil, err
		}
	}

	if flags.Changed("envelope") {
		kind, err := pulse.ParseKind(envelope)
		if err != nil {
			return nil, err
		}
		cfg.Envelope = kind
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	// stderr belongs to the alt screen while the view is up
	liveLogger := logging.Noop()
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		liveLogger = logging.New(logging.Config{
			Level:  os.Getenv("LOG_LEVEL"),
			Format: os.Getenv("LOG_FORMAT"),
			Output: f,
		})
	}

	ctrl := sim.New(cfg.SimConfig())
	ctrl.SetLogger(liveLogger)

	opts := viz.Options{
		StepsPerFrame: stepsPerFrame,
		FPS:           frameRate,
		Theme:         themeName,
	}

	var collector *observability.SimCollector
	if metricsAddr != "" {
		collector, err = observability.NewSimCollector(nil)
		if err != nil {
			return err
		}
		collector.Attach(ctrl)
		opts.Frame = collector.Frame
	}

	m := viz.NewModel(ctrl, sim.NewEditQueue(), opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	if collector != nil {
		go func() {
			if err := collector.Serve(ctx, metricsAddr); err != nil {
				liveLogger.Error(ctx, "metrics server stopped", logging.Err(err))
				p.Send(viz.ErrMsg{Err: err})
			}
		}()
		liveLogger.Info(ctx, "serving metrics", logging.String("addr", metricsAddr))
	}

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
