package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/ballsim/internal/config"
	"github.com/san-kum/ballsim/internal/experiment"
	"github.com/san-kum/ballsim/internal/gui"
	"github.com/san-kum/ballsim/internal/metrics"
	"github.com/san-kum/ballsim/internal/sim"
	"github.com/san-kum/ballsim/internal/storage"
	"github.com/san-kum/ballsim/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	dt         float64
	duration   float64
	seed       int64
	initBalls  int
	maxBalls   int
	width      float64
	height     float64
	// Live and GUI views
	scale     float64
	gifPath   string
	withAudio bool
	// Ensemble and sweep
	numRuns    int
	sweepParam string
	sweepFrom  float64
	sweepTo    float64
	sweepSteps int
	measure    string
	// Monte Carlo
	perturbation float64
	maxOverlap   float64

	logger *log.Logger
)

// main registers every command and exits 1 when the chosen one fails. With
// no subcommand it opens the scenario menu in the terminal.
func main() {
	rootCmd := &cobra.Command{
		Use:           "ballsim",
		Short:         "bouncing ball simulation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLogger(logLevel)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, nil)
			if err != nil {
				return err
			}
			return viz.RunInteractive(cfg, experiment.NewRegistry(), scale)
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".ballsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.Flags().Float64Var(&scale, "scale", viz.DefaultScale, "world units per braille dot")
	addConfigFlags(rootCmd)

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a headless simulation and store it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	addWorldFlags(runCmd)
	runCmd.Flags().StringVar(&gifPath, "gif", "", "also record the run as a GIF animation")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot population, energy and momentum of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export frames (or the final balls) to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().Bool("balls", false, "export the final ball snapshot instead of frames")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw the final balls (or the energy curve) as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().Bool("energy", false, "plot kinetic energy over time instead")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "summary statistics and energy spectrum",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "velocity scatter of the final balls",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}

	liveCmd := &cobra.Command{
		Use:   "live [scenario]",
		Short: "run a scenario in the terminal with mouse input",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)
	liveCmd.Flags().Float64Var(&scale, "scale", viz.DefaultScale, "world units per braille dot")
	liveCmd.Flags().StringVar(&gifPath, "gif", "ballsim.gif", "file written by the G key")

	guiCmd := &cobra.Command{
		Use:   "gui [scenario]",
		Short: "run a scenario in a window",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runGUI,
	}
	addConfigFlags(guiCmd)
	addWorldFlags(guiCmd)
	guiCmd.Flags().BoolVar(&withAudio, "audio", false, "sonify energy and collisions")

	presetsCmd := &cobra.Command{
		Use:   "presets [scenario]",
		Short: "list available presets for a scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for scenario: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "list scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := experiment.NewRegistry()
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			for _, name := range registry.List() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", name, registry.Describe(name), strings.Join(config.ListPresets(name), ", "))
			}
			return w.Flush()
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench [scenario]",
		Short: "measure steps per second for growing populations",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchScenario,
	}
	addConfigFlags(benchCmd)

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [scenario]",
		Short: "run independently seeded copies in parallel",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEnsemble,
	}
	addConfigFlags(ensembleCmd)
	addWorldFlags(ensembleCmd)
	ensembleCmd.Flags().IntVarP(&numRuns, "runs", "n", 8, "number of runs")

	sweepCmd := &cobra.Command{
		Use:   "sweep [scenario]",
		Short: "vary one parameter and chart a metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addConfigFlags(sweepCmd)
	addWorldFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "balls", "parameter to vary ("+strings.Join(sweepParams(), ", ")+")")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 5, "first value")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 50, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 10, "number of values")
	sweepCmd.Flags().StringVar(&measure, "measure", "collision_rate", "metric to chart")

	batchCmd := &cobra.Command{
		Use:   "batch [file]",
		Short: "run and save every step of a yaml batch file",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}
	addConfigFlags(batchCmd)
	addWorldFlags(batchCmd)

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [scenario]",
		Short: "count stable runs under randomly perturbed spawn parameters",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMonteCarlo,
	}
	addConfigFlags(monteCarloCmd)
	addWorldFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVarP(&numRuns, "trials", "n", 20, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturbation, "perturbation", 0.2, "relative jitter of speed factor and max radius")
	monteCarloCmd.Flags().Float64Var(&maxOverlap, "max-overlap", 1.0, "deepest overlap in pixels a stable run may reach")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd,
		analyzeCmd, phaseCmd, liveCmd, guiCmd, presetsCmd, scenariosCmd, benchCmd, ensembleCmd, sweepCmd,
		batchCmd, monteCarloCmd)

	if err := rootCmd.Execute(); err != nil {
		if logger == nil {
			logger = log.New(os.Stderr)
		}
		logger.Error(err)
		os.Exit(1)
	}
}

func newLogger(level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           lvl,
		Prefix:          "ballsim",
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	}), nil
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml or toml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep in ms")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration in seconds")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	cmd.Flags().IntVar(&initBalls, "balls", config.DefaultInitBalls, "initial number of balls")
	cmd.Flags().IntVar(&maxBalls, "max-balls", sim.DefaultMaxBalls, "population limit for clicks and random spawns")
}

func addWorldFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&width, "width", config.DefaultWidth, "world width")
	cmd.Flags().Float64Var(&height, "height", config.DefaultHeight, "world height")
}

// loadConfig layers defaults, the preset, the config file and finally any
// flag the user set explicitly. A scenario argument wins over all of them.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		cfg.Scenario = args[0]
	}

	if preset != "" {
		p := config.GetPreset(cfg.Scenario, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Scenario))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if len(args) > 0 {
			cfg.Scenario = args[0]
		}
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}
	if flags.Changed("balls") {
		cfg.World.InitBalls = initBalls
	}
	if flags.Changed("max-balls") {
		cfg.World.MaxBalls = maxBalls
	}
	if flags.Changed("width") {
		cfg.World.Width = width
	}
	if flags.Changed("height") {
		cfg.World.Height = height
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("config", "scenario", cfg.Scenario, "dt", cfg.Dt, "duration", cfg.Duration, "seed", cfg.Seed)
	return cfg, nil
}

func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(cfg, experiment.NewRegistry(), logger)
	if err := exp.Setup(metrics.Defaults()); err != nil {
		return err
	}

	var rec *gifRecorder
	if gifPath != "" {
		rec = newGIFRecorder(cfg)
		exp.GetSimulator().AddObserver(rec)
	}

	ctx, cancel := interruptible()
	defer cancel()

	fmt.Printf("running %s scenario...\n", cfg.Scenario)
	start := time.Now()
	result, err := exp.Run(ctx)
	if err != nil && result == nil {
		return err
	}
	if err != nil {
		logger.Warn("run stopped early", "err", err, "steps", result.StepsTaken)
	}
	elapsed := time.Since(start)

	runID, err := st.Save(storage.RunMetadata{
		Scenario: cfg.Scenario,
		Seed:     cfg.Seed,
		Dt:       cfg.Dt,
		Duration: cfg.Duration,
		Width:    cfg.World.Width,
		Height:   cfg.World.Height,
		MaxBalls: cfg.World.MaxBalls,
	}, result)
	if err != nil {
		return err
	}

	if rec != nil {
		if err := rec.save(gifPath); err != nil {
			return err
		}
		logger.Info("gif written", "path", gifPath, "frames", len(rec.frames))
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("balls: %d\n", len(result.Final))
	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	m, err := viz.NewModel(cfg.Scenario, experiment.ForBounds(cfg, experiment.NewRegistry(), nil), scale)
	if err != nil {
		return err
	}
	m.GIFPath = gifPath
	return viz.Run(m)
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	return gui.Run(experiment.ForBounds(cfg, experiment.NewRegistry(), logger), gui.Options{
		Title:  "ballsim - " + cfg.Scenario,
		Width:  int(cfg.World.Width),
		Height: int(cfg.World.Height),
		FPS:    cfg.FPS,
		Audio:  withAudio,
		Logger: logger,
	})
}

func benchScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	registry := experiment.NewRegistry()

	fmt.Printf("benchmarking %s\n\n", cfg.Scenario)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BALLS\tSTEPS\tCONTACTS\tTIME\tSTEPS/SEC")

	for _, n := range []int{10, 50, 100, 200} {
		c := cfg.Clone()
		c.World.InitBalls = n
		c.World.MaxBalls = max(c.World.MaxBalls, n)

		s, err := experiment.Build(c, registry, c.Seed, nil)
		if err != nil {
			return err
		}
		simCfg, err := c.SimConfig()
		if err != nil {
			return err
		}

		contacts := 0
		start := time.Now()
		steps := 0
		err = s.RunWithCallback(context.Background(), simCfg, func(_ *sim.Simulation, r sim.Report) bool {
			contacts += r.Contacts
			steps++
			return true
		})
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		fmt.Fprintf(w, "%d\t%d\t%d\t%v\t%.0f\n", n, steps, contacts, elapsed.Round(time.Microsecond), float64(steps)/elapsed.Seconds())
	}
	return w.Flush()
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if numRuns < 1 {
		return fmt.Errorf("runs must be positive, got %d", numRuns)
	}
	simCfg, err := cfg.SimConfig()
	if err != nil {
		return err
	}

	ctx, cancel := interruptible()
	defer cancel()

	logger.Info("ensemble", "scenario", cfg.Scenario, "runs", numRuns, "seed", cfg.Seed)
	start := time.Now()
	results, err := experiment.Ensemble(cfg, experiment.NewRegistry(), numRuns, metrics.Defaults).Run(ctx, simCfg)
	if err != nil {
		return err
	}

	names := metricNames(results[0].Metrics)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tBALLS\t"+strings.ToUpper(strings.Join(names, "\t")))
	means := make(map[string]float64)
	for i, r := range results {
		row := []string{fmt.Sprint(cfg.Seed + int64(i)), fmt.Sprint(len(r.Final))}
		for _, name := range names {
			row = append(row, fmt.Sprintf("%.4g", r.Metrics[name]))
			means[name] += r.Metrics[name] / float64(len(results))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	row := []string{"mean", ""}
	for _, name := range names {
		row = append(row, fmt.Sprintf("%.4g", means[name]))
	}
	fmt.Fprintln(w, strings.Join(row, "\t"))
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d runs in %v\n", len(results), time.Since(start).Round(time.Millisecond))
	return nil
}
