package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"maps"
	"os"
	"slices"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/ballsim/internal/analysis"
	"github.com/san-kum/ballsim/internal/config"
	"github.com/san-kum/ballsim/internal/dynamo"
	"github.com/san-kum/ballsim/internal/experiment"
	"github.com/san-kum/ballsim/internal/export"
	"github.com/san-kum/ballsim/internal/metrics"
	"github.com/san-kum/ballsim/internal/physics"
	"github.com/san-kum/ballsim/internal/sim"
	"github.com/san-kum/ballsim/internal/storage"
)

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
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tDURATION\tDT\tSTEPS\tWORLD")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.2fms\t%d\t%.0fx%.0f\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Steps,
			run.Width,
			run.Height,
		)
	}

	return w.Flush()
}

// loadRun reads the metadata and frames of a stored run.
func loadRun(runID string) (*storage.RunMetadata, []sim.Frame, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(frames) == 0 {
		return nil, nil, fmt.Errorf("run %s has no frames", runID)
	}
	return meta, frames, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("frames: %d\n\n", len(frames))

	series := []struct {
		caption string
		value   func(sim.Frame) float64
	}{
		{"balls", func(f sim.Frame) float64 { return float64(f.Count) }},
		{"kinetic energy", func(f sim.Frame) float64 { return f.Energy }},
		{"momentum", func(f sim.Frame) float64 { return f.Momentum }},
		{"contacts per frame", func(f sim.Frame) float64 { return float64(f.Contacts) }},
	}

	for _, s := range series {
		data := make([]float64, len(frames))
		for i, f := range frames {
			data[i] = s.value(f)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	balls, _ := cmd.Flags().GetBool("balls")
	if balls {
		snapshot, err := st.LoadSnapshot(args[0])
		if err != nil {
			return err
		}
		return storage.WriteSnapshot(os.Stdout, snapshot)
	}

	frames, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}
	return storage.WriteFrames(os.Stdout, frames)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}
	final, err := storage.New(dataDir).LoadSnapshot(args[0])
	if err != nil {
		return err
	}

	return storage.ExportJSON(os.Stdout, *meta, &sim.Result{
		Frames:      frames,
		Final:       final,
		Metrics:     meta.Metrics,
		StepsTaken:  meta.Steps,
		EnergyDrift: meta.EnergyDrift,
	})
}

func exportSVG(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	energy, _ := cmd.Flags().GetBool("energy")

	var svg string
	if energy {
		_, frames, err := loadRun(args[0])
		if err != nil {
			return err
		}
		svg = export.EnergyToSVG(frames, 800, 300)
	} else {
		st := storage.New(dataDir)
		meta, err := st.Load(args[0])
		if err != nil {
			return err
		}
		balls, err := st.LoadSnapshot(args[0])
		if err != nil {
			return err
		}
		svg = export.SnapshotToSVG(balls, dynamo.Bounds{Width: meta.Width, Height: meta.Height})
	}

	if output == "" {
		_, err := io.WriteString(os.Stdout, svg)
		return err
	}
	if err := os.WriteFile(output, []byte(svg), 0644); err != nil {
		return err
	}
	logger.Info("svg written", "path", output)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n\n", meta.Scenario)
	fmt.Println(analysis.Summarize(frames))

	energy := make([]float64, len(frames))
	for i, f := range frames {
		energy[i] = f.Energy
	}

	n := 1
	for n < len(energy) {
		n *= 2
	}
	padded := make([]float64, n)
	copy(padded, energy)

	ps := analysis.PowerSpectrum(padded)
	if len(ps) < 4 {
		return nil
	}
	plotData := ps[:len(ps)/4]

	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum (kinetic energy)"),
	)
	fmt.Println(graph)
	fmt.Println()

	if period := analysis.DominantPeriod(padded, meta.Dt); period > 0 {
		fmt.Printf("dominant period: %.1f ms (%.3f hz)\n", period, 1000/period)
	} else {
		fmt.Println("no dominant period")
	}

	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	balls, err := st.LoadSnapshot(args[0])
	if err != nil {
		return err
	}
	if len(balls) == 0 {
		return fmt.Errorf("run %s ended with no balls", args[0])
	}

	fmt.Printf("velocity portrait: %s\n", meta.ID)
	fmt.Printf("scenario: %s, balls: %d\n", meta.Scenario, len(balls))
	fmt.Printf("x-axis: vx, y-axis: vy\n\n")
	fmt.Println(analysis.ScatterToASCII(analysis.VelocityPortrait(balls), 70, 20))
	return nil
}

// sweepSetters maps each sweepable parameter to the config field it sets.
var sweepSetters = map[string]func(c *config.Config, v float64){
	"balls":   setBalls,
	"speed":   func(c *config.Config, v float64) { c.Spawn.SpeedFactor = v },
	"spread":  func(c *config.Config, v float64) { c.Spawn.Spread = v },
	"radius":  func(c *config.Config, v float64) { c.Spawn.MaxRadius = max(v, c.Spawn.MinRadius) },
	"density": func(c *config.Config, v float64) { c.World.Density = v },
}

func setBalls(c *config.Config, v float64) {
	c.World.InitBalls = int(v)
	c.World.MaxBalls = max(c.World.MaxBalls, int(v))
}

func sweepParams() []string {
	return slices.Sorted(maps.Keys(sweepSetters))
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	set, ok := sweepSetters[sweepParam]
	if !ok {
		return fmt.Errorf("unknown sweep parameter: %s (available: %v)", sweepParam, sweepParams())
	}
	registry := experiment.NewRegistry()

	ctx, cancel := interruptible()
	defer cancel()

	run := func(ctx context.Context, v float64) (*sim.Result, error) {
		c := cfg.Clone()
		set(c, v)
		exp := experiment.New(c, registry, nil)
		if err := exp.Setup(metrics.Defaults()); err != nil {
			return nil, err
		}
		return exp.Run(ctx)
	}
	pick := func(r *sim.Result) float64 { return r.Metrics[measure] }

	logger.Info("sweep", "scenario", cfg.Scenario, "param", sweepParam, "from", sweepFrom, "to", sweepTo, "measure", measure)
	points := analysis.Sweep(ctx, sweepFrom, sweepTo, sweepSteps, run, pick)

	fmt.Printf("%s vs %s\n\n", measure, sweepParam)
	fmt.Print(analysis.SweepToASCII(points, 50))

	var errs []error
	for _, p := range points {
		if p.Err != nil {
			errs = append(errs, fmt.Errorf("%s=%g: %w", sweepParam, p.Param, p.Err))
		}
	}
	return errors.Join(errs...)
}

func printMetrics(m map[string]float64) {
	for _, name := range metricNames(m) {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func metricNames(m map[string]float64) []string {
	return slices.Sorted(maps.Keys(m))
}

// gifRecorder rasterizes every few steps of a headless run.
type gifRecorder struct {
	bounds dynamo.Bounds
	every  int
	step   int
	frames []*image.Paletted
}

const (
	gifScale     = 0.5
	gifMaxFrames = 600
)

func newGIFRecorder(cfg *config.Config) *gifRecorder {
	// One frame per 20 ms of simulated time, the GIF delay granularity.
	return &gifRecorder{bounds: cfg.Bounds(), every: max(int(20/cfg.Dt), 1)}
}

func (g *gifRecorder) OnStep(balls []*physics.Ball, _ sim.Report) {
	g.step++
	if g.step%g.every != 0 || len(g.frames) >= gifMaxFrames {
		return
	}
	g.frames = append(g.frames, export.Rasterize(sim.Snap(balls), g.bounds, gifScale))
}

func (g *gifRecorder) save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	return errors.Join(export.WriteGIF(f, g.frames, 2), f.Close())
}
