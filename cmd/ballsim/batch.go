package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/ballsim/internal/automation"
	"github.com/san-kum/ballsim/internal/experiment"
	"github.com/san-kum/ballsim/internal/storage"
)

func runBatch(cmd *cobra.Command, args []string) error {
	batch, err := automation.LoadBatch(args[0])
	if err != nil {
		return err
	}
	// Flags and --config form the base every step starts from.
	base, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := interruptible()
	defer cancel()

	if batch.Name != "" {
		fmt.Printf("batch: %s\n", batch.Name)
	}
	if batch.Description != "" {
		fmt.Printf("%s\n", batch.Description)
	}
	results, runErr := automation.RunBatch(ctx, batch, base, experiment.NewRegistry(), st, logger)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nSTEP\tSCENARIO\tRUN\tSTEPS\tBALLS\tDRIFT")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.4g\n",
			r.Label, r.Config.Scenario, r.RunID, r.Result.StepsTaken, len(r.Result.Final), r.Result.EnergyDrift)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx, cancel := interruptible()
	defer cancel()

	logger.Info("monte carlo", "scenario", cfg.Scenario, "trials", numRuns, "perturbation", perturbation)
	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Base:         cfg,
		Perturbation: perturbation,
		Trials:       numRuns,
		Seed:         cfg.Seed,
		MaxOverlap:   maxOverlap,
	}, experiment.NewRegistry(), logger)
	if err != nil && len(results) == 0 {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRIAL\tSEED\tSPEED\tMAX_RADIUS\tOVERLAP\tDRIFT\tSTABLE")
	for _, r := range results {
		stable := "yes"
		if r.Err != nil {
			stable = r.Err.Error()
		} else if !r.Stable {
			stable = "no"
		}
		fmt.Fprintf(w, "%d\t%d\t%.3f\t%.1f\t%.3f\t%.4g\t%s\n",
			r.Trial, r.Seed, r.SpeedFactor, r.MaxRadius, r.Overlap, r.Drift, stable)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("\nstable: %d, unstable: %d (%.0f%%)\n", stable, unstable, 100*float64(stable)/float64(len(results)))
	return err
}
