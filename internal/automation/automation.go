package automation

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/ballsim/internal/config"
	"github.com/san-kum/ballsim/internal/experiment"
	"github.com/san-kum/ballsim/internal/metrics"
	"github.com/san-kum/ballsim/internal/sim"
	"github.com/san-kum/ballsim/internal/storage"
)

// Batch is a scripted sequence of headless runs.
type Batch struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`

	dir string
}

// Step is a single run in a batch. Zero fields keep the value inherited from
// the base config, the preset or the referenced config file, in that order.
type Step struct {
	Scenario string  `yaml:"scenario"`
	Preset   string  `yaml:"preset"`
	Config   string  `yaml:"config"`
	Seed     int64   `yaml:"seed"`
	Duration float64 `yaml:"duration"`
	Dt       float64 `yaml:"dt_ms"`
	Balls    int     `yaml:"balls"`
	SaveAs   string  `yaml:"save_as"`
}

// LoadBatch reads a batch file. Config paths in its steps are relative to
// the file.
func LoadBatch(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var batch Batch
	if err := yaml.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(batch.Steps) == 0 {
		return nil, fmt.Errorf("batch %s has no steps", path)
	}
	batch.dir = filepath.Dir(path)
	return &batch, nil
}

// Resolve builds the run configuration for the step.
func (s Step) Resolve(base *config.Config, dir string) (*config.Config, error) {
	cfg := base.Clone()
	if s.Config != "" {
		path := s.Config
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if s.Scenario != "" {
		cfg.Scenario = s.Scenario
	}
	if s.Preset != "" {
		p := config.GetPreset(cfg.Scenario, s.Preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %q for scenario %s", s.Preset, cfg.Scenario)
		}
		cfg = p
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	if s.Duration > 0 {
		cfg.Duration = s.Duration
	}
	if s.Dt > 0 {
		cfg.Dt = s.Dt
	}
	if s.Balls > 0 {
		cfg.World.InitBalls = s.Balls
		cfg.World.MaxBalls = max(cfg.World.MaxBalls, s.Balls)
	}
	return cfg, nil
}

func (s Step) label(i int) string {
	if s.SaveAs != "" {
		return s.SaveAs
	}
	return fmt.Sprintf("step%d", i+1)
}

// StepResult is the outcome of one batch step. RunID is empty when no store
// was given.
type StepResult struct {
	Label  string
	Config *config.Config
	Result *sim.Result
	RunID  string
}

// RunBatch executes every step in order with the default metrics and saves
// each result to st when it is not nil. It stops at the first failing step
// and returns the results gathered so far.
func RunBatch(ctx context.Context, batch *Batch, base *config.Config, registry *experiment.Registry, st *storage.Store, logger *log.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = log.New(os.Stderr)
	}
	results := make([]StepResult, 0, len(batch.Steps))

	for i, step := range batch.Steps {
		label := step.label(i)
		cfg, err := step.Resolve(base, batch.dir)
		if err != nil {
			return results, fmt.Errorf("%s: %w", label, err)
		}
		logger.Info("batch step", "n", i+1, "of", len(batch.Steps), "label", label, "scenario", cfg.Scenario)

		exp := experiment.New(cfg, registry, nil)
		if err := exp.Setup(metrics.Defaults()); err != nil {
			return results, fmt.Errorf("%s setup: %w", label, err)
		}
		result, err := exp.Run(ctx)
		if err != nil && result == nil {
			return results, fmt.Errorf("%s run: %w", label, err)
		}

		sr := StepResult{Label: label, Config: cfg, Result: result}
		if st != nil {
			runID, serr := st.Save(storage.RunMetadata{
				Scenario: cfg.Scenario,
				Seed:     cfg.Seed,
				Dt:       cfg.Dt,
				Duration: cfg.Duration,
				Width:    cfg.World.Width,
				Height:   cfg.World.Height,
				MaxBalls: cfg.World.MaxBalls,
			}, result)
			if serr != nil {
				return results, fmt.Errorf("%s save: %w", label, serr)
			}
			sr.RunID = runID
		}
		results = append(results, sr)

		if err != nil {
			return results, fmt.Errorf("%s run: %w", label, err)
		}
	}

	return results, nil
}

// MonteCarloConfig defines randomized stability trials around a base
// configuration.
type MonteCarloConfig struct {
	Base *config.Config
	// Perturbation is the relative jitter applied to the spawn speed factor
	// and the radius range.
	Perturbation float64
	Trials       int
	Seed         int64
	// MaxOverlap is the deepest interpenetration, in pixels, a stable run
	// may reach.
	MaxOverlap float64
}

type MonteCarloResult struct {
	Trial       int
	Seed        int64
	SpeedFactor float64
	MaxRadius   float64
	Overlap     float64
	Drift       float64
	Stable      bool
	Err         error
}

// RunMonteCarlo runs cfg.Trials perturbed copies of the base configuration.
// A trial is stable when it finishes without errors and its deepest overlap
// stays within cfg.MaxOverlap.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, registry *experiment.Registry, logger *log.Logger) ([]MonteCarloResult, error) {
	if cfg.Trials < 1 {
		return nil, fmt.Errorf("trials must be at least 1, got %d", cfg.Trials)
	}
	if logger == nil {
		logger = log.New(os.Stderr)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	jitter := func(v float64) float64 {
		return v * (1 + (rng.Float64()-0.5)*2*cfg.Perturbation)
	}

	results := make([]MonteCarloResult, 0, cfg.Trials)
	for trial := 0; trial < cfg.Trials; trial++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		c := cfg.Base.Clone()
		c.Seed = rng.Int63()
		c.Spawn.SpeedFactor = max(jitter(c.Spawn.SpeedFactor), 0)
		c.Spawn.MaxRadius = max(jitter(c.Spawn.MaxRadius), c.Spawn.MinRadius)

		r := MonteCarloResult{
			Trial:       trial,
			Seed:        c.Seed,
			SpeedFactor: c.Spawn.SpeedFactor,
			MaxRadius:   c.Spawn.MaxRadius,
		}

		exp := experiment.New(c, registry, nil)
		if err := exp.Setup(metrics.Defaults()); err != nil {
			r.Err = err
		} else if result, err := exp.Run(ctx); err != nil {
			r.Err = err
		} else {
			r.Overlap = result.Metrics["max_overlap"]
			r.Drift = result.EnergyDrift
			r.Stable = len(result.Errors) == 0 && r.Overlap <= cfg.MaxOverlap
		}
		results = append(results, r)

		if (trial+1)%10 == 0 {
			logger.Info("monte carlo", "done", trial+1, "of", cfg.Trials)
		}
	}

	return results, nil
}

// MonteCarloStats counts stable and unstable trials.
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
