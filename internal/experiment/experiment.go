package experiment

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/san-kum/ballsim/internal/config"
	"github.com/san-kum/ballsim/internal/dynamo"
	"github.com/san-kum/ballsim/internal/factory"
	"github.com/san-kum/ballsim/internal/sim"
)

type Experiment struct {
	cfg       *config.Config
	registry  *Registry
	simulator *sim.Simulation
	logger    *log.Logger
}

func New(cfg *config.Config, registry *Registry, logger *log.Logger) *Experiment {
	return &Experiment{cfg: cfg, registry: registry, logger: logger}
}

// Build creates a simulation seeded with seed and populated by the
// configured scenario.
func Build(cfg *config.Config, registry *Registry, seed int64, logger *log.Logger) (*sim.Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	scenario, err := registry.Get(cfg.Scenario)
	if err != nil {
		return nil, err
	}
	f, err := factory.New(seed, cfg.FactoryParams())
	if err != nil {
		return nil, err
	}

	s := sim.New(f, cfg.World.MaxBalls)
	if logger != nil {
		s.SetLogger(logger)
	}
	if err := scenario(s, cfg); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", cfg.Scenario, err)
	}
	return s, nil
}

// Builder creates a populated simulation for the given world bounds.
type Builder func(bounds dynamo.Bounds) (*sim.Simulation, error)

// ForBounds returns a Builder that runs the configured scenario in a world
// resized to the requested bounds. cfg itself is left untouched.
func ForBounds(cfg *config.Config, registry *Registry, logger *log.Logger) Builder {
	return func(bounds dynamo.Bounds) (*sim.Simulation, error) {
		c := cfg.Clone()
		c.World.Width, c.World.Height = bounds.Width, bounds.Height
		return Build(c, registry, c.Seed, logger)
	}
}

func (e *Experiment) Setup(metrics []sim.Metric) error {
	s, err := Build(e.cfg, e.registry, e.cfg.Seed, e.logger)
	if err != nil {
		return err
	}
	for _, m := range metrics {
		s.AddMetric(m)
	}
	e.simulator = s
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	simCfg, err := e.cfg.SimConfig()
	if err != nil {
		return nil, err
	}

	return e.simulator.Run(ctx, simCfg)
}

// GetSimulator returns the underlying simulation for adding observers
func (e *Experiment) GetSimulator() *sim.Simulation {
	return e.simulator
}

// Ensemble prepares n independent runs seeded from cfg.Seed upward.
func Ensemble(cfg *config.Config, registry *Registry, n int, metrics func() []sim.Metric) *sim.Ensemble {
	build := func(seed int64) (*sim.Simulation, error) {
		s, err := Build(cfg, registry, seed, nil)
		if err != nil {
			return nil, err
		}
		if metrics != nil {
			for _, m := range metrics() {
				s.AddMetric(m)
			}
		}
		return s, nil
	}
	return sim.NewEnsemble(build, n, cfg.Seed)
}
