package experiment

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/san-kum/ballsim/internal/config"
	"github.com/san-kum/ballsim/internal/dynamo"
	"github.com/san-kum/ballsim/internal/sim"
)

// Scenario populates a fresh simulation according to cfg.
type Scenario func(s *sim.Simulation, cfg *config.Config) error

type entry struct {
	build       Scenario
	description string
}

type Registry struct {
	scenarios map[string]entry
}

func NewRegistry() *Registry {
	r := &Registry{scenarios: make(map[string]entry)}

	r.Register("random", "init_balls random balls, as on page load", random)
	r.Register("empty", "no balls; driven by scripted clicks", func(*sim.Simulation, *config.Config) error { return nil })
	r.Register("headon", "two equal balls colliding along the horizontal center line", headOn)
	r.Register("stack", "init_balls balls spawned on the same point", stack)
	r.Register("gas", "init_balls small balls on a grid with scattered headings", gas)
	r.Register("wall", "a column of balls thrown at the left wall", wall)

	return r
}

func (r *Registry) Register(name, description string, fn Scenario) {
	r.scenarios[name] = entry{build: fn, description: description}
}

func (r *Registry) Get(name string) (Scenario, error) {
	e, ok := r.scenarios[name]
	if !ok {
		return nil, fmt.Errorf("unknown scenario: %s", name)
	}
	return e.build, nil
}

func (r *Registry) Describe(name string) string {
	return r.scenarios[name].description
}

func (r *Registry) List() []string {
	return slices.Sorted(maps.Keys(r.scenarios))
}

func random(s *sim.Simulation, cfg *config.Config) error {
	_, err := s.SpawnRandom(cfg.World.InitBalls, cfg.Bounds())
	return err
}

func headOn(s *sim.Simulation, cfg *config.Config) error {
	f := s.Factory()
	bounds := cfg.Bounds()
	radius := (cfg.Spawn.MinRadius + cfg.Spawn.MaxRadius) / 2
	speed := bounds.Width * cfg.Spawn.SpeedFactor
	y := bounds.Height / 2

	left, err := f.Ball(dynamo.RandomColor(f.Rand()), radius, dynamo.V(bounds.Width/4, y), dynamo.V(speed, 0))
	if err != nil {
		return err
	}
	right, err := f.Ball(dynamo.RandomColor(f.Rand()), radius, dynamo.V(3*bounds.Width/4, y), dynamo.V(-speed, 0))
	if err != nil {
		return err
	}
	if err := s.Spawn(left); err != nil {
		return err
	}
	return s.Spawn(right)
}

func stack(s *sim.Simulation, cfg *config.Config) error {
	bounds := cfg.Bounds()
	for i := 0; i < cfg.World.InitBalls; i++ {
		if _, err := s.SpawnAt(bounds.Center(), bounds); err != nil {
			return err
		}
	}
	return nil
}

func gas(s *sim.Simulation, cfg *config.Config) error {
	n := cfg.World.InitBalls
	if n == 0 {
		return nil
	}
	bounds := cfg.Bounds()
	cols := int(math.Ceil(math.Sqrt(float64(n) * bounds.Width / bounds.Height)))
	rows := (n + cols - 1) / cols
	cellW, cellH := bounds.Width/float64(cols), bounds.Height/float64(rows)

	for i := 0; i < n; i++ {
		p := dynamo.V((float64(i%cols)+0.5)*cellW, (float64(i/cols)+0.5)*cellH)
		b, err := s.SpawnAt(p, bounds)
		if err != nil {
			return err
		}
		if b == nil {
			break
		}
	}
	return nil
}

func wall(s *sim.Simulation, cfg *config.Config) error {
	f := s.Factory()
	bounds := cfg.Bounds()
	n := cfg.World.InitBalls
	speed := bounds.Width * cfg.Spawn.SpeedFactor

	for i := 0; i < n; i++ {
		radius := cfg.Spawn.MinRadius + (cfg.Spawn.MaxRadius-cfg.Spawn.MinRadius)*float64(i)/float64(max(n-1, 1))
		y := bounds.Height * (float64(i) + 0.5) / float64(n)
		vel := dynamo.V(-speed, 0)
		vel.Rotate(cfg.Spawn.Spread * (2*float64(i)/float64(max(n-1, 1)) - 1))

		b, err := f.Ball(dynamo.RandomColor(f.Rand()), radius, dynamo.V(bounds.Width/2, y), vel)
		if err != nil {
			return err
		}
		if err := s.Spawn(b); err != nil {
			return err
		}
	}
	return nil
}
