package config

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/ballsim/internal/control"
	"github.com/san-kum/ballsim/internal/dynamo"
	"github.com/san-kum/ballsim/internal/factory"
	"github.com/san-kum/ballsim/internal/physics"
	"github.com/san-kum/ballsim/internal/sim"
)

const (
	DefaultDt        = 1000.0 / 60
	DefaultDuration  = 10.0
	DefaultFPS       = 60
	DefaultWidth     = 800.0
	DefaultHeight    = 600.0
	DefaultInitBalls = 10
	DefaultSpeed     = 0.25
)

type Config struct {
	Scenario string        `yaml:"scenario" toml:"scenario"`
	Dt       float64       `yaml:"dt_ms" toml:"dt_ms"`
	Duration float64       `yaml:"duration" toml:"duration"`
	Seed     int64         `yaml:"seed" toml:"seed"`
	FPS      int           `yaml:"fps" toml:"fps"`
	World    WorldConfig   `yaml:"world" toml:"world"`
	Spawn    SpawnConfig   `yaml:"spawn" toml:"spawn"`
	Clicks   []ClickConfig `yaml:"clicks,omitempty" toml:"clicks,omitempty"`
}

type WorldConfig struct {
	Width     float64 `yaml:"width" toml:"width"`
	Height    float64 `yaml:"height" toml:"height"`
	MaxBalls  int     `yaml:"max_balls" toml:"max_balls"`
	InitBalls int     `yaml:"init_balls" toml:"init_balls"`
	Density   float64 `yaml:"density" toml:"density"`
}

type SpawnConfig struct {
	MinRadius   float64 `yaml:"min_radius" toml:"min_radius"`
	MaxRadius   float64 `yaml:"max_radius" toml:"max_radius"`
	SpeedFactor float64 `yaml:"speed_factor" toml:"speed_factor"`
	Spread      float64 `yaml:"spread" toml:"spread"`
}

// ClickConfig is a scripted pointer event. Kind is one of click, spawn or
// clear and defaults to click.
type ClickConfig struct {
	At   float64 `yaml:"at_ms" toml:"at_ms"`
	X    float64 `yaml:"x" toml:"x"`
	Y    float64 `yaml:"y" toml:"y"`
	Kind string  `yaml:"kind,omitempty" toml:"kind,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Scenario: "random",
		Dt:       DefaultDt,
		Duration: DefaultDuration,
		FPS:      DefaultFPS,
		World: WorldConfig{
			Width:     DefaultWidth,
			Height:    DefaultHeight,
			MaxBalls:  sim.DefaultMaxBalls,
			InitBalls: DefaultInitBalls,
			Density:   physics.DefaultDensity,
		},
		Spawn: SpawnConfig{
			MinRadius:   10,
			MaxRadius:   80,
			SpeedFactor: DefaultSpeed,
			Spread:      math.Pi / 16,
		},
	}
}

// Load reads a YAML or TOML file, chosen by extension, over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if isTOML(path) {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	var data []byte
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return err
		}
		data = buf.Bytes()
	} else {
		var err error
		if data, err = yaml.Marshal(cfg); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func (c *Config) Validate() error {
	if !(c.Dt > 0) {
		return fmt.Errorf("%w: dt_ms must be positive, got %g", dynamo.ErrInvalidStep, c.Dt)
	}
	if !(c.Duration > 0) {
		return fmt.Errorf("%w: duration must be positive, got %g", dynamo.ErrParameterBounds, c.Duration)
	}
	if c.World.MaxBalls < 0 || c.World.InitBalls < 0 {
		return fmt.Errorf("%w: ball counts must not be negative", dynamo.ErrParameterBounds)
	}
	if err := c.Bounds().Validate(); err != nil {
		return err
	}
	return c.FactoryParams().Validate()
}

func (c *Config) Bounds() dynamo.Bounds {
	return dynamo.Bounds{Width: c.World.Width, Height: c.World.Height}
}

func (c *Config) FactoryParams() factory.Params {
	return factory.Params{
		MinRadius:   c.Spawn.MinRadius,
		MaxRadius:   c.Spawn.MaxRadius,
		SpeedFactor: c.Spawn.SpeedFactor,
		Spread:      c.Spawn.Spread,
		Density:     c.World.Density,
	}
}

func (c *Config) Script() ([]control.Command, error) {
	cmds := make([]control.Command, 0, len(c.Clicks))
	for i, click := range c.Clicks {
		kind, err := control.ParseKind(click.Kind)
		if err != nil {
			return nil, fmt.Errorf("clicks[%d]: %w", i, err)
		}
		cmds = append(cmds, control.Command{Kind: kind, Point: dynamo.V(click.X, click.Y), At: click.At})
	}
	return cmds, nil
}

// SimConfig converts the file settings into a headless run configuration.
func (c *Config) SimConfig() (sim.Config, error) {
	if err := c.Validate(); err != nil {
		return sim.Config{}, err
	}
	script, err := c.Script()
	if err != nil {
		return sim.Config{}, err
	}
	return sim.Config{
		Dt:       c.Dt,
		Duration: c.Duration,
		Seed:     c.Seed,
		Bounds:   c.Bounds(),
		Script:   script,
	}, nil
}

func (c *Config) Clone() *Config {
	out := *c
	out.Clicks = append([]ClickConfig(nil), c.Clicks...)
	return &out
}
