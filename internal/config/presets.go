package config

import (
	"maps"
	"math"
	"slices"
)

func preset(scenario string, edit func(c *Config)) *Config {
	c := DefaultConfig()
	c.Scenario = scenario
	edit(c)
	return c
}

var Presets = map[string]map[string]*Config{
	"random": {
		"default": preset("random", func(c *Config) {}),
		"crowded": preset("random", func(c *Config) {
			c.World.InitBalls = 60
			c.Spawn.MaxRadius = 40
		}),
		"sparse": preset("random", func(c *Config) {
			c.World.InitBalls = 3
			c.World.Width, c.World.Height = 1600, 1200
		}),
		"full": preset("random", func(c *Config) {
			c.World.Width, c.World.Height = 1920, 1080
			c.World.InitBalls = 200
			c.Spawn.MaxRadius = 30
			c.Duration = 5
		}),
	},
	"empty": {
		"clicks": preset("empty", func(c *Config) {
			c.World.InitBalls = 0
			c.Clicks = []ClickConfig{
				{At: 0, X: 200, Y: 300},
				{At: 500, X: 400, Y: 300},
				{At: 1000, X: 600, Y: 300},
				{At: 3000, X: 400, Y: 300},
			}
		}),
	},
	"headon": {
		"equal": preset("headon", func(c *Config) {
			c.Duration = 5
		}),
		"fast": preset("headon", func(c *Config) {
			c.Spawn.SpeedFactor = 1
			c.Duration = 5
		}),
	},
	"stack": {
		"pair": preset("stack", func(c *Config) {
			c.World.InitBalls = 2
			c.Duration = 3
		}),
		"pile": preset("stack", func(c *Config) {
			c.World.InitBalls = 12
			c.Spawn.MaxRadius = 30
		}),
	},
	"gas": {
		"dilute": preset("gas", func(c *Config) {
			c.World.InitBalls = 40
			c.Spawn.MinRadius, c.Spawn.MaxRadius = 5, 10
			c.Spawn.Spread = math.Pi
		}),
		"dense": preset("gas", func(c *Config) {
			c.World.InitBalls = 150
			c.Spawn.MinRadius, c.Spawn.MaxRadius = 8, 16
			c.Spawn.Spread = math.Pi
		}),
	},
	"wall": {
		"bounce": preset("wall", func(c *Config) {
			c.World.InitBalls = 8
			c.Duration = 8
		}),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(scenario, name string) *Config {
	scenarioPresets, ok := Presets[scenario]
	if !ok {
		return nil
	}
	cfg, ok := scenarioPresets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(scenario string) []string {
	scenarioPresets, ok := Presets[scenario]
	if !ok {
		return nil
	}
	return slices.Sorted(maps.Keys(scenarioPresets))
}
