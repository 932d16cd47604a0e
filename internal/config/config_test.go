package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/ballsim/internal/control"
	"github.com/san-kum/ballsim/internal/dynamo"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Scenario != "random" {
		t.Errorf("expected scenario random, got %s", cfg.Scenario)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Duration <= 0 {
		t.Error("duration should be positive")
	}
	if cfg.World.MaxBalls != 200 {
		t.Errorf("expected 200 max balls, got %d", cfg.World.MaxBalls)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	data := `scenario: gas
dt_ms: 10
world:
  width: 1024
  init_balls: 5
clicks:
  - at_ms: 100
    x: 10
    y: 20
  - at_ms: 200
    kind: clear
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Scenario != "gas" || cfg.Dt != 10 || cfg.World.Width != 1024 || cfg.World.InitBalls != 5 {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.World.Height != DefaultHeight {
		t.Errorf("unset fields should keep defaults, height=%v", cfg.World.Height)
	}

	script, err := cfg.Script()
	if err != nil {
		t.Fatalf("script: %v", err)
	}
	if len(script) != 2 || script[0].Kind != control.Click || script[1].Kind != control.Clear {
		t.Errorf("unexpected script %+v", script)
	}
	if script[0].Point != dynamo.V(10, 20) || script[0].At != 100 {
		t.Errorf("unexpected first command %+v", script[0])
	}
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.toml")
	data := `scenario = "headon"
seed = 7

[world]
height = 480.0

[[clicks]]
at_ms = 50.0
x = 1.0
y = 2.0
kind = "spawn"
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Scenario != "headon" || cfg.Seed != 7 || cfg.World.Height != 480 || cfg.World.Width != DefaultWidth {
		t.Errorf("unexpected config %+v", cfg)
	}
	if len(cfg.Clicks) != 1 || cfg.Clicks[0].Kind != "spawn" {
		t.Errorf("unexpected clicks %+v", cfg.Clicks)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, ext := range []string{".yaml", ".toml"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cfg"+ext)
			cfg := GetPreset("empty", "clicks")

			if err := Save(path, cfg); err != nil {
				t.Fatalf("save: %v", err)
			}
			loaded, err := Load(path)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if loaded.Scenario != cfg.Scenario || len(loaded.Clicks) != len(cfg.Clicks) || loaded.Dt != cfg.Dt {
				t.Errorf("round trip mismatch: %+v vs %+v", loaded, cfg)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.toml")
	os.WriteFile(path, []byte("scenario = ["), 0644)
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }, dynamo.ErrInvalidStep},
		{"zero duration", func(c *Config) { c.Duration = 0 }, dynamo.ErrParameterBounds},
		{"zero width", func(c *Config) { c.World.Width = 0 }, dynamo.ErrParameterBounds},
		{"negative balls", func(c *Config) { c.World.InitBalls = -1 }, dynamo.ErrParameterBounds},
		{"bad radius", func(c *Config) { c.Spawn.MinRadius = 0 }, dynamo.ErrParameterBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if _, err := cfg.SimConfig(); err == nil {
				t.Error("SimConfig should reject an invalid config")
			}
		})
	}
}

func TestScriptUnknownKind(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Clicks = []ClickConfig{{Kind: "explode"}}
	if _, err := cfg.Script(); err == nil {
		t.Error("expected error for unknown command kind")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("random", "crowded")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.World.InitBalls != 60 {
		t.Errorf("expected 60 balls, got %d", cfg.World.InitBalls)
	}

	cfg.World.InitBalls = 1
	if GetPreset("random", "crowded").World.InitBalls != 60 {
		t.Error("GetPreset must return a copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("random", "nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if GetPreset("nonexistent", "default") != nil {
		t.Error("expected nil for nonexistent scenario")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("random")
	if len(presets) != 4 || presets[0] != "crowded" {
		t.Errorf("expected sorted random presets, got %v", presets)
	}
	if ListPresets("nonexistent") != nil {
		t.Error("expected nil for nonexistent scenario")
	}
}

func TestPresetsValidate(t *testing.T) {
	for scenario, presets := range Presets {
		for name, cfg := range presets {
			if cfg.Scenario != scenario {
				t.Errorf("%s/%s: scenario field is %q", scenario, name, cfg.Scenario)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("%s/%s: %v", scenario, name, err)
			}
		}
	}
}
