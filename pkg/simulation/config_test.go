package simulation

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lao-tseu-is-alive/go-octree-boids/pkg/geometry"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "boids.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
}

func TestLoadConfig_SampleFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "config", "boids.json"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.NumAgents != 1000 || cfg.Seed != 2024 || !cfg.DrawOctree {
		t.Errorf("unexpected sample config: %+v", cfg)
	}
	if cfg.WorldHalfExtent != (geometry.Vec3{100, 100, 100}) {
		t.Errorf("WorldHalfExtent = %v", cfg.WorldHalfExtent)
	}
}

func TestLoadConfig_PartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `{"numAgents": 42, "cohesionWeight": 0.3, "workers": 4}`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	want := DefaultConfig()
	want.NumAgents = 42
	want.CohesionWeight = 0.3
	want.Workers = 4
	if *cfg != *want {
		t.Errorf("LoadConfig() = %+v; want %+v", cfg, want)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errPart string
	}{
		{"Unknown key", `{"numBoids": 10}`, "validation failed"},
		{"Negative neighbor distance", `{"neighborDistance": -1}`, "validation failed"},
		{"Wrong type", `{"numAgents": "many"}`, "validation failed"},
		{"Fractional agent count", `{"numAgents": 2.5}`, "validation failed"},
		{"View angle too wide", `{"viewAngleThresholdDegrees": 270}`, "validation failed"},
		{"Short half extent", `{"worldHalfExtent": [1, 2]}`, "validation failed"},
		{"Broken json", `{"numAgents": `, "decode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("LoadConfig() error = nil")
			}
			if !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("LoadConfig() error = %q; want it to mention %q", err, tt.errPart)
			}
		})
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v; want os.ErrNotExist", err)
	}
}

func TestLoadConfigWithSchema(t *testing.T) {
	path := writeConfig(t, `{"octreeCapacity": 8, "octreeRedistribute": true}`)

	cfg, err := LoadConfigWithSchema(path, filepath.Join("schema", "config.schema.json"))
	if err != nil {
		t.Fatalf("LoadConfigWithSchema: %v", err)
	}
	opts := cfg.OctreeOptions()
	if opts.Capacity != 8 || !opts.Redistribute || opts.MaxDepth != 8 {
		t.Errorf("OctreeOptions() = %+v", opts)
	}

	if _, err := LoadConfigWithSchema(path, filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("LoadConfigWithSchema with a missing schema: error = nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"Negative agents", func(c *Config) { c.NumAgents = -1 }},
		{"Flat world", func(c *Config) { c.WorldHalfExtent = geometry.Vec3{100, 0, 100} }},
		{"Zero neighbor distance", func(c *Config) { c.NeighborDistance = 0 }},
		{"Negative view angle", func(c *Config) { c.ViewAngleThresholdDegrees = -5 }},
		{"View angle above 180", func(c *Config) { c.ViewAngleThresholdDegrees = 181 }},
		{"Zero wall distance", func(c *Config) { c.WallAvoidanceDistance = 0 }},
		{"Negative wall force", func(c *Config) { c.WallAvoidanceForce = -1 }},
		{"Negative min speed", func(c *Config) { c.MinSpeed = -1 }},
		{"Zero capacity", func(c *Config) { c.OctreeCapacity = 0 }},
		{"Depth too large", func(c *Config) { c.OctreeMaxDepth = 17 }},
		{"Negative workers", func(c *Config) { c.Workers = -2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v; want ErrInvalidConfig", err)
			}
		})
	}
}

func TestConfig_Derived(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WorldHalfExtent = geometry.Vec3{50, 20, 10}

	b := cfg.WorldBounds()
	if b.Min() != (geometry.Vec3{-50, -20, -10}) || b.Max() != (geometry.Vec3{50, 20, 10}) {
		t.Errorf("WorldBounds() = %v .. %v", b.Min(), b.Max())
	}
	if w := cfg.Weights(); w != (Weights{Separation: 0.5, Alignment: 0.34, Cohesion: 0.16}) {
		t.Errorf("Weights() = %+v", w)
	}
}
