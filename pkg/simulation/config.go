package simulation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/lao-tseu-is-alive/go-octree-boids/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-octree-boids/pkg/octree"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	// DefaultWallAvoidanceDistance is how close to a wall an agent starts being pushed back.
	DefaultWallAvoidanceDistance = 10.0
	// DefaultWallAvoidanceForce is the push applied when an agent sits right on a wall.
	DefaultWallAvoidanceForce = 10.0
	// DefaultMinSpeed is the speed floor applied after every integration.
	DefaultMinSpeed = 6.0
	// DefaultInitialSpeed is the speed given to every agent at spawn.
	DefaultInitialSpeed = 24.0
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

//go:embed schema/config.schema.json
var configSchema string

const configSchemaURL = "config.schema.json"

type Config struct {
	// World & Population
	NumAgents       int           `json:"numAgents"`
	WorldHalfExtent geometry.Vec3 `json:"worldHalfExtent"`
	InitialSpeed    float64       `json:"initialSpeed"`

	// Boids flocking parameters
	SeparationWeight float64 `json:"separationWeight"`
	AlignmentWeight  float64 `json:"alignmentWeight"`
	CohesionWeight   float64 `json:"cohesionWeight"`

	// Perception
	NeighborDistance          float64 `json:"neighborDistance"`          // half extent of the query cube and max distance
	ViewAngleThresholdDegrees float64 `json:"viewAngleThresholdDegrees"` // half angle of the view cone

	// Containment / Speed
	WallAvoidanceDistance float64 `json:"wallAvoidanceDistance"`
	WallAvoidanceForce    float64 `json:"wallAvoidanceForce"`
	MinSpeed              float64 `json:"minSpeed"`

	// Spatial index
	OctreeCapacity     int  `json:"octreeCapacity"`
	OctreeMaxDepth     int  `json:"octreeMaxDepth"`
	OctreeRedistribute bool `json:"octreeRedistribute"`

	// Execution
	Workers int    `json:"workers"` // > 1 runs the per-agent pass on that many goroutines
	Seed    uint64 `json:"seed"`

	// Debug drawing
	DrawOctree bool `json:"drawOctree"`
}

// DefaultConfig returns the reference tuning: 1000 agents in a 200 unit cube.
func DefaultConfig() *Config {
	return &Config{
		NumAgents:                 1000,
		WorldHalfExtent:           geometry.Vec3{100, 100, 100},
		InitialSpeed:              DefaultInitialSpeed,
		SeparationWeight:          0.5,
		AlignmentWeight:           0.34,
		CohesionWeight:            0.16,
		NeighborDistance:          24.0,
		ViewAngleThresholdDegrees: 90.0,
		WallAvoidanceDistance:     DefaultWallAvoidanceDistance,
		WallAvoidanceForce:        DefaultWallAvoidanceForce,
		MinSpeed:                  DefaultMinSpeed,
		OctreeCapacity:            octree.DefaultCapacity,
		OctreeMaxDepth:            octree.DefaultMaxDepth,
		Workers:                   1,
		Seed:                      1,
	}
}

// Weights groups the three steering weights.
type Weights struct {
	Separation float64
	Alignment  float64
	Cohesion   float64
}

// Weights returns the steering weights of the config.
func (c *Config) Weights() Weights {
	return Weights{
		Separation: c.SeparationWeight,
		Alignment:  c.AlignmentWeight,
		Cohesion:   c.CohesionWeight,
	}
}

// WorldBounds returns the box the agents live in, centered on the origin.
func (c *Config) WorldBounds() geometry.BoundingBox {
	return geometry.NewBoundingBox(geometry.Vec3{}, c.WorldHalfExtent)
}

// OctreeOptions maps the spatial index settings.
func (c *Config) OctreeOptions() octree.Options {
	return octree.Options{
		Capacity:     c.OctreeCapacity,
		MaxDepth:     c.OctreeMaxDepth,
		Redistribute: c.OctreeRedistribute,
	}
}

// Validate checks the invariants the simulator relies on.
func (c *Config) Validate() error {
	switch {
	case c.NumAgents < 0:
		return fmt.Errorf("%w: numAgents must not be negative, got %d", ErrInvalidConfig, c.NumAgents)
	case c.WorldHalfExtent[0] <= 0 || c.WorldHalfExtent[1] <= 0 || c.WorldHalfExtent[2] <= 0:
		return fmt.Errorf("%w: worldHalfExtent must be positive on every axis, got %s", ErrInvalidConfig, geometry.Format(c.WorldHalfExtent))
	case c.NeighborDistance <= 0:
		return fmt.Errorf("%w: neighborDistance must be positive, got %g", ErrInvalidConfig, c.NeighborDistance)
	case c.ViewAngleThresholdDegrees < 0 || c.ViewAngleThresholdDegrees > 180:
		return fmt.Errorf("%w: viewAngleThresholdDegrees must be in [0, 180], got %g", ErrInvalidConfig, c.ViewAngleThresholdDegrees)
	case c.WallAvoidanceDistance <= 0:
		return fmt.Errorf("%w: wallAvoidanceDistance must be positive, got %g", ErrInvalidConfig, c.WallAvoidanceDistance)
	case c.WallAvoidanceForce < 0:
		return fmt.Errorf("%w: wallAvoidanceForce must not be negative, got %g", ErrInvalidConfig, c.WallAvoidanceForce)
	case c.MinSpeed < 0 || c.InitialSpeed < 0:
		return fmt.Errorf("%w: speeds must not be negative", ErrInvalidConfig)
	case c.OctreeCapacity < 1:
		return fmt.Errorf("%w: octreeCapacity must be at least 1, got %d", ErrInvalidConfig, c.OctreeCapacity)
	case c.OctreeMaxDepth < 1 || c.OctreeMaxDepth > 16:
		return fmt.Errorf("%w: octreeMaxDepth must be in [1, 16], got %d", ErrInvalidConfig, c.OctreeMaxDepth)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, c.Workers)
	}
	return nil
}

// LoadConfig loads a JSON configuration, validates it against the embedded schema
// and applies it on top of DefaultConfig, so a file only needs the keys it changes.
func LoadConfig(configFile string) (*Config, error) {
	sch, err := DefaultSchema()
	if err != nil {
		return nil, err
	}
	return loadConfig(configFile, sch)
}

// LoadConfigWithSchema is LoadConfig with an external schema file.
func LoadConfigWithSchema(configFile string, schemaFile string) (*Config, error) {
	sch, err := jsonschema.Compile(schemaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return loadConfig(configFile, sch)
}

func loadConfig(configFile string, sch *jsonschema.Schema) (*Config, error) {
	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	return ParseConfig(b, sch)
}

// ParseConfig validates raw JSON against sch and decodes it over the defaults.
func ParseConfig(b []byte, sch *jsonschema.Schema) (*Config, error) {
	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}

	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultSchema compiles the embedded configuration schema.
func DefaultSchema() (*jsonschema.Schema, error) {
	sch, err := jsonschema.CompileString(configSchemaURL, configSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return sch, nil
}
