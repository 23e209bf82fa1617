// Package config loads YAML-configurable parameters for a placement-and-
// routing run: mesh size, simulated-annealing parameters, and deterministic-
// engine selection. Embedding callers can always build a Config struct
// directly; YAML loading is additive.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrNonPositiveDim mirrors mesh.ErrNonPositiveDim for config-time validation,
// surfaced before a Mesh is ever constructed from a loaded file.
var ErrNonPositiveDim = errors.New("config: mesh width and height must be positive")

// Config is the top-level loadable configuration.
type Config struct {
	Mesh    MeshConfig    `yaml:"mesh"`
	SA      SAConfig      `yaml:"simulated_annealing"`
	Layout  LayoutConfig  `yaml:"layout"`
	Routing RoutingConfig `yaml:"routing"`
	Logging LoggingConfig `yaml:"logging"`
}

// MeshConfig describes the physical tile grid.
type MeshConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// SAConfig holds the simulated-annealing parameters of spec §4.7.
type SAConfig struct {
	TMax    float64 `yaml:"t_max"`
	TMin    float64 `yaml:"t_min"`
	L       int     `yaml:"chain_length"`
	MaxStay int     `yaml:"max_stay"`
	Silent  bool    `yaml:"silent"`
	Seed    int64   `yaml:"seed"`
}

// LayoutConfig selects how the layout stage builds its initial/final layout.
type LayoutConfig struct {
	// Engine is either "sa" (simulated annealing via layoutdesigner) or
	// "reverse_s" (deterministic space-filling layout via dle).
	Engine string `yaml:"engine"`
}

// RoutingConfig selects the routing stage's engine.
type RoutingConfig struct {
	// Engine is either "sa" or the name of a deterministic routing engine
	// ("dyxy", "rpm", "ocr"); only "dyxy" is currently implemented.
	Engine string `yaml:"engine"`
}

// LoggingConfig configures internal/logx.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the library's built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Mesh: MeshConfig{Width: 8, Height: 8},
		SA: SAConfig{
			TMax:    100,
			TMin:    1e-3,
			L:       1,
			MaxStay: 50,
			Silent:  true,
			Seed:    1,
		},
		Layout:  LayoutConfig{Engine: "sa"},
		Routing: RoutingConfig{Engine: "sa"},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads and parses a YAML file into a Config seeded with defaults, so
// a partial file only overrides the fields it names. A missing path
// returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}

	return cfg, nil
}

// Save writes c as YAML to path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %q: %w", path, err)
	}

	return nil
}

// Validate checks config-time invariants (spec §7 ConfigError: W·H must be
// positive; T_max > T_min > 0; chain length >= 1).
func (c *Config) Validate() error {
	if c.Mesh.Width <= 0 || c.Mesh.Height <= 0 {
		return ErrNonPositiveDim
	}
	if c.SA.TMax <= c.SA.TMin || c.SA.TMin <= 0 {
		return fmt.Errorf("config: simulated_annealing.t_max must exceed t_min > 0")
	}
	if c.SA.L < 1 {
		return fmt.Errorf("config: simulated_annealing.chain_length must be >= 1")
	}

	return nil
}
