// Package config loads runtime configuration for the regions server.
//
// Values come from, in increasing priority: built-in defaults, an optional
// YAML file, and environment variables (a .env file in the working directory
// is loaded first if present).
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/motion-regions-mcp/internal/detection"
	"github.com/ironsheep/motion-regions-mcp/internal/imaging"
)

// Environment variables recognized by Load.
const (
	EnvLogLevel = "REGIONS_MCP_LOG_LEVEL"
	EnvConfig   = "REGIONS_MCP_CONFIG"
	EnvWorkers  = "REGIONS_MCP_WORKERS"
)

// ErrUnknownPreset is returned by Preset for names that are not configured.
var ErrUnknownPreset = errors.New("unknown preset")

// MinAreaPolicy derives a minimum region area from the analysis frame size
// when the caller does not supply one.
type MinAreaPolicy struct {
	// Fraction of the analysis frame's pixel count.
	Fraction float64 `yaml:"fraction"`

	// Floor is the smallest value the policy returns.
	Floor int `yaml:"floor"`
}

// For returns max(Floor, floor(width*height*Fraction)).
func (p MinAreaPolicy) For(width, height int) int {
	n := int(math.Floor(float64(width*height) * p.Fraction))
	if n < p.Floor {
		return p.Floor
	}
	return n
}

// Preset is a named set of detection thresholds.
type Preset struct {
	Detection detection.Config `yaml:"detection"`

	// MinEdgeCount is used by the edge summary mode. Zero falls back to the
	// min area policy.
	MinEdgeCount int `yaml:"min_edge_count"`
}

// Config is the complete runtime configuration.
type Config struct {
	LogLevel  string                  `yaml:"log_level"`
	Workers   int                     `yaml:"workers"`
	Detection detection.Config        `yaml:"detection"`
	Analysis  imaging.AnalysisOptions `yaml:"analysis"`
	MinArea   MinAreaPolicy           `yaml:"min_area"`
	Presets   map[string]Preset       `yaml:"presets"`
}

// Default returns the built-in configuration.
//
// The presets reproduce the live front ends: "objects" is the multi-region
// view, "center" the single-centroid view, and "motion" keeps only edges
// that moved since the previous frame.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		Workers:   4,
		Detection: detection.Config{EdgeThreshold: 170},
		Analysis:  imaging.DefaultAnalysisOptions(),
		MinArea:   MinAreaPolicy{Fraction: 0.002, Floor: 32},
		Presets: map[string]Preset{
			"objects": {Detection: detection.Config{EdgeThreshold: 170}},
			"center":  {Detection: detection.Config{EdgeThreshold: 180}, MinEdgeCount: 40},
			"motion":  {Detection: detection.Config{EdgeThreshold: 50, MotionThreshold: 30}},
		},
	}
}

// Load builds the configuration from defaults, the YAML file named by path
// (or REGIONS_MCP_CONFIG when path is empty) and environment overrides.
func Load(path string) (*Config, error) {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := cfg.merge(data); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", EnvWorkers, v, err)
		}
		cfg.Workers = n
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// merge overlays YAML data on cfg. Presets in the file are added to, or
// replace, the built-in ones.
func (c *Config) merge(data []byte) error {
	builtin := c.Presets
	c.Presets = nil
	if err := yaml.Unmarshal(data, c); err != nil {
		return err
	}
	merged := make(map[string]Preset, len(builtin)+len(c.Presets))
	for name, p := range builtin {
		merged[name] = p
	}
	for name, p := range c.Presets {
		merged[name] = p
	}
	c.Presets = merged
	return nil
}

// Validate rejects values the engine or workers cannot use.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if err := validateDetection("detection", c.Detection); err != nil {
		return err
	}
	for name, p := range c.Presets {
		if err := validateDetection("preset "+name, p.Detection); err != nil {
			return err
		}
	}
	if c.Analysis.Scale < 0 || c.Analysis.MinSide < 0 || c.Analysis.BlurRadius < 0 {
		return fmt.Errorf("analysis options must not be negative: %+v", c.Analysis)
	}
	if c.MinArea.Fraction < 0 || c.MinArea.Floor < 0 {
		return fmt.Errorf("min area policy must not be negative: %+v", c.MinArea)
	}
	return nil
}

func validateDetection(name string, d detection.Config) error {
	if d.EdgeThreshold < 0 || d.MotionThreshold < 0 || d.MinArea < 0 {
		return fmt.Errorf("%s: thresholds must not be negative: %+v", name, d)
	}
	return nil
}

// Debug reports whether debug logging is enabled.
func (c *Config) Debug() bool {
	return c.LogLevel == "debug"
}

// Preset returns the named preset.
func (c *Config) Preset(name string) (Preset, error) {
	p, ok := c.Presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %q (available: %s)", ErrUnknownPreset, name, strings.Join(c.PresetNames(), ", "))
	}
	return p, nil
}

// PresetNames returns the configured preset names in sorted order.
func (c *Config) PresetNames() []string {
	names := make([]string, 0, len(c.Presets))
	for name := range c.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the detection config for one frame of the given analysis
// size. A zero MinArea is replaced by the min area policy.
func (c *Config) Resolve(d detection.Config, width, height int) detection.Config {
	if d.MinArea == 0 {
		d.MinArea = c.MinArea.For(width, height)
	}
	return d
}
