package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/matcha/internal/endpoint"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
const DefaultConfigPath = "config/matcha.defaults.json"

const maxFileSize = 1 * 1024 * 1024 // 1MB

// TuningConfig holds the endpoint finder parameters and the run's output
// locations. Every field is optional; the Get* methods fall back to the
// built-in defaults for fields left unset.
type TuningConfig struct {
	// Endpoint finder params
	Radius              *float64 `json:"radius,omitempty" yaml:"radius,omitempty"`
	MinRefineNeighbours *int     `json:"min_refine_neighbours,omitempty" yaml:"min_refine_neighbours,omitempty"`
	Workers             *int     `json:"workers,omitempty" yaml:"workers,omitempty"`

	// Output params
	OutputDir     *string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
	CataloguePath *string `json:"catalogue_path,omitempty" yaml:"catalogue_path,omitempty"` // empty disables the catalogue
	PlotDir       *string `json:"plot_dir,omitempty" yaml:"plot_dir,omitempty"`             // empty disables plots
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a TuningConfig with every field set to its
// default value.
func DefaultTuningConfig() *TuningConfig {
	return &TuningConfig{
		Radius:              ptrFloat64(endpoint.DefaultRadius),
		MinRefineNeighbours: ptrInt(endpoint.DefaultMinRefineNeighbours),
		Workers:             ptrInt(1),
		OutputDir:           ptrString("."),
		CataloguePath:       ptrString(""),
		PlotDir:             ptrString(""),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON or YAML file, chosen by
// extension. The file must be under 1MB. Fields omitted from the file keep
// their defaults, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := filepath.Ext(cleanPath)
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if ext == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching the current
// directory and its parents. Panics if the file cannot be loaded, intended
// for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // from cmd/matcha/ and deeper
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.Radius != nil {
		if r := *c.Radius; math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
			return fmt.Errorf("radius must be positive and finite, got %v", r)
		}
	}
	if c.MinRefineNeighbours != nil && *c.MinRefineNeighbours < 1 {
		return fmt.Errorf("min_refine_neighbours must be at least 1, got %d", *c.MinRefineNeighbours)
	}
	if c.Workers != nil && *c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", *c.Workers)
	}
	return nil
}

// GetRadius returns the radius value or the default.
func (c *TuningConfig) GetRadius() float64 {
	if c.Radius == nil {
		return endpoint.DefaultRadius
	}
	return *c.Radius
}

// GetMinRefineNeighbours returns the min_refine_neighbours value or the default.
func (c *TuningConfig) GetMinRefineNeighbours() int {
	if c.MinRefineNeighbours == nil {
		return endpoint.DefaultMinRefineNeighbours
	}
	return *c.MinRefineNeighbours
}

// GetWorkers returns the workers value or the default.
func (c *TuningConfig) GetWorkers() int {
	if c.Workers == nil {
		return 1
	}
	return *c.Workers
}

// GetOutputDir returns the output_dir value or the default.
func (c *TuningConfig) GetOutputDir() string {
	if c.OutputDir == nil || *c.OutputDir == "" {
		return "."
	}
	return *c.OutputDir
}

// GetCataloguePath returns the catalogue_path value. Empty means no catalogue.
func (c *TuningConfig) GetCataloguePath() string {
	if c.CataloguePath == nil {
		return ""
	}
	return *c.CataloguePath
}

// GetPlotDir returns the plot_dir value. Empty means no plots.
func (c *TuningConfig) GetPlotDir() string {
	if c.PlotDir == nil {
		return ""
	}
	return *c.PlotDir
}

// EndpointConfig returns the finder parameters.
func (c *TuningConfig) EndpointConfig() endpoint.Config {
	return endpoint.Config{
		Radius:              c.GetRadius(),
		MinRefineNeighbours: c.GetMinRefineNeighbours(),
	}
}
