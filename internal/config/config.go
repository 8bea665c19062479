// Package config provides unified configuration loading for pdf2cad.
// Supports YAML files, .env files, and environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/spherical/pdf2cad/internal/cad"
	"github.com/spherical/pdf2cad/internal/domain"
)

// Config holds all configuration for pdf2cad.
type Config struct {
	Drawing       DrawingConfig       `yaml:"drawing"`
	Output        OutputConfig        `yaml:"output"`
	Observability ObservabilityConfig `yaml:"observability"`
	Batch         BatchConfig         `yaml:"batch"`
}

// DrawingConfig holds the declarative content of generated drawings.
type DrawingConfig struct {
	Name  string `yaml:"name"`
	Units string `yaml:"units"`

	Limits LimitsConfig `yaml:"limits"`
	Text   TextConfig   `yaml:"text"`

	GeometryLayer string `yaml:"geometry_layer"`
	TextLayer     string `yaml:"text_layer"`

	PropagateLineWeight bool `yaml:"propagate_lineweight"`
}

// LimitsConfig holds the drawing extents.
type LimitsConfig struct {
	MinX float64 `yaml:"min_x"`
	MinY float64 `yaml:"min_y"`
	MaxX float64 `yaml:"max_x"`
	MaxY float64 `yaml:"max_y"`
}

// TextConfig holds where stacked text is placed.
type TextConfig struct {
	OriginX float64 `yaml:"origin_x"`
	OriginY float64 `yaml:"origin_y"`
	Pitch   float64 `yaml:"pitch"`
	Height  float64 `yaml:"height"`
}

// OutputConfig holds output settings.
type OutputConfig struct {
	Format    string `yaml:"format"` // dxf; dwg is recognised but rejected
	Directory string `yaml:"directory"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// BatchConfig holds multi-file conversion settings.
type BatchConfig struct {
	MaxConcurrentJobs int `yaml:"max_concurrent_jobs"`
}

// Load reads configuration from a YAML file and applies .env and
// environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, domain.ConfigError("read config file", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, domain.ConfigError("parse config file", err)
		}
	}

	_ = godotenv.Load() // Ignore error if .env doesn't exist

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration matching cad.DefaultOptions.
func DefaultConfig() *Config {
	opts := cad.DefaultOptions()
	return &Config{
		Drawing: DrawingConfig{
			Name:  opts.DrawingName,
			Units: opts.Units,
			Limits: LimitsConfig{
				MinX: opts.LimitsMinX,
				MinY: opts.LimitsMinY,
				MaxX: opts.LimitsMaxX,
				MaxY: opts.LimitsMaxY,
			},
			Text: TextConfig{
				OriginX: opts.TextOriginX,
				OriginY: opts.TextOriginY,
				Pitch:   opts.LinePitch,
				Height:  opts.TextHeight,
			},
			GeometryLayer:       opts.GeometryLayer,
			TextLayer:           opts.TextLayer,
			PropagateLineWeight: opts.PropagateLineWeight,
		},
		Output: OutputConfig{
			Format: "dxf",
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "console",
		},
		Batch: BatchConfig{
			MaxConcurrentJobs: 4,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := c.DrawingOptions().Validate(); err != nil {
		return err
	}

	if _, err := domain.ParseFormat(c.Output.Format); err != nil {
		return domain.ConfigError(fmt.Sprintf("invalid output format: %s", c.Output.Format), err)
	}

	switch c.Observability.LogFormat {
	case "json", "console":
	default:
		return domain.ConfigError(fmt.Sprintf("invalid log format: %s", c.Observability.LogFormat), nil)
	}

	if c.Batch.MaxConcurrentJobs < 1 || c.Batch.MaxConcurrentJobs > 64 {
		return domain.ConfigError("max_concurrent_jobs must be between 1 and 64", nil)
	}

	return nil
}

// DrawingOptions converts the drawing section into assembler options.
func (c *Config) DrawingOptions() cad.Options {
	d := c.Drawing
	return cad.Options{
		DrawingName:         d.Name,
		Units:               d.Units,
		LimitsMinX:          d.Limits.MinX,
		LimitsMinY:          d.Limits.MinY,
		LimitsMaxX:          d.Limits.MaxX,
		LimitsMaxY:          d.Limits.MaxY,
		TextOriginX:         d.Text.OriginX,
		TextOriginY:         d.Text.OriginY,
		LinePitch:           d.Text.Pitch,
		TextHeight:          d.Text.Height,
		GeometryLayer:       d.GeometryLayer,
		TextLayer:           d.TextLayer,
		PropagateLineWeight: d.PropagateLineWeight,
	}
}

// OutputFormat returns the configured default output format.
func (c *Config) OutputFormat() domain.Format {
	f, err := domain.ParseFormat(c.Output.Format)
	if err != nil {
		return domain.FormatDXF
	}
	return f
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("PDF2CAD_DRAWING_NAME"); v != "" {
		cfg.Drawing.Name = v
	}

	if v := os.Getenv("PDF2CAD_UNITS"); v != "" {
		cfg.Drawing.Units = v
	}

	if v := os.Getenv("PDF2CAD_GEOMETRY_LAYER"); v != "" {
		cfg.Drawing.GeometryLayer = v
	}

	if v := os.Getenv("PDF2CAD_TEXT_LAYER"); v != "" {
		cfg.Drawing.TextLayer = v
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{"PDF2CAD_TEXT_HEIGHT", &cfg.Drawing.Text.Height},
		{"PDF2CAD_TEXT_PITCH", &cfg.Drawing.Text.Pitch},
		{"PDF2CAD_TEXT_ORIGIN_X", &cfg.Drawing.Text.OriginX},
		{"PDF2CAD_TEXT_ORIGIN_Y", &cfg.Drawing.Text.OriginY},
	}
	for _, f := range floats {
		v := os.Getenv(f.key)
		if v == "" {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return domain.ConfigError(fmt.Sprintf("%s=%q is not a number", f.key, v), err)
		}
		*f.dst = n
	}

	if v := os.Getenv("PDF2CAD_LINEWEIGHT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return domain.ConfigError(fmt.Sprintf("PDF2CAD_LINEWEIGHT=%q is not a boolean", v), err)
		}
		cfg.Drawing.PropagateLineWeight = b
	}

	if v := os.Getenv("PDF2CAD_OUTPUT_FORMAT"); v != "" {
		cfg.Output.Format = strings.ToLower(v)
	}

	if v := os.Getenv("PDF2CAD_OUTPUT_DIR"); v != "" {
		cfg.Output.Directory = v
	}

	if v := os.Getenv("PDF2CAD_MAX_CONCURRENT_JOBS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return domain.ConfigError(fmt.Sprintf("PDF2CAD_MAX_CONCURRENT_JOBS=%q is not an integer", v), err)
		}
		cfg.Batch.MaxConcurrentJobs = n
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}

	return nil
}

// ResolveRelativePath resolves a path relative to the config file location.
func ResolveRelativePath(configPath, targetPath string) string {
	if targetPath == "" || filepath.IsAbs(targetPath) {
		return targetPath
	}
	return filepath.Join(filepath.Dir(configPath), targetPath)
}
