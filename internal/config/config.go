// Package config holds analysis tunables and layers them from defaults,
// an optional YAML file and POIMETRICS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/pable/go-poi-metrics/internal/density"
	"github.com/pable/go-poi-metrics/internal/model"
)

// EnvPrefix prefixes every environment override, e.g. POIMETRICS_WORKERS.
const EnvPrefix = "POIMETRICS_"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config contains analysis tunables.
type Config struct {
	// LandingWindow is the number of time steps after spawn searched for touchdown.
	LandingWindow int64 `koanf:"landing_window"`

	// Workers bounds concurrent trajectory extraction.
	Workers int `koanf:"workers"`

	// DensityBins and MapExtent shape the raw death density grid.
	DensityBins int     `koanf:"density_bins"`
	MapExtent   float64 `koanf:"map_extent"`

	// TopCells is how many density cells the report lists.
	TopCells int `koanf:"top_cells"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LandingWindow: model.DefaultLandingWindow,
		Workers:       runtime.NumCPU(),
		DensityBins:   density.DefaultBins,
		MapExtent:     density.DefaultExtent,
		TopCells:      10,
	}
}

// Load builds a Config by layering, low to high precedence:
//  1. defaults (New)
//  2. YAML file at path, or at $POIMETRICS_CONFIG when path is empty
//  3. env (prefix POIMETRICS_)
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(EnvPrefix + "CONFIG")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	// POIMETRICS_LANDING_WINDOW -> landing_window
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the engine cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.LandingWindow <= 0:
		return fmt.Errorf("%w: landing_window must be positive, got %d", ErrInvalidConfig, c.LandingWindow)
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	case c.DensityBins <= 0:
		return fmt.Errorf("%w: density_bins must be positive, got %d", ErrInvalidConfig, c.DensityBins)
	case c.MapExtent <= 0:
		return fmt.Errorf("%w: map_extent must be positive, got %v", ErrInvalidConfig, c.MapExtent)
	case c.TopCells < 0:
		return fmt.Errorf("%w: top_cells must not be negative, got %d", ErrInvalidConfig, c.TopCells)
	}
	return nil
}
