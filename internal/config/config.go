// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional .env file, an optional YAML file and
//   BESTXI_ environment variables.
// - Validation failures wrap ErrInvalidConfig; source failures wrap ErrLoadConfig.
package config

import (
	"fmt"
	"strings"

	"github.com/okian/bestxi/internal/domain/lineup"
	"github.com/okian/bestxi/internal/domain/model"
	"github.com/okian/bestxi/internal/domain/scoring"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DefaultFormation is the shorthand used when a lineup request omits one.
	DefaultFormation string `koanf:"default_formation"`

	// TiebreakStat names the raw statistic used to break composite ties.
	TiebreakStat string `koanf:"tiebreak_stat"`

	// MaxRankingsLimit caps GET /teams/{team}/rankings?limit.
	MaxRankingsLimit int `koanf:"max_rankings_limit"`

	// WeightMin and WeightMax bound coach weight overrides (inclusive).
	WeightMin float64 `koanf:"weight_min"`
	WeightMax float64 `koanf:"weight_max"`

	// RequireLegalFormation rejects lineup requests whose formation fails validation.
	RequireLegalFormation bool `koanf:"require_legal_formation"`

	// SeedFixture optionally names a YAML roster fixture preloaded at startup.
	SeedFixture string `koanf:"seed_fixture"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		DefaultFormation: "4-3-3",
		TiebreakStat:     "sprint_speed",
		MaxRankingsLimit: 100,
		WeightMin:        0.5,
		WeightMax:        1.5,
	}
}

// Formation parses DefaultFormation.
func (c *Config) Formation() (model.Formation, error) {
	return lineup.ParseFormation(c.DefaultFormation)
}

// Validate reports the first invalid setting, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	if strings.TrimSpace(c.TiebreakStat) == "" {
		return fmt.Errorf("%w: tiebreak_stat must not be empty", ErrInvalidConfig)
	}
	if c.MaxRankingsLimit <= 0 {
		return fmt.Errorf("%w: max_rankings_limit must be positive", ErrInvalidConfig)
	}
	if c.WeightMin < scoring.MinWeight || c.WeightMin > scoring.DefaultWeight ||
		c.WeightMax < scoring.DefaultWeight || c.WeightMax > scoring.MaxWeight {
		return fmt.Errorf("%w: weight bounds [%g, %g] must contain %g and lie within [%g, %g]",
			ErrInvalidConfig, c.WeightMin, c.WeightMax, scoring.DefaultWeight, scoring.MinWeight, scoring.MaxWeight)
	}
	f, err := c.Formation()
	if err != nil {
		return fmt.Errorf("%w: default_formation: %w", ErrInvalidConfig, err)
	}
	if res := lineup.Validate(f); !res.OK {
		return fmt.Errorf("%w: default_formation %s: %s", ErrInvalidConfig, c.DefaultFormation, res.Reason)
	}
	return nil
}
