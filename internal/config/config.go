// Package config loads and validates application configuration via viper.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/ledgerline/opmatch/internal/match"
)

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
}

// DatabaseConfig locates the rule store.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// ThresholdConfig is one method's auto/suggest cutoff pair. Suggest may not
// exceed auto.
type ThresholdConfig struct {
	Auto    float64 `mapstructure:"auto" validate:"gte=0,lte=100"`
	Suggest float64 `mapstructure:"suggest" validate:"gte=0,lte=100,ltefield=Auto"`
}

// MatchingConfig holds the engine's six thresholds and worker count.
type MatchingConfig struct {
	Fuzzy   ThresholdConfig `mapstructure:"fuzzy"`
	Keyword ThresholdConfig `mapstructure:"keyword"`
	Pattern ThresholdConfig `mapstructure:"pattern"`
	Workers int             `mapstructure:"workers" validate:"gte=1,lte=64"`
}

// CacheConfig bounds the result cache partitions.
type CacheConfig struct {
	StableSize int `mapstructure:"stable_size" validate:"gte=1"`
	FuzzySize  int `mapstructure:"fuzzy_size" validate:"gte=1"`
}

// KeywordSeed defines one keyword rule in the seed data. Priority is a
// pointer so an explicit 0 is distinguishable from an omitted value.
type KeywordSeed struct {
	Priority *int     `mapstructure:"priority"`
	Category string   `mapstructure:"category" validate:"required"`
	Keywords []string `mapstructure:"keywords" validate:"required,min=1"`
	Weight   int      `mapstructure:"weight" validate:"gte=0,lte=100"`
}

// PatternSeed defines one regex rule in the seed data.
type PatternSeed struct {
	Priority *int   `mapstructure:"priority"`
	Category string `mapstructure:"category" validate:"required"`
	Pattern  string `mapstructure:"pattern" validate:"required"`
	Weight   int    `mapstructure:"weight" validate:"gte=0,lte=100"`
}

// SeedConfig holds rule seed data loadable into the store.
type SeedConfig struct {
	Exact    map[string]string `mapstructure:"exact"`
	Keywords []KeywordSeed     `mapstructure:"keywords" validate:"dive"`
	Patterns []PatternSeed     `mapstructure:"patterns" validate:"dive"`
}

// Config is the full application configuration. The engine treats it as an
// immutable input snapshot per load.
type Config struct {
	Seeds    SeedConfig     `mapstructure:"seeds"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	Matching MatchingConfig `mapstructure:"matching"`
	Cache    CacheConfig    `mapstructure:"cache"`
}

// Thresholds converts the configured cutoffs into the engine's threshold set.
func (c *Config) Thresholds() match.Thresholds {
	return match.Thresholds{
		Fuzzy:   match.MethodThresholds{Auto: c.Matching.Fuzzy.Auto, Suggest: c.Matching.Fuzzy.Suggest},
		Keyword: match.MethodThresholds{Auto: c.Matching.Keyword.Auto, Suggest: c.Matching.Keyword.Suggest},
		Pattern: match.MethodThresholds{Auto: c.Matching.Pattern.Auto, Suggest: c.Matching.Pattern.Suggest},
	}
}

// SetDefaults registers the default configuration values on a viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("database.path", "opmatch.db")
	v.SetDefault("matching.fuzzy.auto", 95)
	v.SetDefault("matching.fuzzy.suggest", 85)
	v.SetDefault("matching.keyword.auto", 80)
	v.SetDefault("matching.keyword.suggest", 70)
	v.SetDefault("matching.pattern.auto", 75)
	v.SetDefault("matching.pattern.suggest", 65)
	v.SetDefault("matching.workers", 4)
	v.SetDefault("cache.stable_size", match.DefaultStableCacheSize)
	v.SetDefault("cache.fuzzy_size", match.DefaultFuzzyCacheSize)
}

// Load unmarshals and validates the configuration from a viper instance.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
