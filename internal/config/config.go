// Package config provides configuration management for the zone engine.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"srzones/internal/analysis/zones"
	"srzones/internal/logging"
)

// Config holds all application configuration.
type Config struct {
	Engine  zones.Config      `mapstructure:"engine"`
	Logging logging.LogConfig `mapstructure:"logging"`
	Cache   CacheConfig       `mapstructure:"cache"`
	Scan    ScanConfig        `mapstructure:"scan"`
}

// CacheConfig holds zone/candle cache configuration.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Path    string        `mapstructure:"path"`
	ZoneTTL time.Duration `mapstructure:"zone_ttl"`
}

// ScanConfig holds sweep configuration.
type ScanConfig struct {
	Workers   int `mapstructure:"workers"`
	ATRPeriod int `mapstructure:"atr_period"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/srzones"
	}
	return filepath.Join(home, ".config", "srzones")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Engine:  zones.DefaultConfig(),
		Logging: logging.DefaultLogConfig(),
		Cache: CacheConfig{
			Enabled: true,
			Path:    filepath.Join(DefaultConfigDir(), "srzones.db"),
			ZoneTTL: 15 * time.Minute,
		},
		Scan: ScanConfig{
			Workers:   4,
			ATRPeriod: 14,
		},
	}
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory. A missing
// config file is not an error: a template is written and the defaults
// are used.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := Default()

	if err := loadConfigFile(configDir, "config", cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir, name string, target interface{}) error {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createTemplateConfig(configDir, name)
		}
		return err
	}

	return v.Unmarshal(target)
}

func createTemplateConfig(configDir, name string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	template := `# srzones configuration
# All thresholds that scale with volatility are expressed as ATR multiples.

[engine]
wide_band_atr = 0.30
narrow_band_atr = 0.15
merge_threshold_atr = 0.10
proximity_threshold_atr = 0.30
max_seed_distance_pct = 0.20
max_zone_distance_pct = 0.25
max_average_distance_pct = 0.30
gap_min_pct = 0.015
gap_min_atr = 0.30
gap_fill_decay = 0.7
max_gaps = 8
min_slope_degrees = 5.0
max_slope_degrees = 45.0
max_diagonal_span = 3
swing_window = 5
max_swings = 10
fib_pairs = 3
fib_dedupe_atr = 0.05
slope_flat = 0.05
slope_strong = 0.10
slope_flat_factor = 0.5
slope_moderate_factor = 1.0
slope_strong_factor = 1.5
fast_period = 20
slow_periods = [50, 100, 200]
stack_bonus = 0.5
max_base_score = 10.0
proximity_bonus = 2.0
alignment_bonus = 2.0
max_zones = 10

[engine.weights]
fib_core = 3.0
fib_other = 2.0
swing = 2.0
diagonal = 2.0
slow_average = 2.0
fast_average = 1.0
gap = 2.0

[logging]
level = "info"
console = true
file = true

[cache]
enabled = true
zone_ttl = "15m"

[scan]
workers = 4
atr_period = 14
`

	path := filepath.Join(configDir, name+".toml")
	if err := os.WriteFile(path, []byte(template), 0644); err != nil {
		return fmt.Errorf("writing template config: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SRZONES_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SRZONES_DB_PATH"); v != "" {
		cfg.Cache.Path = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	e := &c.Engine

	if e.NarrowBandATR <= 0 || e.WideBandATR <= 0 {
		return fmt.Errorf("band multipliers must be positive")
	}
	if e.NarrowBandATR > e.WideBandATR {
		return fmt.Errorf("narrow_band_atr must not exceed wide_band_atr")
	}
	if e.MergeThresholdATR <= 0 {
		return fmt.Errorf("merge_threshold_atr must be positive")
	}
	if e.MaxSeedDistancePct <= 0 || e.MaxZoneDistancePct <= 0 {
		return fmt.Errorf("distance filters must be positive")
	}
	if e.GapFillDecay < 0 || e.GapFillDecay > 1 {
		return fmt.Errorf("gap_fill_decay must be between 0 and 1")
	}
	if e.MinSlopeDegrees < 0 || e.MaxSlopeDegrees <= e.MinSlopeDegrees {
		return fmt.Errorf("invalid diagonal slope bounds: %.1f-%.1f", e.MinSlopeDegrees, e.MaxSlopeDegrees)
	}
	if e.SwingWindow <= 0 {
		return fmt.Errorf("swing_window must be positive")
	}
	if c.Scan.Workers <= 0 {
		return fmt.Errorf("scan workers must be positive")
	}
	return nil
}
