// Package config loads and validates feed service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Scrape  ScrapeConfig  `mapstructure:"scrape"`
	Cycle   CycleConfig   `mapstructure:"cycle"`
	Store   StoreConfig   `mapstructure:"store"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig controls the HTTP boundary.
type ServerConfig struct {
	Port      int    `mapstructure:"port"`
	IndexFile string `mapstructure:"index_file"`
}

// FetchConfig governs single-page retrieval.
type FetchConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// ScrapeConfig bounds the pipeline fan-out.
type ScrapeConfig struct {
	ListingWorkers int `mapstructure:"listing_workers"`
	EnrichWorkers  int `mapstructure:"enrich_workers"`
	EnrichCutoff   int `mapstructure:"enrich_cutoff"`
	SourceWorkers  int `mapstructure:"source_workers"`
}

// CycleConfig sets the refresh cadence.
type CycleConfig struct {
	QuietMinutes  int `mapstructure:"quiet_minutes"`
	SettleMinutes int `mapstructure:"settle_minutes"`
}

// StoreConfig sets paths for snapshot slots and preferences.
type StoreConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("NEWSFEED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.index_file", "tamil-news-dashboard.html")
	v.SetDefault("fetch.timeout_seconds", 16)
	v.SetDefault("scrape.listing_workers", 3)
	v.SetDefault("scrape.enrich_workers", 4)
	v.SetDefault("scrape.enrich_cutoff", 50)
	v.SetDefault("scrape.source_workers", 5)
	v.SetDefault("cycle.quiet_minutes", 13)
	v.SetDefault("cycle.settle_minutes", 2)
	v.SetDefault("store.data_dir", "data")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be > 0")
	}
	if c.Scrape.ListingWorkers <= 0 || c.Scrape.EnrichWorkers <= 0 || c.Scrape.SourceWorkers <= 0 {
		return fmt.Errorf("scrape worker pools must be > 0")
	}
	if c.Scrape.EnrichCutoff <= 0 {
		return fmt.Errorf("scrape.enrich_cutoff must be > 0")
	}
	if c.Cycle.QuietMinutes <= 0 || c.Cycle.SettleMinutes <= 0 {
		return fmt.Errorf("cycle intervals must be > 0")
	}
	if strings.TrimSpace(c.Store.DataDir) == "" {
		return fmt.Errorf("store.data_dir is required")
	}
	return nil
}

// FetchTimeout returns the per-page fetch budget as a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// QuietInterval returns the between-cycle sleep as a duration.
func (c Config) QuietInterval() time.Duration {
	return time.Duration(c.Cycle.QuietMinutes) * time.Minute
}

// SettleInterval returns the stage-to-publish window as a duration.
func (c Config) SettleInterval() time.Duration {
	return time.Duration(c.Cycle.SettleMinutes) * time.Minute
}
