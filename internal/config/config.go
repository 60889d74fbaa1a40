// Package config loads and validates lead finder configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures every knob the pipeline reads, loaded via Viper from an
// optional config file plus LEADFINDER_* environment variables.
type Config struct {
	Checker   CheckerConfig   `mapstructure:"checker"`
	Headless  HeadlessConfig  `mapstructure:"headless"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	Status    StatusConfig    `mapstructure:"status"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// CheckerConfig governs the batch runner and static fetcher.
type CheckerConfig struct {
	Workers        int    `mapstructure:"workers"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
	CheckSubpages  bool   `mapstructure:"check_subpages"`
	MaxSubpages    int    `mapstructure:"max_subpages"`
	URLColumn      string `mapstructure:"url_column"`
}

// HeadlessConfig configures the optional chromedp renderer.
type HeadlessConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxParallel   int  `mapstructure:"max_parallel"`
	NavTimeoutSec int  `mapstructure:"nav_timeout_seconds"`
}

// DiscoveryConfig holds enrichment API access and result caps.
type DiscoveryConfig struct {
	ApolloAPIKey   string `mapstructure:"apollo_api_key"`
	ApolloBaseURL  string `mapstructure:"apollo_base_url"`
	Limit          int    `mapstructure:"limit"`
	CompanySize    string `mapstructure:"company_size"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// StatusConfig controls the optional status HTTP server.
type StatusConfig struct {
	Addr string `mapstructure:"addr"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LEADFINDER")
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
	v.SetDefault("checker.workers", 5)
	v.SetDefault("checker.timeout_seconds", 15)
	v.SetDefault("checker.user_agent",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	v.SetDefault("checker.check_subpages", true)
	v.SetDefault("checker.max_subpages", 6)
	v.SetDefault("checker.url_column", "website")
	v.SetDefault("headless.enabled", false)
	v.SetDefault("headless.max_parallel", 1)
	v.SetDefault("headless.nav_timeout_seconds", 25)
	// Defaults double as env-var bindings: AutomaticEnv only resolves
	// keys viper already knows, so even empty-valued keys need one.
	v.SetDefault("discovery.apollo_api_key", "")
	v.SetDefault("discovery.apollo_base_url", "https://api.apollo.io")
	v.SetDefault("discovery.limit", 20)
	v.SetDefault("discovery.company_size", "mid")
	v.SetDefault("discovery.timeout_seconds", 30)
	v.SetDefault("status.addr", "")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Checker.Workers <= 0 {
		return fmt.Errorf("checker.workers must be > 0")
	}
	if c.Checker.TimeoutSeconds <= 0 {
		return fmt.Errorf("checker.timeout_seconds must be > 0")
	}
	if c.Checker.MaxSubpages < 0 {
		return fmt.Errorf("checker.max_subpages must be >= 0")
	}
	if c.Checker.URLColumn == "" {
		return fmt.Errorf("checker.url_column must be set")
	}
	if c.Headless.Enabled && c.Headless.MaxParallel <= 0 {
		return fmt.Errorf("headless.max_parallel must be > 0 when headless is enabled")
	}
	if c.Discovery.Limit <= 0 {
		return fmt.Errorf("discovery.limit must be > 0")
	}
	return nil
}

// FetchTimeout converts the checker timeout into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Checker.TimeoutSeconds) * time.Second
}

// NavTimeout converts the headless navigation timeout into a duration.
func (c Config) NavTimeout() time.Duration {
	return time.Duration(c.Headless.NavTimeoutSec) * time.Second
}

// DiscoveryTimeout converts the enrichment API timeout into a duration.
func (c Config) DiscoveryTimeout() time.Duration {
	return time.Duration(c.Discovery.TimeoutSeconds) * time.Second
}
