// Package config handles loading and validating dispatch configuration.
// Supports YAML config files (dispatch.yaml) with environment variable
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Validation sentinels.
var (
	ErrCronAndInterval    = errors.New("schedule: cron and interval are mutually exclusive")
	ErrInvalidInterval    = errors.New("schedule: invalid interval duration")
	ErrInvalidLogLevel    = errors.New("logging: level must be debug, info, warn, or error")
	ErrInvalidLogFormat   = errors.New("logging: format must be json or text")
	ErrInvalidUnits       = errors.New("weather: units must be metric, imperial, or kelvin")
	ErrInvalidOnDuplicate = errors.New("registry: on_duplicate must be fail, warn, or overwrite")
	ErrNoProviderKey      = errors.New("no provider API key set (need one of ANTHROPIC_API_KEY, OPENAI_API_KEY, GOOGLE_API_KEY)")
)

// providerKeyEnvVars are the env vars that can satisfy RequireProviderKey.
var providerKeyEnvVars = []string{
	"ANTHROPIC_API_KEY",
	"OPENAI_API_KEY",
	"GOOGLE_API_KEY",
}

// Config holds all dispatch configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Agent    AgentConfig    `mapstructure:"agent"`
	Weather  WeatherConfig  `mapstructure:"weather"`
	Trains   TrainsConfig   `mapstructure:"trains"`
	Registry RegistryConfig `mapstructure:"registry"`
}

// LoggingConfig controls the zerolog wrapper.
type LoggingConfig struct {
	Level         string `mapstructure:"level"`
	Format        string `mapstructure:"format"`
	Path          string `mapstructure:"path"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// DatabaseConfig controls the run-history store.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// ScheduleConfig controls the daemon's run schedule. Cron and Interval are
// mutually exclusive.
type ScheduleConfig struct {
	Cron     string `mapstructure:"cron"`
	Interval string `mapstructure:"interval"`
	Task     string `mapstructure:"task"`
}

// AgentConfig selects the LLM agent.
type AgentConfig struct {
	Provider     string `mapstructure:"provider"`
	Model        string `mapstructure:"model"`
	Instructions string `mapstructure:"instructions"`
	Endpoint     string `mapstructure:"endpoint"`
	CatalogPath  string `mapstructure:"catalog_path"`
}

// WeatherConfig configures the OpenWeatherMap tool server.
type WeatherConfig struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	Units          string `mapstructure:"units"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// Timeout returns the request timeout.
func (w WeatherConfig) Timeout() time.Duration {
	if w.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(w.TimeoutSeconds) * time.Second
}

// TrainsConfig configures the Huxley2 tool server.
type TrainsConfig struct {
	BaseURL     string            `mapstructure:"base_url"`
	NumServices int               `mapstructure:"num_services"`
	Stations    map[string]string `mapstructure:"stations"`
}

// RegistryConfig configures the function registry.
type RegistryConfig struct {
	OnDuplicate string `mapstructure:"on_duplicate"`
}

// Load reads configuration from path (or the default locations when path is
// empty) plus DISPATCH_* environment overrides, and validates it. A missing
// config file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.retention_days", 7)
	v.SetDefault("database.path", DefaultDataPath("dispatch.db"))
	v.SetDefault("schedule.task", "research")
	v.SetDefault("agent.provider", "anthropic")
	v.SetDefault("agent.model", "claude-sonnet-4-0")
	v.SetDefault("weather.units", "metric")
	v.SetDefault("weather.timeout_seconds", 10)
	v.SetDefault("trains.num_services", 5)
	v.SetDefault("registry.on_duplicate", "fail")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("dispatch")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "dispatch"))
		}
	}

	v.SetEnvPrefix("DISPATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("weather.api_key", "OPENWEATHER_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.Logging.Path = expandPath(cfg.Logging.Path)
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Agent.CatalogPath = expandPath(cfg.Agent.CatalogPath)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the loaded configuration against the sentinel errors.
func Validate(cfg *Config) error {
	if cfg.Schedule.Cron != "" && cfg.Schedule.Interval != "" {
		return ErrCronAndInterval
	}
	if cfg.Schedule.Interval != "" {
		if _, err := time.ParseDuration(cfg.Schedule.Interval); err != nil {
			return ErrInvalidInterval
		}
	}

	switch cfg.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}
	switch cfg.Logging.Format {
	case "", "json", "text":
	default:
		return ErrInvalidLogFormat
	}

	switch cfg.Weather.Units {
	case "", "metric", "imperial", "kelvin":
	default:
		return ErrInvalidUnits
	}

	switch cfg.Registry.OnDuplicate {
	case "", "fail", "warn", "overwrite":
	default:
		return ErrInvalidOnDuplicate
	}

	return nil
}

// RequireProviderKey verifies at least one LLM provider API key is present
// in the environment. Only agent commands need this.
func RequireProviderKey() error {
	for _, key := range providerKeyEnvVars {
		if strings.TrimSpace(os.Getenv(key)) != "" {
			return nil
		}
	}
	return ErrNoProviderKey
}

// DefaultDataPath returns a path under the dispatch data directory.
func DefaultDataPath(name string) string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "dispatch", name)
}

func expandPath(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if path == "~" {
		return home
	}

	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}

	return path
}
