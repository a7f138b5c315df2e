package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidate_CronAndInterval(t *testing.T) {
	cfg := &Config{
		Schedule: ScheduleConfig{
			Cron:     "0 2 * * *",
			Interval: "1h",
		},
	}
	if err := Validate(cfg); err != ErrCronAndInterval {
		t.Errorf("expected ErrCronAndInterval, got %v", err)
	}
}

func TestValidate_InvalidInterval(t *testing.T) {
	cfg := &Config{
		Schedule: ScheduleConfig{Interval: "soon"},
	}
	if err := Validate(cfg); err != ErrInvalidInterval {
		t.Errorf("expected ErrInvalidInterval, got %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := &Config{
		Logging: LoggingConfig{Level: "verbose"},
	}
	if err := Validate(cfg); err != ErrInvalidLogLevel {
		t.Errorf("expected ErrInvalidLogLevel, got %v", err)
	}
}

func TestValidate_InvalidLogFormat(t *testing.T) {
	cfg := &Config{
		Logging: LoggingConfig{Format: "xml"},
	}
	if err := Validate(cfg); err != ErrInvalidLogFormat {
		t.Errorf("expected ErrInvalidLogFormat, got %v", err)
	}
}

func TestValidate_InvalidUnits(t *testing.T) {
	cfg := &Config{
		Weather: WeatherConfig{Units: "celsius"},
	}
	if err := Validate(cfg); err != ErrInvalidUnits {
		t.Errorf("expected ErrInvalidUnits, got %v", err)
	}
}

func TestValidate_InvalidOnDuplicate(t *testing.T) {
	cfg := &Config{
		Registry: RegistryConfig{OnDuplicate: "panic"},
	}
	if err := Validate(cfg); err != ErrInvalidOnDuplicate {
		t.Errorf("expected ErrInvalidOnDuplicate, got %v", err)
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := &Config{
		Schedule: ScheduleConfig{Cron: "0 2 * * *", Task: "research"},
		Logging:  LoggingConfig{Level: "info", Format: "json"},
		Weather:  WeatherConfig{Units: "metric"},
		Registry: RegistryConfig{OnDuplicate: "fail"},
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dispatch.yaml")
	yaml := `
logging:
  level: debug
  format: text
schedule:
  interval: 30m
  task: planning
trains:
  num_services: 7
  stations:
    st helens: SNH
registry:
  on_duplicate: warn
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if cfg.Schedule.Interval != "30m" || cfg.Schedule.Task != "planning" {
		t.Errorf("Schedule = %+v", cfg.Schedule)
	}
	if cfg.Trains.NumServices != 7 {
		t.Errorf("Trains.NumServices = %d, want 7", cfg.Trains.NumServices)
	}
	if cfg.Trains.Stations["st helens"] != "SNH" {
		t.Errorf("Trains.Stations = %v", cfg.Trains.Stations)
	}
	if cfg.Registry.OnDuplicate != "warn" {
		t.Errorf("Registry.OnDuplicate = %q", cfg.Registry.OnDuplicate)
	}
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dispatch.yaml")
	if err := os.WriteFile(path, []byte("{}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("default Logging.Level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Weather.Units != "metric" {
		t.Errorf("default Weather.Units = %q, want metric", cfg.Weather.Units)
	}
	if cfg.Trains.NumServices != 5 {
		t.Errorf("default Trains.NumServices = %d, want 5", cfg.Trains.NumServices)
	}
	if cfg.Registry.OnDuplicate != "fail" {
		t.Errorf("default Registry.OnDuplicate = %q, want fail", cfg.Registry.OnDuplicate)
	}
	if cfg.Database.Path == "" {
		t.Error("default Database.Path is empty")
	}
}

func TestLoad_WeatherKeyFromEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dispatch.yaml")
	if err := os.WriteFile(path, []byte("{}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("OPENWEATHER_API_KEY", "owm-secret")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Weather.APIKey != "owm-secret" {
		t.Errorf("Weather.APIKey = %q, want env value", cfg.Weather.APIKey)
	}
}

func TestLoad_InvalidConfigFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dispatch.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: loud\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); !errors.Is(err, ErrInvalidLogLevel) {
		t.Errorf("Load() error = %v, want ErrInvalidLogLevel", err)
	}
}

func TestRequireProviderKey(t *testing.T) {
	for _, key := range providerKeyEnvVars {
		t.Setenv(key, "")
	}

	if err := RequireProviderKey(); !errors.Is(err, ErrNoProviderKey) {
		t.Errorf("RequireProviderKey() error = %v, want ErrNoProviderKey", err)
	}

	t.Setenv("OPENAI_API_KEY", "sk-test")
	if err := RequireProviderKey(); err != nil {
		t.Errorf("RequireProviderKey() error = %v, want nil", err)
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"/abs/path", "/abs/path"},
		{"relative/path", "relative/path"},
		{"~", home},
		{"~/data/dispatch.db", filepath.Join(home, "data", "dispatch.db")},
	}
	for _, tt := range tests {
		if got := expandPath(tt.input); got != tt.want {
			t.Errorf("expandPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
	if strings.HasPrefix(expandPath("~elsewhere"), home+"/") {
		t.Error("~user paths should not expand against our home")
	}
}
