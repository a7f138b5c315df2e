package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/marcus/dispatch/internal/components"
	"github.com/marcus/dispatch/internal/config"
	"github.com/marcus/dispatch/internal/logging"
	"github.com/marcus/dispatch/internal/registry"
	"github.com/marcus/dispatch/internal/taskgraph"
	"github.com/marcus/dispatch/internal/trains"
	"github.com/marcus/dispatch/internal/weather"
)

// Shared output styles.
var (
	styleName  = lipgloss.NewStyle().Bold(true)
	styleMuted = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	styleBad   = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
	styleGood  = lipgloss.NewStyle().Foreground(lipgloss.Color("35"))
)

// loadConfig reads configuration honoring the --config and --verbose flags
// and initializes logging from it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	logCfg := logging.Config{
		Level:         cfg.Logging.Level,
		Format:        cfg.Logging.Format,
		Path:          cfg.Logging.Path,
		RetentionDays: cfg.Logging.RetentionDays,
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logCfg.Level = "debug"
	}
	if err := logging.Init(logCfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// buildToolkit assembles the function registry and task graph the way the
// daemon and every introspection command see them: task components first,
// then the live tool servers.
func buildToolkit(cfg *config.Config) (*registry.Registry, *taskgraph.Graph, error) {
	policy, err := registry.ParsePolicy(cfg.Registry.OnDuplicate)
	if err != nil {
		return nil, nil, err
	}

	reg := registry.New(
		registry.WithDuplicatePolicy(policy),
		registry.WithLogger(logging.Default()),
	)

	graph, err := components.BuildGraphs(reg)
	if err != nil {
		return nil, nil, err
	}

	if err := registerToolServers(reg, cfg); err != nil {
		return nil, nil, err
	}

	return reg, graph, nil
}

// registerToolServers exposes the weather and trains clients through the
// registry so a planner can discover and invoke them like any component.
func registerToolServers(reg *registry.Registry, cfg *config.Config) error {
	wc := weatherClient(cfg)
	units := cfg.Weather.Units
	if units == "" {
		units = "metric"
	}

	if _, err := reg.Register(
		"get_current_weather",
		"Get current weather conditions for a city.",
		func(ctx context.Context, city, units string) (string, error) {
			return wc.Current(ctx, city, units)
		},
		registry.Required("city"), registry.Optional("units", units),
	); err != nil {
		return fmt.Errorf("registering weather tools: %w", err)
	}

	if _, err := reg.Register(
		"get_weather_forecast",
		"Get 24-hour weather forecast for a city.",
		func(ctx context.Context, city, units string) (string, error) {
			return wc.Forecast(ctx, city, units)
		},
		registry.Required("city"), registry.Optional("units", units),
	); err != nil {
		return fmt.Errorf("registering weather tools: %w", err)
	}

	tc := trainsClient(cfg)
	numServices := cfg.Trains.NumServices
	if numServices <= 0 {
		numServices = trains.DefaultNumServices
	}

	if _, err := reg.Register(
		"get_train_departures",
		"Get live train departure information for a UK station.",
		func(ctx context.Context, station, destination string, numServices int) (string, error) {
			return tc.Departures(ctx, station, destination, numServices)
		},
		registry.Required("station"),
		registry.Optional("destination", ""),
		registry.Optional("num_services", numServices),
	); err != nil {
		return fmt.Errorf("registering train tools: %w", err)
	}

	if _, err := reg.Register(
		"get_train_journey",
		"Get direct train services between two UK stations.",
		func(ctx context.Context, origin, destination string, numServices int) (string, error) {
			return tc.Journey(ctx, origin, destination, numServices)
		},
		registry.Required("origin"),
		registry.Required("destination"),
		registry.Optional("num_services", 3),
	); err != nil {
		return fmt.Errorf("registering train tools: %w", err)
	}

	return nil
}

func weatherClient(cfg *config.Config) *weather.Client {
	apiKey := cfg.Weather.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENWEATHER_API_KEY")
	}

	opts := []weather.Option{weather.WithTimeout(cfg.Weather.Timeout())}
	if cfg.Weather.BaseURL != "" {
		opts = append(opts, weather.WithBaseURL(cfg.Weather.BaseURL))
	}
	return weather.New(apiKey, opts...)
}

func trainsClient(cfg *config.Config) *trains.Client {
	var opts []trains.Option
	if cfg.Trains.BaseURL != "" {
		opts = append(opts, trains.WithBaseURL(cfg.Trains.BaseURL))
	}
	if len(cfg.Trains.Stations) > 0 {
		opts = append(opts, trains.WithStations(cfg.Trains.Stations))
	}
	return trains.New(opts...)
}
