package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var weatherUnitsFlag string

var weatherCmd = &cobra.Command{
	Use:   "weather",
	Short: "Weather tool server (OpenWeatherMap)",
}

var weatherCurrentCmd = &cobra.Command{
	Use:   "current <city>",
	Short: "Current conditions for a city",
	Args:  cobra.ExactArgs(1),
	RunE:  runWeatherCurrent,
}

var weatherForecastCmd = &cobra.Command{
	Use:   "forecast <city>",
	Short: "24-hour forecast for a city",
	Args:  cobra.ExactArgs(1),
	RunE:  runWeatherForecast,
}

func init() {
	weatherCmd.PersistentFlags().StringVar(&weatherUnitsFlag, "units", "", "Temperature units: metric, imperial, or kelvin")
	weatherCmd.AddCommand(weatherCurrentCmd)
	weatherCmd.AddCommand(weatherForecastCmd)
	rootCmd.AddCommand(weatherCmd)
}

func resolveUnits(configured string) string {
	if weatherUnitsFlag != "" {
		return weatherUnitsFlag
	}
	if configured != "" {
		return configured
	}
	return "metric"
}

func runWeatherCurrent(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	report, err := weatherClient(cfg).Current(cmd.Context(), args[0], resolveUnits(cfg.Weather.Units))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), report)
	return nil
}

func runWeatherForecast(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	report, err := weatherClient(cfg).Forecast(cmd.Context(), args[0], resolveUnits(cfg.Weather.Units))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), report)
	return nil
}
