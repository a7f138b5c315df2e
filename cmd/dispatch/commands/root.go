// Package commands implements the dispatch CLI commands using cobra.
package commands

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is set at build time
	Version = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Tool registry and task graphs for LLM agents",
	Long: `Dispatch keeps a registry of callable tool functions and maps
high-level tasks (research, planning) to ordered function graphs.

It also ships two tool servers an agent can call: live weather via
OpenWeatherMap and UK train departures via National Rail.`,
	Version: Version,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: ./dispatch.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose output")
}
