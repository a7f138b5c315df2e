package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var trainsNumFlag int

var trainsCmd = &cobra.Command{
	Use:   "trains",
	Short: "UK train departures tool server (National Rail via Huxley2)",
}

var trainsDeparturesCmd = &cobra.Command{
	Use:   "departures <station> [destination]",
	Short: "Live departure board for a station, optionally filtered by destination",
	Long: `Show the live departure board for a UK station.

Stations can be given as names ("Liverpool Lime Street") or 3-letter CRS
codes ("LIV").`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runTrainsDepartures,
}

var trainsJourneyCmd = &cobra.Command{
	Use:   "journey <origin> <destination>",
	Short: "Next direct services between two stations",
	Args:  cobra.ExactArgs(2),
	RunE:  runTrainsJourney,
}

func init() {
	trainsCmd.PersistentFlags().IntVar(&trainsNumFlag, "num", 0, "Number of services to show")
	trainsCmd.AddCommand(trainsDeparturesCmd)
	trainsCmd.AddCommand(trainsJourneyCmd)
	rootCmd.AddCommand(trainsCmd)
}

func runTrainsDepartures(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	destination := ""
	if len(args) == 2 {
		destination = args[1]
	}
	num := trainsNumFlag
	if num <= 0 {
		num = cfg.Trains.NumServices
	}

	board, err := trainsClient(cfg).Departures(cmd.Context(), args[0], destination, num)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), board)
	return nil
}

func runTrainsJourney(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	num := trainsNumFlag
	if num <= 0 {
		num = 3
	}

	services, err := trainsClient(cfg).Journey(cmd.Context(), args[0], args[1], num)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), services)
	return nil
}
