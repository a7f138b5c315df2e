package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/marcus/dispatch/internal/db"
)

var historyLimitFlag int

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show recent task runs",
	Long: `List recent task runs from the run-history database.

With a run id, shows the recorded steps of that run instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimitFlag, "limit", 20, "Maximum number of runs to list")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store, err := db.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()

	if len(args) == 1 {
		runID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid run id %q", args[0])
		}
		steps, err := store.StepsForRun(runID)
		if err != nil {
			return err
		}
		if len(steps) == 0 {
			fmt.Fprintf(out, "no steps recorded for run %d\n", runID)
			return nil
		}
		for _, s := range steps {
			line := fmt.Sprintf("%d. %s %s", s.Position+1, s.Function, renderStatus(s.Status))
			if s.Error != "" {
				line += " " + styleMuted.Render(s.Error)
			}
			fmt.Fprintln(out, line)
		}
		return nil
	}

	runs, err := store.RecentRuns(historyLimitFlag)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs recorded")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(out, "%-5d %-10s %-10s %s\n",
			r.ID, r.Task, renderStatus(r.Status),
			styleMuted.Render(r.StartedAt.Local().Format("2006-01-02 15:04:05")))
	}
	return nil
}

func renderStatus(status string) string {
	switch status {
	case db.StatusCompleted:
		return styleGood.Render(status)
	case db.StatusFailed:
		return styleBad.Render(status)
	default:
		return status
	}
}
