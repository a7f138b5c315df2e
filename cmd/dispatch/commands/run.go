package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcus/dispatch/internal/db"
	"github.com/marcus/dispatch/internal/runner"
	"github.com/marcus/dispatch/internal/taskgraph"
)

var runNoRecordFlag bool

var runCmd = &cobra.Command{
	Use:   "run <task>",
	Short: "Execute a task's function graph",
	Long: `Execute the ordered function graph for a task, recording each step
to the run-history database. Execution stops at the first failing step.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runNoRecordFlag, "no-record", false, "Skip recording the run to the database")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	task, err := taskgraph.Parse(args[0])
	if err != nil {
		return fmt.Errorf("%w (supported: %s)", err, taskNames())
	}

	_, graph, err := buildToolkit(cfg)
	if err != nil {
		return err
	}

	var store *db.DB
	if !runNoRecordFlag {
		store, err = db.Open(cfg.Database.Path)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	result, err := runner.New(graph, store, nil).Run(cmd.Context(), task)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "task %s\n", styleName.Render(string(task)))
	for i, step := range result.Steps {
		if step.Err != nil {
			fmt.Fprintf(out, "  %d. %s %s: %v\n", i+1, step.Function, styleBad.Render("failed"), step.Err)
			continue
		}
		fmt.Fprintf(out, "  %d. %s %s\n", i+1, step.Function, styleGood.Render("ok"))
	}

	return result.Err
}
