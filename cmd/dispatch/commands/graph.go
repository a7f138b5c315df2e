package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marcus/dispatch/internal/taskgraph"
)

var graphCmd = &cobra.Command{
	Use:   "graph [task]",
	Short: "Show the ordered function graph for a task",
	Long: `Show the ordered list of functions dispatch associates with a task.

Without an argument, lists every supported task and its graph.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGraph,
}

func init() {
	rootCmd.AddCommand(graphCmd)
}

func runGraph(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	_, graph, err := buildToolkit(cfg)
	if err != nil {
		return err
	}

	tasks := graph.TaskList()
	if len(args) == 1 {
		task, err := taskgraph.Parse(args[0])
		if err != nil {
			return fmt.Errorf("%w (supported: %s)", err, taskNames())
		}
		tasks = []taskgraph.Task{task}
	}

	out := cmd.OutOrStdout()
	for _, task := range tasks {
		steps, err := graph.For(task)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, styleName.Render(string(task)))
		for i, fn := range steps {
			fmt.Fprintf(out, "  %d. %s\n", i+1, fn.Name)
		}
	}
	return nil
}

func taskNames() string {
	names := make([]string, 0, len(taskgraph.Tasks()))
	for _, t := range taskgraph.Tasks() {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}
