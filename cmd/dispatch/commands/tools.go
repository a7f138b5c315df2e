package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Inspect the function registry",
}

var toolsJSONFlag bool

var toolsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered functions",
	Long: `List every function in the registry with its documentation.

With --json, emits the full signature metadata as a JSON array, the same
document a planner consumes.`,
	RunE: runToolsList,
}

var toolsDescribeCmd = &cobra.Command{
	Use:   "describe <name>",
	Short: "Show the full signature of a registered function",
	Args:  cobra.ExactArgs(1),
	RunE:  runToolsDescribe,
}

func init() {
	toolsListCmd.Flags().BoolVar(&toolsJSONFlag, "json", false, "Emit signatures as JSON")
	toolsCmd.AddCommand(toolsListCmd)
	toolsCmd.AddCommand(toolsDescribeCmd)
	rootCmd.AddCommand(toolsCmd)
}

func runToolsList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	reg, _, err := buildToolkit(cfg)
	if err != nil {
		return err
	}

	if toolsJSONFlag {
		data, err := reg.Describe()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	out := cmd.OutOrStdout()
	for _, fn := range reg.List() {
		fmt.Fprintf(out, "%s(%s)\n", styleName.Render(fn.Name), argSummary(fn.Args, fn.OptionalArgs))
		if fn.Doc != "" {
			fmt.Fprintf(out, "    %s\n", styleMuted.Render(fn.Doc))
		}
	}
	return nil
}

func runToolsDescribe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	reg, _, err := buildToolkit(cfg)
	if err != nil {
		return err
	}

	fn, ok := reg.Get(args[0])
	if !ok {
		return fmt.Errorf("no registered function named %q", args[0])
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, styleName.Render(fn.Name))
	if fn.Doc != "" {
		fmt.Fprintf(out, "  %s\n", fn.Doc)
	}
	fmt.Fprintf(out, "  returns: %s\n", fn.ReturnType)
	if len(fn.Args) == 0 {
		fmt.Fprintln(out, "  args: none")
		return nil
	}
	fmt.Fprintln(out, "  args:")
	optional := make(map[string]bool, len(fn.OptionalArgs))
	for _, name := range fn.OptionalArgs {
		optional[name] = true
	}
	for _, name := range fn.Args {
		kind := "required"
		if optional[name] {
			kind = "optional"
		}
		fmt.Fprintf(out, "    %-16s %-10s %s\n", name, fn.Types[name], styleMuted.Render(kind))
	}
	return nil
}

// argSummary renders arg names, marking optional ones with a trailing '?'.
func argSummary(args, optionalArgs []string) string {
	optional := make(map[string]bool, len(optionalArgs))
	for _, name := range optionalArgs {
		optional[name] = true
	}
	parts := make([]string, 0, len(args))
	for _, name := range args {
		if optional[name] {
			name += "?"
		}
		parts = append(parts, name)
	}
	return strings.Join(parts, ", ")
}
