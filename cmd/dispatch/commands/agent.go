package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marcus/dispatch/internal/agent"
	"github.com/marcus/dispatch/internal/config"
)

var agentCmd = &cobra.Command{
	Use:   "agent <prompt>",
	Short: "Prompt the configured LLM agent",
	Long: `Craft an agent from the configured provider/model (validated against
the model catalog) and send it a prompt.

Requires agent.endpoint in the config and at least one provider API key in
the environment.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAgent,
}

func init() {
	rootCmd.AddCommand(agentCmd)
}

func runAgent(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := config.RequireProviderKey(); err != nil {
		return err
	}
	if cfg.Agent.Endpoint == "" {
		return errors.New("agent.endpoint not configured")
	}

	catalog, err := agent.LoadCatalog(cfg.Agent.CatalogPath)
	if err != nil {
		return err
	}

	completer := agent.NewHTTPCompleter(cfg.Agent.Endpoint, providerKey(cfg.Agent.Provider))
	a, err := agent.New(catalog, cfg.Agent.Provider, cfg.Agent.Model, cfg.Agent.Instructions, completer)
	if err != nil {
		return err
	}

	reply, err := a.Prompt(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), reply)
	return nil
}

// providerKey returns the API key env var value for a provider.
func providerKey(provider string) string {
	switch provider {
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "google":
		return os.Getenv("GOOGLE_API_KEY")
	default:
		return ""
	}
}
