package agent

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// Catalog lists the models incorporated per provider. Membership is a
// substring match against the catalog entries, so "claude-sonnet-4-0"
// matches an entry like "claude-sonnet-4-0-latest".
type Catalog struct {
	providers map[string][]string
}

// DefaultCatalog returns the built-in provider/model index, used when no
// catalog file is configured.
func DefaultCatalog() *Catalog {
	return &Catalog{providers: map[string][]string{
		"anthropic": {
			"claude-sonnet-4-0",
			"claude-opus-4-0",
			"claude-3-5-haiku-latest",
		},
		"openai": {
			"gpt-4o",
			"gpt-4o-mini",
			"o3-mini",
		},
		"google": {
			"gemini-2.0-flash",
			"gemini-1.5-pro",
		},
	}}
}

// LoadCatalog reads a provider-to-model-list YAML file. An empty path
// returns the built-in catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading model catalog: %w", err)
	}

	providers := make(map[string][]string)
	for _, provider := range v.AllKeys() {
		providers[provider] = v.GetStringSlice(provider)
	}
	if len(providers) == 0 {
		return nil, fmt.Errorf("model catalog %s lists no providers", path)
	}
	return &Catalog{providers: providers}, nil
}

// HasProvider reports whether provider is in the catalog.
func (c *Catalog) HasProvider(provider string) bool {
	_, ok := c.providers[provider]
	return ok
}

// Providers returns catalog providers, sorted.
func (c *Catalog) Providers() []string {
	out := make([]string, 0, len(c.providers))
	for p := range c.providers {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Incorporated reports whether model is available for provider.
func (c *Catalog) Incorporated(provider, model string) bool {
	for _, entry := range c.providers[provider] {
		if strings.Contains(entry, model) {
			return true
		}
	}
	return false
}
