// Package agent crafts LLM agents from a provider/model catalog.
// The transport behind an agent is a small Completer interface so tests can
// substitute a mock; the default implementation speaks the OpenAI-style
// chat completion protocol over HTTP.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownProvider = errors.New("unknown provider")
	ErrNotIncorporated = errors.New("model not incorporated for provider")
	ErrEmptyModel      = errors.New("model must not be empty")
	ErrEmptyCompletion = errors.New("completion contained no choices")
)

// Completer is the LLM transport seam.
type Completer interface {
	// Complete sends a system+user prompt pair to model and returns the
	// assistant text.
	Complete(ctx context.Context, model, system, user string) (string, error)
}

// Agent is a configured model plus standing instructions.
type Agent struct {
	model        string // provider:model
	instructions string
	completer    Completer
}

// New validates provider/model against the catalog and crafts an agent.
// Instructions may be empty.
func New(cat *Catalog, provider, model, instructions string, c Completer) (*Agent, error) {
	if model == "" {
		return nil, ErrEmptyModel
	}
	if !cat.HasProvider(provider) {
		return nil, fmt.Errorf("%q: %w", provider, ErrUnknownProvider)
	}
	if !cat.Incorporated(provider, model) {
		return nil, fmt.Errorf("%s:%s: %w", provider, model, ErrNotIncorporated)
	}

	return &Agent{
		model:        provider + ":" + model,
		instructions: instructions,
		completer:    c,
	}, nil
}

// Model returns the agent's provider-qualified model identifier.
func (a *Agent) Model() string {
	return a.model
}

// Instructions returns the agent's standing instructions.
func (a *Agent) Instructions() string {
	return a.instructions
}

// Prompt sends text to the agent and returns the response.
func (a *Agent) Prompt(ctx context.Context, text string) (string, error) {
	// the transport wants the bare model name, not the provider prefix
	model := a.model
	if i := strings.IndexByte(model, ':'); i >= 0 {
		model = model[i+1:]
	}

	out, err := a.completer.Complete(ctx, model, a.instructions, text)
	if err != nil {
		return "", fmt.Errorf("prompting %s: %w", a.model, err)
	}
	return out, nil
}
