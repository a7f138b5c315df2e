package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPCompleter talks to an OpenAI-compatible chat completion endpoint.
type HTTPCompleter struct {
	endpoint string
	apiKey   string
	hc       *http.Client
}

// HTTPOption configures an HTTPCompleter.
type HTTPOption func(*HTTPCompleter)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(c *HTTPCompleter) { c.hc = hc }
}

// NewHTTPCompleter creates a completer for endpoint. The API key may be
// empty for local endpoints.
func NewHTTPCompleter(endpoint, apiKey string, opts ...HTTPOption) *HTTPCompleter {
	c := &HTTPCompleter{
		endpoint: endpoint,
		apiKey:   apiKey,
		hc:       &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete implements Completer.
func (c *HTTPCompleter) Complete(ctx context.Context, model, system, user string) (string, error) {
	var messages []chatMessage
	if system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: user})

	body, err := json.Marshal(chatRequest{Model: model, Messages: messages})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion endpoint returned %s", resp.Status)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return out.Choices[0].Message.Content, nil
}
