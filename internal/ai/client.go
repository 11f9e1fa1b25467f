// Package ai calls the external text-generation provider. The client
// is created per request with the caller-supplied credential; no key is
// ever held in process-wide state beyond the request's lifetime.
package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"finsights/internal/core"
	"finsights/internal/prompt"
)

const (
	// DefaultModel is the text-generation model used when none is
	// configured.
	DefaultModel = "gemini-2.5-flash"

	// CredentialPrefix is the expected prefix of a provider API key.
	// Validation happens at the API boundary, not inside the engine.
	CredentialPrefix = "AIza"
)

// TextGenerator produces text from a composed prompt payload.
type TextGenerator interface {
	Generate(ctx context.Context, apiKey string, p prompt.Payload) (string, error)
}

// Client is the Gemini-backed TextGenerator.
type Client struct {
	model string
}

// NewClient creates a provider client for the given model name.
func NewClient(model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{model: model}
}

// ValidCredential reports whether a caller-supplied API key is present
// and carries the provider prefix.
func ValidCredential(apiKey string) bool {
	return apiKey != "" && strings.HasPrefix(apiKey, CredentialPrefix)
}

// Generate sends the payload to the provider and returns its text
// verbatim. Provider failures and empty responses surface as
// core.ErrUpstream with the cause attached.
func (c *Client) Generate(ctx context.Context, apiKey string, p prompt.Payload) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return "", fmt.Errorf("create provider client: %v: %w", err, core.ErrUpstream)
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: p.Text}},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate %s content: %v: %w", p.Kind, err, core.ErrUpstream)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("provider returned no %s content: %w", p.Kind, core.ErrUpstream)
	}

	slog.InfoContext(ctx, "Provider call completed",
		"kind", string(p.Kind),
		"model", c.model,
		"prompt_bytes", len(p.Text),
		"response_bytes", len(text))

	return text, nil
}
