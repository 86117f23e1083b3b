// Package gemini adapts the Gemini API to the summary generator port.
package gemini

import (
	"context"
	"errors"
	"fmt"

	portssvc "github.com/SscSPs/finanalysis/internal/core/ports/services"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Generator calls a Gemini model with a single text prompt.
type Generator struct {
	client *genai.Client
	model  string
}

var _ portssvc.SummaryGenerator = (*Generator)(nil)

// NewGenerator creates a client for the Gemini developer API.
func NewGenerator(ctx context.Context, apiKey, model string) (*Generator, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key cannot be empty")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &Generator{client: client, model: model}, nil
}

// Generate returns the text of the model's answer. An empty answer is not an error.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content with %s: %w", g.model, err)
	}
	return resp.Text(), nil
}
