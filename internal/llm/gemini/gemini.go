// Package gemini is the cloud llm.Backend backed by Google's Gemini API.
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

// generator is the subset of *genai.Models used here.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	Get(ctx context.Context, model string, config *genai.GetModelConfig) (*genai.Model, error)
}

// Backend sends a single combined prompt to Gemini.
type Backend struct {
	models generator
	model  string
}

// New creates a Gemini backend. apiKey is required.
func New(ctx context.Context, apiKey, model string) (*Backend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Backend{models: client.Models, model: model}, nil
}

func (b *Backend) Name() string { return "gemini" }

// Prompt combines the system instruction and user content into the single
// prompt string the cloud model accepts.
func Prompt(system, user string) string {
	return system + "\n\n" + user + "\nAssistant:"
}

func (b *Backend) Generate(ctx context.Context, system, user string) (string, error) {
	resp, err := b.models.GenerateContent(ctx, b.model, genai.Text(Prompt(system, user)), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if resp == nil {
		return "", nil
	}
	return resp.Text(), nil
}

// HealthPing implements health.HealthPinger by resolving the configured model.
func (b *Backend) HealthPing(ctx context.Context) error {
	_, err := b.models.Get(ctx, b.model, nil)
	return err
}
