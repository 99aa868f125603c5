// Package ollama is the local llm.Backend, talking to an Ollama server's chat API.
package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultURL = "http://localhost:11434"

// Backend calls the local Ollama chat API. Journal text never leaves the machine.
type Backend struct {
	client *resty.Client
	model  string
}

// New creates a Backend for baseURL (scheme optional) and model.
func New(baseURL, model string, timeout time.Duration) *Backend {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	return &Backend{client: c, model: model}
}

func (b *Backend) Name() string { return "ollama" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Error   string      `json:"error"`
}

// Generate sends a two-message exchange (system, user) and returns message.content.
func (b *Backend) Generate(ctx context.Context, system, user string) (string, error) {
	reqBody := chatRequest{
		Model: b.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}
	resp, err := b.client.R().
		SetContext(ctx).
		SetBody(&reqBody).
		Post("/api/chat")
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	var cr chatResponse
	if resp.StatusCode() != http.StatusOK {
		// best effort: Ollama reports failures as {"error": "..."}
		if json.Unmarshal(resp.Body(), &cr) == nil && cr.Error != "" {
			return "", fmt.Errorf("ollama status %d: %s", resp.StatusCode(), cr.Error)
		}
		return "", fmt.Errorf("ollama status %d: %s", resp.StatusCode(), resp.String())
	}
	if err := json.Unmarshal(resp.Body(), &cr); err != nil {
		return "", fmt.Errorf("ollama decode: %w", err)
	}
	if cr.Error != "" {
		return "", fmt.Errorf("ollama error: %s", cr.Error)
	}
	return cr.Message.Content, nil
}

// HealthPing implements health.HealthPinger.
// It checks /api/tags for the configured model's presence.
func (b *Backend) HealthPing(ctx context.Context) error {
	resp, err := b.client.R().SetContext(ctx).Get("/api/tags")
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("ollama status %d", resp.StatusCode())
	}
	var data struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.Unmarshal(resp.Body(), &data); err != nil {
		return err
	}
	want := baseModelName(b.model)
	for _, m := range data.Models {
		if baseModelName(m.Name) == want {
			return nil
		}
	}
	return fmt.Errorf("model %s not found", want)
}

// baseModelName drops the tag: "llama3.2:latest" -> "llama3.2".
func baseModelName(name string) string {
	return strings.SplitN(name, ":", 2)[0]
}
