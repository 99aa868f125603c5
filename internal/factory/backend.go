package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/journallm/journallm/internal/config"
	"github.com/journallm/journallm/internal/llm"
	"github.com/journallm/journallm/internal/llm/gemini"
	"github.com/journallm/journallm/internal/llm/ollama"
)

// NewBackend returns the language model backend selected by cfg.LLMBackend.
// The choice is made once; callers never switch backends mid-process.
func NewBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (llm.Backend, error) {
	switch cfg.LLMBackend {
	case "", config.BackendOllama:
		timeout := time.Duration(cfg.OllamaTimeoutSeconds) * time.Second
		b := ollama.New(cfg.OllamaURL, cfg.OllamaModel, timeout)
		log.Info().Str("backend", b.Name()).Str("model", cfg.OllamaModel).Str("url", cfg.OllamaURL).Msg("llm backend selected")
		return b, nil
	case config.BackendGemini:
		b, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		log.Info().Str("backend", b.Name()).Str("model", cfg.GeminiModel).Msg("llm backend selected")
		return b, nil
	default:
		return nil, fmt.Errorf("unknown LLM_BACKEND: %s", cfg.LLMBackend)
	}
}
