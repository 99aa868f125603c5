// Package extract converts raw journal text into structured metadata using
// a language model and a fixed JSON contract.
package extract

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/journallm/journallm/internal/llm"
	"github.com/journallm/journallm/internal/model"
)

type Extractor struct {
	backend llm.Backend
	log     zerolog.Logger
}

func New(backend llm.Backend, log zerolog.Logger) *Extractor {
	return &Extractor{backend: backend, log: log}
}

// ExtractRaw returns the decoded model output without defaults applied.
func (x *Extractor) ExtractRaw(ctx context.Context, text string) (Metadata, error) {
	raw, err := x.backend.Generate(ctx, SystemPrompt, UserContent(text))
	if err != nil {
		return nil, llm.Unavailable(err)
	}
	m, err := Parse(raw)
	if err != nil {
		x.log.Warn().Str("backend", x.backend.Name()).Int("raw_len", len(raw)).Msg("unparseable extraction output")
		return nil, err
	}
	return m, nil
}

// Extract returns normalized metadata for one journal entry.
func (x *Extractor) Extract(ctx context.Context, text string) (*model.Extraction, error) {
	m, err := x.ExtractRaw(ctx, text)
	if err != nil {
		return nil, err
	}
	out := Normalize(m)
	return &out, nil
}
