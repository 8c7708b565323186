package chunkgen

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chatterling/engine/internal/content"
	"github.com/chatterling/engine/internal/llm"
)

// LLMGenerator implements Generator using the LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
}

// New creates a new LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg}
}

// chunkOutput is one raw LLM chunk before validation.
type chunkOutput struct {
	Text        string       `json:"text"`
	Translation string       `json:"translation"`
	Kind        string       `json:"kind"`
	Slots       []slotOutput `json:"slots"`
	Difficulty  int          `json:"difficulty"`
	Topics      []string     `json:"topics"`
}

type slotOutput struct {
	Placeholder string   `json:"placeholder"`
	Options     []string `json:"options"`
}

// batchOutput is the raw LLM response before validation.
type batchOutput struct {
	Chunks []chunkOutput `json:"chunks"`
}

// Generate produces up to spec.Count chunks for the given spec.
// Chunks that fail structural validation are dropped silently.
func (g *LLMGenerator) Generate(ctx context.Context, spec Spec) ([]content.Chunk, error) {
	ctx = llm.WithPurpose(ctx, "chunk-gen")

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(spec, g.config)},
		},
		Schema:      ChunkBatchSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	var raw batchOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	out := make([]content.Chunk, 0, len(raw.Chunks))
	for _, rc := range raw.Chunks {
		c := content.Chunk{
			Text:        rc.Text,
			Translation: rc.Translation,
			Language:    spec.Language,
			Kind:        content.Kind(rc.Kind),
			Difficulty:  content.ClampDifficulty(rc.Difficulty),
			Topics:      rc.Topics,
		}
		if spec.AgeBand != "" {
			c.AgeBands = []string{spec.AgeBand}
		}
		for _, s := range rc.Slots {
			c.Slots = append(c.Slots, content.Slot{
				Placeholder: s.Placeholder,
				Options:     s.Options,
			})
		}

		if err := c.Validate(); err != nil {
			continue
		}

		out = append(out, c)
		if len(out) == spec.Count {
			break
		}
	}

	return out, nil
}
