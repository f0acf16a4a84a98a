package openrouter

import (
	"context"
	"log/slog"

	"github.com/repetix/repetix-api/internal/domain"
	"github.com/repetix/repetix-api/internal/generation"
	"github.com/repetix/repetix-api/internal/platform/logger"
)

// GenerationParams are the sampling parameters used for flashcards. They
// replace DefaultParams entirely, so no max_tokens limit is sent.
func GenerationParams() Params {
	return Params{
		Temperature:      Float(generation.Temperature),
		TopP:             Float(generation.TopP),
		FrequencyPenalty: Float(generation.FrequencyPenalty),
		PresencePenalty:  Float(generation.PresencePenalty),
	}
}

// Generator implements generation.Generator on top of a Client.
type Generator struct {
	client *Client
	logger *slog.Logger
}

// NewGenerator builds a Client from cfg. cfg.Params defaults to
// GenerationParams.
func NewGenerator(cfg Config) (*Generator, error) {
	if cfg.Params == nil {
		p := GenerationParams()
		cfg.Params = &p
	}
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Generator{client: client, logger: client.logger}, nil
}

var _ generation.Generator = (*Generator)(nil)

// Model implements generation.Generator.
func (g *Generator) Model() string {
	return g.client.Model()
}

// GenerateCandidates implements generation.Generator.
func (g *Generator) GenerateCandidates(ctx context.Context, text string) ([]domain.Candidate, error) {
	opts := &ChatOptions{
		ResponseFormat: &ResponseFormat{
			Type: "json_schema",
			JSONSchema: &JSONSchema{
				Name:   generation.SchemaName,
				Schema: generation.FlashcardSchema(),
			},
		},
	}

	var resp generation.Response
	if err := g.client.SendChatCompletion(ctx, generation.SystemPrompt, text, opts, &resp); err != nil {
		return nil, err
	}

	candidates, err := generation.NormalizeCandidates(resp.Candidates)
	if err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, g.logger).Info("candidates generated",
		slog.Int("received", len(resp.Candidates)),
		slog.Int("kept", len(candidates)))
	return candidates, nil
}
