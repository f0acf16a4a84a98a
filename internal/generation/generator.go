package generation

import (
	"context"

	"github.com/repetix/repetix-api/internal/domain"
)

// Generator proposes flashcard candidates for a piece of source text.
type Generator interface {
	// GenerateCandidates returns at least one normalized candidate, or an
	// error wrapping one of the sentinels in errors.go.
	GenerateCandidates(ctx context.Context, text string) ([]domain.Candidate, error)

	// Model names the model that produces the candidates. It is recorded
	// with every generation and error log.
	Model() string
}
