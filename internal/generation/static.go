package generation

import (
	"context"
	"time"

	"github.com/repetix/repetix-api/internal/domain"
)

// StaticModelName is reported by StaticGenerator.
const StaticModelName = "static/mock"

// DefaultStaticDelay simulates model latency.
const DefaultStaticDelay = 500 * time.Millisecond

var staticCandidates = []domain.Candidate{
	{
		FrontText: "What is the main concept discussed in the text?",
		BackText:  "This is a mock response demonstrating the flashcard format.",
	},
	{
		FrontText: "How does this help with learning?",
		BackText:  "It provides structured question-answer pairs for effective revision.",
	},
	{
		FrontText: "What is the purpose of this text?",
		BackText:  "To demonstrate mock AI-generated flashcards for learning purposes.",
	},
}

// StaticGenerator returns the same three candidates for any input. It is
// selected with llm.provider = mock.
type StaticGenerator struct {
	Delay time.Duration
}

// NewStaticGenerator returns a StaticGenerator that waits delay before
// answering.
func NewStaticGenerator(delay time.Duration) *StaticGenerator {
	return &StaticGenerator{Delay: delay}
}

var _ Generator = (*StaticGenerator)(nil)

// GenerateCandidates implements Generator.
func (g *StaticGenerator) GenerateCandidates(ctx context.Context, _ string) ([]domain.Candidate, error) {
	if g.Delay > 0 {
		timer := time.NewTimer(g.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	out := make([]domain.Candidate, len(staticCandidates))
	copy(out, staticCandidates)
	return out, nil
}

// Model implements Generator.
func (g *StaticGenerator) Model() string {
	return StaticModelName
}
