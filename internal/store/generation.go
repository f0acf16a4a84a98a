package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/repetix/repetix-api/internal/domain"
)

// GenerationStore persists successful AI generations.
type GenerationStore interface {
	// Create inserts the generation with its candidates.
	Create(ctx context.Context, gen *domain.Generation) error

	// GetByID returns the user's generation.
	// Returns ErrGenerationNotFound if it does not exist or belongs to someone else.
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Generation, error)

	// List returns one page of the user's generations, newest first, and the
	// total count.
	List(ctx context.Context, userID uuid.UUID, page domain.Page) ([]*domain.Generation, int, error)

	// IncrementAccepted adds to the accepted counters of the user's generation.
	// Returns ErrGenerationNotFound if no row matches.
	IncrementAccepted(ctx context.Context, userID, id uuid.UUID, unedited, edited int) error

	// WithTx returns a GenerationStore bound to tx.
	WithTx(tx *sql.Tx) GenerationStore
}

// GenerationErrorStore persists failed AI generation attempts.
type GenerationErrorStore interface {
	Create(ctx context.Context, entry *domain.GenerationErrorLog) error

	// List returns one page of the user's error logs, newest first, and the
	// total count.
	List(ctx context.Context, userID uuid.UUID, page domain.Page) ([]*domain.GenerationErrorLog, int, error)
}
