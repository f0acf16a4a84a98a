package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/repetix/repetix-api/internal/domain"
)

// FlashcardStore defines the interface for flashcard persistence.
type FlashcardStore interface {
	// CreateMultiple inserts all cards. Run it inside RunInTransaction when
	// the batch must be atomic together with other writes.
	CreateMultiple(ctx context.Context, cards []*domain.Flashcard) error

	// GetByID returns the user's card.
	// Returns ErrFlashcardNotFound if it does not exist or belongs to someone else.
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Flashcard, error)

	// List returns one page of the user's cards and the total count matching
	// the filter. opts must already be normalized.
	List(ctx context.Context, userID uuid.UUID, opts domain.ListFlashcardsOptions) ([]*domain.Flashcard, int, error)

	// Update persists the card's texts, source and updated_at.
	// Returns ErrFlashcardNotFound if no row owned by card.UserID matches.
	Update(ctx context.Context, card *domain.Flashcard) error

	// Delete removes the user's card.
	// Returns ErrFlashcardNotFound if nothing was deleted.
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// WithTx returns a FlashcardStore bound to tx.
	WithTx(tx *sql.Tx) FlashcardStore
}
