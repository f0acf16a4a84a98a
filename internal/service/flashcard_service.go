package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/repetix/repetix-api/internal/domain"
	"github.com/repetix/repetix-api/internal/platform/logger"
	"github.com/repetix/repetix-api/internal/store"
)

// MaxCardsPerRequest bounds a single create request.
const MaxCardsPerRequest = 100

// CreateFlashcardInput is one card of a create request.
type CreateFlashcardInput struct {
	FrontText    string
	BackText     string
	Source       domain.FlashcardSource
	GenerationID *uuid.UUID
}

// FlashcardService provides flashcard operations scoped to one user.
type FlashcardService interface {
	// Create validates and inserts all cards in one transaction, together
	// with the accepted counters of the generations they came from.
	Create(ctx context.Context, userID uuid.UUID, inputs []CreateFlashcardInput) ([]*domain.Flashcard, error)

	// Get returns the user's card or store.ErrFlashcardNotFound.
	Get(ctx context.Context, userID, id uuid.UUID) (*domain.Flashcard, error)

	// List returns one page of the user's cards.
	List(ctx context.Context, userID uuid.UUID, opts domain.ListFlashcardsOptions) ([]*domain.Flashcard, domain.Page, error)

	// Update edits the texts and source of the user's card.
	Update(
		ctx context.Context,
		userID, id uuid.UUID,
		front, back string,
		source domain.FlashcardSource,
	) (*domain.Flashcard, error)

	// Delete removes the user's card.
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type flashcardServiceImpl struct {
	db          *sql.DB
	cards       store.FlashcardStore
	generations store.GenerationStore
	logger      *slog.Logger
}

// NewFlashcardService creates a new FlashcardService.
// It returns an error if any of the required dependencies are nil.
func NewFlashcardService(
	db *sql.DB,
	cards store.FlashcardStore,
	generations store.GenerationStore,
	logger *slog.Logger,
) (FlashcardService, error) {
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}
	if cards == nil {
		return nil, domain.NewValidationError("cards", "cannot be nil", domain.ErrValidation)
	}
	if generations == nil {
		return nil, domain.NewValidationError("generations", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &flashcardServiceImpl{
		db:          db,
		cards:       cards,
		generations: generations,
		logger:      logger.With(slog.String("component", "flashcard_service")),
	}, nil
}

// acceptance counts the cards one generation contributed to a create request.
type acceptance struct {
	generationID uuid.UUID
	unedited     int
	edited       int
}

// Create implements FlashcardService.
func (s *flashcardServiceImpl) Create(
	ctx context.Context,
	userID uuid.UUID,
	inputs []CreateFlashcardInput,
) ([]*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	switch {
	case len(inputs) == 0:
		return nil, domain.NewValidationError("cards", "must contain at least 1 flashcard", ErrNoCards)
	case len(inputs) > MaxCardsPerRequest:
		return nil, domain.NewValidationError("cards", "must contain at most 100 flashcards", ErrTooManyCards)
	}

	cards := make([]*domain.Flashcard, 0, len(inputs))
	var errs domain.ValidationErrors
	for i, in := range inputs {
		card, err := domain.NewFlashcard(userID, in.GenerationID, in.FrontText, in.BackText, in.Source)
		if err != nil {
			errs = append(errs, validationErrors(err).Prefixed(fmt.Sprintf("cards[%d].", i))...)
			continue
		}
		cards = append(cards, card)
	}
	if len(errs) > 0 {
		return nil, errs
	}

	accepted := countAccepted(cards)

	log.Debug("creating flashcards in transaction",
		slog.Int("card_count", len(cards)),
		slog.Int("generation_count", len(accepted)))

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txGenerations := s.generations.WithTx(tx)

		// Counters first: a generation owned by someone else fails here,
		// before any card is written.
		for _, a := range accepted {
			if err := txGenerations.IncrementAccepted(ctx, userID, a.generationID, a.unedited, a.edited); err != nil {
				return fmt.Errorf("failed to update generation %s: %w", a.generationID, err)
			}
		}

		if err := s.cards.WithTx(tx).CreateMultiple(ctx, cards); err != nil {
			return fmt.Errorf("failed to save flashcards: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrGenerationNotFound) {
			log.Debug("flashcards reference an unknown generation", slog.String("error", err.Error()))
			return nil, err
		}
		log.Error("failed to create flashcards", slog.String("error", err.Error()))
		return nil, NewServiceError("flashcard", "create", "failed to create flashcards", err)
	}

	log.Info("created flashcards", slog.Int("card_count", len(cards)))
	return cards, nil
}

// Get implements FlashcardService.
func (s *flashcardServiceImpl) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Flashcard, error) {
	card, err := s.cards.GetByID(ctx, userID, id)
	if err != nil {
		if !store.IsNotFoundError(err) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to retrieve flashcard",
				slog.String("error", err.Error()),
				slog.String("flashcard_id", id.String()))
		}
		return nil, fmt.Errorf("failed to retrieve flashcard: %w", err)
	}
	return card, nil
}

// List implements FlashcardService.
func (s *flashcardServiceImpl) List(
	ctx context.Context,
	userID uuid.UUID,
	opts domain.ListFlashcardsOptions,
) ([]*domain.Flashcard, domain.Page, error) {
	opts, err := opts.Normalize()
	if err != nil {
		return nil, domain.Page{}, err
	}

	cards, total, err := s.cards.List(ctx, userID, opts)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list flashcards",
			slog.String("error", err.Error()))
		return nil, domain.Page{}, fmt.Errorf("failed to list flashcards: %w", err)
	}

	return cards, domain.Page{Page: opts.Page, PageSize: opts.PageSize, Total: total}, nil
}

// Update implements FlashcardService.
func (s *flashcardServiceImpl) Update(
	ctx context.Context,
	userID, id uuid.UUID,
	front, back string,
	source domain.FlashcardSource,
) (*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("flashcard_id", id.String()))

	card, err := s.cards.GetByID(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve flashcard: %w", err)
	}

	if err := card.Update(front, back, source); err != nil {
		return nil, err
	}

	if err := s.cards.Update(ctx, card); err != nil {
		if !store.IsNotFoundError(err) {
			log.Error("failed to update flashcard", slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("failed to update flashcard: %w", err)
	}

	log.Debug("updated flashcard")
	return card, nil
}

// Delete implements FlashcardService.
func (s *flashcardServiceImpl) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.cards.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("failed to delete flashcard: %w", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Debug("deleted flashcard",
		slog.String("flashcard_id", id.String()))
	return nil
}

// countAccepted groups AI cards by generation, in first-seen order.
func countAccepted(cards []*domain.Flashcard) []*acceptance {
	var out []*acceptance
	index := make(map[uuid.UUID]*acceptance)
	for _, c := range cards {
		if c.GenerationID == nil {
			continue
		}
		a, ok := index[*c.GenerationID]
		if !ok {
			a = &acceptance{generationID: *c.GenerationID}
			index[*c.GenerationID] = a
			out = append(out, a)
		}
		switch c.Source {
		case domain.SourceAIFull:
			a.unedited++
		case domain.SourceAIEdited:
			a.edited++
		}
	}
	return out
}

// validationErrors returns err as a ValidationErrors list.
func validationErrors(err error) domain.ValidationErrors {
	var verrs domain.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs
	}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return domain.ValidationErrors{verr}
	}
	return domain.ValidationErrors{domain.NewValidationError("", err.Error(), err)}
}
