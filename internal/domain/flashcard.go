package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Text limits for the two sides of a flashcard, counted in characters.
const (
	MaxFrontTextLength = 200
	MaxBackTextLength  = 500
)

// FlashcardSource records how a flashcard came to exist.
type FlashcardSource string

// Possible flashcard sources.
const (
	// SourceManual cards were typed in by the user.
	SourceManual FlashcardSource = "manual"
	// SourceAIFull cards are AI candidates accepted without changes.
	SourceAIFull FlashcardSource = "ai-full"
	// SourceAIEdited cards are AI candidates the user edited before accepting.
	SourceAIEdited FlashcardSource = "ai-edited"
)

// Flashcard validation errors.
var (
	ErrFlashcardIDEmpty       = errors.New("flashcard ID cannot be empty")
	ErrFlashcardUserIDEmpty   = errors.New("flashcard user ID cannot be empty")
	ErrInvalidSource          = errors.New("invalid flashcard source")
	ErrFrontTextEmpty         = errors.New("front text is required")
	ErrFrontTextTooLong       = errors.New("front text must not exceed 200 characters")
	ErrBackTextEmpty          = errors.New("back text is required")
	ErrBackTextTooLong        = errors.New("back text must not exceed 500 characters")
	ErrGenerationIDRequired   = errors.New("generation ID is required for AI flashcards")
	ErrGenerationIDNotAllowed = errors.New("generation ID must be null for manual flashcards")
	ErrSourceNotUpdatable     = errors.New("source must be either 'manual' or 'ai-edited'")
)

// Flashcard is a front/back pair owned by a user.
type Flashcard struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"-"`
	GenerationID *uuid.UUID      `json:"generation_id"`
	FrontText    string          `json:"front_text"`
	BackText     string          `json:"back_text"`
	Source       FlashcardSource `json:"source"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewFlashcard creates a Flashcard with a fresh ID and timestamps.
// The texts are trimmed before validation.
func NewFlashcard(
	userID uuid.UUID,
	generationID *uuid.UUID,
	front, back string,
	source FlashcardSource,
) (*Flashcard, error) {
	now := time.Now().UTC()
	card := &Flashcard{
		ID:           uuid.New(),
		UserID:       userID,
		GenerationID: generationID,
		FrontText:    strings.TrimSpace(front),
		BackText:     strings.TrimSpace(back),
		Source:       source,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}
	return card, nil
}

// Validate checks every field of the flashcard and returns all failures as
// ValidationErrors, or nil.
func (c *Flashcard) Validate() error {
	var errs ValidationErrors

	if c.ID == uuid.Nil {
		errs = append(errs, NewValidationError("id", "cannot be empty", ErrFlashcardIDEmpty))
	}
	if c.UserID == uuid.Nil {
		errs = append(errs, NewValidationError("user_id", "cannot be empty", ErrFlashcardUserIDEmpty))
	}
	errs = append(errs, validateTexts(c.FrontText, c.BackText)...)

	switch c.Source {
	case SourceManual:
		if c.GenerationID != nil {
			errs = append(errs, NewValidationError("generation_id", "must be null for manual flashcards", ErrGenerationIDNotAllowed))
		}
	case SourceAIFull, SourceAIEdited:
		if c.GenerationID == nil || *c.GenerationID == uuid.Nil {
			errs = append(errs, NewValidationError("generation_id", "is required for AI flashcards", ErrGenerationIDRequired))
		}
	default:
		errs = append(errs, NewValidationError("source", "must be one of manual, ai-full, ai-edited", ErrInvalidSource))
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Update replaces the card's texts and source. Only manual and ai-edited
// are accepted as sources, and the generation link never changes: a manual
// card cannot become ai-edited and an AI card cannot become manual. The
// card is untouched when validation fails.
func (c *Flashcard) Update(front, back string, source FlashcardSource) error {
	if source != SourceManual && source != SourceAIEdited {
		errs := validateTexts(strings.TrimSpace(front), strings.TrimSpace(back))
		errs = append(errs, NewValidationError("source", "must be either 'manual' or 'ai-edited'", ErrSourceNotUpdatable))
		return errs
	}

	next := *c
	next.FrontText = strings.TrimSpace(front)
	next.BackText = strings.TrimSpace(back)
	next.Source = source
	if err := next.Validate(); err != nil {
		return err
	}

	next.UpdatedAt = time.Now().UTC()
	*c = next
	return nil
}

// IsValidSource reports whether s names a known flashcard source.
func IsValidSource(s FlashcardSource) bool {
	switch s {
	case SourceManual, SourceAIFull, SourceAIEdited:
		return true
	default:
		return false
	}
}

func validateTexts(front, back string) ValidationErrors {
	var errs ValidationErrors

	switch n := utf8.RuneCountInString(front); {
	case n == 0:
		errs = append(errs, NewValidationError("front_text", "is required", ErrFrontTextEmpty))
	case n > MaxFrontTextLength:
		errs = append(errs, NewValidationError("front_text", "must not exceed 200 characters", ErrFrontTextTooLong))
	}

	switch n := utf8.RuneCountInString(back); {
	case n == 0:
		errs = append(errs, NewValidationError("back_text", "is required", ErrBackTextEmpty))
	case n > MaxBackTextLength:
		errs = append(errs, NewValidationError("back_text", "must not exceed 500 characters", ErrBackTextTooLong))
	}

	return errs
}
