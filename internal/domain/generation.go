package domain

import (
	"crypto/md5" // #nosec G501 -- fingerprint of the source text, not a security hash
	"encoding/hex"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Source text limits for a generation request, counted in characters.
const (
	MinSourceTextLength = 1000
	MaxSourceTextLength = 10000
)

// Generation errors.
var (
	ErrSourceTextTooShort = errors.New("text must be at least 1000 characters")
	ErrSourceTextTooLong  = errors.New("text must not exceed 10000 characters")
	ErrEmptyModel         = errors.New("model cannot be empty")
)

// Candidate is an AI-proposed flashcard awaiting the user's decision.
type Candidate struct {
	FrontText string `json:"front_text"`
	BackText  string `json:"back_text"`
}

// Normalize trims both sides and checks them against the flashcard text
// limits.
func (c Candidate) Normalize() (Candidate, error) {
	out := Candidate{
		FrontText: strings.TrimSpace(c.FrontText),
		BackText:  strings.TrimSpace(c.BackText),
	}
	if errs := validateTexts(out.FrontText, out.BackText); len(errs) > 0 {
		return Candidate{}, errs
	}
	return out, nil
}

// Generation records one successful AI request and the candidates it
// produced.
type Generation struct {
	ID                    uuid.UUID   `json:"id"`
	UserID                uuid.UUID   `json:"-"`
	Model                 string      `json:"model"`
	InputLength           int         `json:"input_length"`
	InputHash             string      `json:"input_hash"`
	GeneratedCount        int         `json:"generated_count"`
	AcceptedUneditedCount int         `json:"accepted_unedited_count"`
	AcceptedEditedCount   int         `json:"accepted_edited_count"`
	GenerationDuration    int64       `json:"generation_duration"` // milliseconds
	Candidates            []Candidate `json:"candidates"`
	CreatedAt             time.Time   `json:"created_at"`
	UpdatedAt             time.Time   `json:"updated_at"`
}

// NewGeneration builds a Generation for the given source text and the
// candidates the model returned.
func NewGeneration(
	userID uuid.UUID,
	model string,
	sourceText string,
	candidates []Candidate,
	duration time.Duration,
) (*Generation, error) {
	if userID == uuid.Nil {
		return nil, ErrEmptyUserID
	}
	if strings.TrimSpace(model) == "" {
		return nil, ErrEmptyModel
	}
	if candidates == nil {
		candidates = []Candidate{}
	}

	now := time.Now().UTC()
	return &Generation{
		ID:                 uuid.New(),
		UserID:             userID,
		Model:              model,
		InputLength:        TextLength(sourceText),
		InputHash:          HashText(sourceText),
		GeneratedCount:     len(candidates),
		GenerationDuration: duration.Milliseconds(),
		Candidates:         candidates,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// GenerationErrorLog records a failed AI request.
type GenerationErrorLog struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"-"`
	Model            string    `json:"model"`
	SourceTextHash   string    `json:"source_text_hash"`
	SourceTextLength int       `json:"source_text_length"`
	ErrorCode        string    `json:"error_code"`
	ErrorMessage     string    `json:"error_message"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewGenerationErrorLog builds an error log entry for sourceText.
func NewGenerationErrorLog(userID uuid.UUID, model, sourceText, code, message string) *GenerationErrorLog {
	return &GenerationErrorLog{
		ID:               uuid.New(),
		UserID:           userID,
		Model:            model,
		SourceTextHash:   HashText(sourceText),
		SourceTextLength: TextLength(sourceText),
		ErrorCode:        code,
		ErrorMessage:     message,
		CreatedAt:        time.Now().UTC(),
	}
}

// ValidateSourceText checks that text is within the generation limits.
func ValidateSourceText(text string) error {
	switch n := TextLength(text); {
	case n < MinSourceTextLength:
		return NewValidationError("text", "must be at least 1000 characters", ErrSourceTextTooShort)
	case n > MaxSourceTextLength:
		return NewValidationError("text", "must not exceed 10000 characters", ErrSourceTextTooLong)
	}
	return nil
}

// TextLength counts characters, not bytes.
func TextLength(text string) int {
	return utf8.RuneCountInString(text)
}

// HashText returns the hex MD5 digest of text.
func HashText(text string) string {
	sum := md5.Sum([]byte(text)) // #nosec G401
	return hex.EncodeToString(sum[:])
}
