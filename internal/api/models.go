package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/repetix/repetix-api/internal/domain"
	"github.com/repetix/repetix-api/internal/service/auth"
)

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email           string `json:"email"           validate:"required,email"`
	Password        string `json:"password"        validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LogoutRequest optionally names the refresh token to revoke with the
// access token.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

// PasswordResetRequest starts the password reset flow.
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest completes the password reset flow.
type ResetPasswordRequest struct {
	Token           string `json:"token"           validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

// ChangePasswordRequest changes the password of the signed-in user.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	User UserResponse `json:"user"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`

	// RefreshToken is the JWT token used to obtain new access tokens
	RefreshToken string `json:"refresh_token"`

	// ExpiresAt is the RFC 3339 timestamp when the access token expires
	ExpiresAt string `json:"expires_at"`

	Message string `json:"message,omitempty"`
}

// TokenResponse is returned by the refresh endpoint.
type TokenResponse struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"`
}

// SessionResponse describes the signed-in user.
type SessionResponse struct {
	User UserResponse `json:"user"`
}

// GenerateRequest is the payload of POST /api/generations. Length limits
// are enforced by the generation service in characters.
type GenerateRequest struct {
	Text string `json:"text" validate:"required"`
}

// GenerationResponse is a generation with its candidates.
type GenerationResponse struct {
	ID                    uuid.UUID          `json:"id"`
	Model                 string             `json:"model"`
	InputLength           int                `json:"input_length"`
	GeneratedCount        int                `json:"generated_count"`
	AcceptedUneditedCount int                `json:"accepted_unedited_count"`
	AcceptedEditedCount   int                `json:"accepted_edited_count"`
	GenerationDuration    int64              `json:"generation_duration"`
	Candidates            []domain.Candidate `json:"candidates"`
	CreatedAt             time.Time          `json:"created_at"`
}

// GenerationSummary is a generation in a list, without candidates.
type GenerationSummary struct {
	ID                    uuid.UUID `json:"id"`
	Model                 string    `json:"model"`
	InputLength           int       `json:"input_length"`
	GeneratedCount        int       `json:"generated_count"`
	AcceptedUneditedCount int       `json:"accepted_unedited_count"`
	AcceptedEditedCount   int       `json:"accepted_edited_count"`
	GenerationDuration    int64     `json:"generation_duration"`
	CreatedAt             time.Time `json:"created_at"`
}

// GenerationErrorResponse is one entry of the generation error log.
type GenerationErrorResponse struct {
	ID               uuid.UUID `json:"id"`
	Model            string    `json:"model"`
	SourceTextHash   string    `json:"source_text_hash"`
	SourceTextLength int       `json:"source_text_length"`
	ErrorCode        string    `json:"error_code"`
	ErrorMessage     string    `json:"error_message"`
	CreatedAt        time.Time `json:"created_at"`
}

// CreateFlashcardRequest is one card of a create request.
type CreateFlashcardRequest struct {
	FrontText    string     `json:"front_text"`
	BackText     string     `json:"back_text"`
	Source       string     `json:"source"`
	GenerationID *uuid.UUID `json:"generation_id"`
}

// CreateFlashcardsRequest is the payload of POST /api/flashcards. Card
// contents are validated by the flashcard service so that errors name
// the card index.
type CreateFlashcardsRequest struct {
	Cards []CreateFlashcardRequest `json:"cards" validate:"required"`
}

// UpdateFlashcardRequest is the payload of PUT /api/flashcards/{id}.
type UpdateFlashcardRequest struct {
	FrontText string `json:"front_text"`
	BackText  string `json:"back_text"`
	Source    string `json:"source" validate:"required,oneof=manual ai-edited"`
}

// FlashcardResponse is the public view of a flashcard. It never includes
// the owner.
type FlashcardResponse struct {
	ID           uuid.UUID  `json:"id"`
	GenerationID *uuid.UUID `json:"generation_id"`
	FrontText    string     `json:"front_text"`
	BackText     string     `json:"back_text"`
	Source       string     `json:"source"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CreateFlashcardsResponse lists the cards created by one request.
type CreateFlashcardsResponse struct {
	Cards []FlashcardResponse `json:"cards"`
}

// ListResponse is one page of a list endpoint.
type ListResponse[T any] struct {
	Data       []T         `json:"data"`
	Pagination domain.Page `json:"pagination"`
}

func userToResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

func tokenPairToResponse(pair *auth.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt.UTC().Format(time.RFC3339),
	}
}

func flashcardToResponse(c *domain.Flashcard) FlashcardResponse {
	return FlashcardResponse{
		ID:           c.ID,
		GenerationID: c.GenerationID,
		FrontText:    c.FrontText,
		BackText:     c.BackText,
		Source:       string(c.Source),
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func flashcardsToResponse(cards []*domain.Flashcard) []FlashcardResponse {
	out := make([]FlashcardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, flashcardToResponse(c))
	}
	return out
}

func generationToResponse(g *domain.Generation) GenerationResponse {
	candidates := g.Candidates
	if candidates == nil {
		candidates = []domain.Candidate{}
	}
	return GenerationResponse{
		ID:                    g.ID,
		Model:                 g.Model,
		InputLength:           g.InputLength,
		GeneratedCount:        g.GeneratedCount,
		AcceptedUneditedCount: g.AcceptedUneditedCount,
		AcceptedEditedCount:   g.AcceptedEditedCount,
		GenerationDuration:    g.GenerationDuration,
		Candidates:            candidates,
		CreatedAt:             g.CreatedAt,
	}
}

func generationToSummary(g *domain.Generation) GenerationSummary {
	return GenerationSummary{
		ID:                    g.ID,
		Model:                 g.Model,
		InputLength:           g.InputLength,
		GeneratedCount:        g.GeneratedCount,
		AcceptedUneditedCount: g.AcceptedUneditedCount,
		AcceptedEditedCount:   g.AcceptedEditedCount,
		GenerationDuration:    g.GenerationDuration,
		CreatedAt:             g.CreatedAt,
	}
}

func generationErrorToResponse(e *domain.GenerationErrorLog) GenerationErrorResponse {
	return GenerationErrorResponse{
		ID:               e.ID,
		Model:            e.Model,
		SourceTextHash:   e.SourceTextHash,
		SourceTextLength: e.SourceTextLength,
		ErrorCode:        e.ErrorCode,
		ErrorMessage:     e.ErrorMessage,
		CreatedAt:        e.CreatedAt,
	}
}

func mapSlice[T, R any](in []T, fn func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}
