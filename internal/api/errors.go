package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/repetix/repetix-api/internal/api/shared"
	"github.com/repetix/repetix-api/internal/domain"
	"github.com/repetix/repetix-api/internal/generation"
	"github.com/repetix/repetix-api/internal/service"
	"github.com/repetix/repetix-api/internal/service/auth"
	"github.com/repetix/repetix-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK

	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrRevokedToken),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, shared.ErrInvalidJSON),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, service.ErrInvalidResetToken),
		errors.Is(err, generation.ErrInputValidation):
		return http.StatusBadRequest

	// Not found errors
	case store.IsNotFoundError(err):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists):
		return http.StatusConflict

	// AI provider errors
	case errors.Is(err, generation.ErrTimeout),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, generation.ErrNetwork),
		errors.Is(err, generation.ErrAPI),
		errors.Is(err, generation.ErrSchemaValidation),
		errors.Is(err, generation.ErrContentBlocked):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrRevokedToken):
		return "Token revoked"
	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"
	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, domain.ErrUnauthorized):
		return "Unauthorized"

	case errors.Is(err, shared.ErrInvalidJSON):
		return "Invalid request format"
	case errors.Is(err, service.ErrInvalidResetToken):
		return "Invalid or expired reset token"
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, generation.ErrInputValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Validation failed"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrFlashcardNotFound):
		return "Flashcard not found"
	case errors.Is(err, store.ErrGenerationNotFound):
		return "Generation not found"
	case store.IsNotFoundError(err):
		return "Not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, generation.ErrTimeout),
		errors.Is(err, context.DeadlineExceeded):
		return "The AI service did not respond in time"
	case errors.Is(err, generation.ErrContentBlocked):
		return "The AI service refused to process this text"
	case errors.Is(err, generation.ErrNetwork),
		errors.Is(err, generation.ErrAPI),
		errors.Is(err, generation.ErrSchemaValidation):
		return "The AI service failed to generate flashcards"

	default:
		return "An unexpected error occurred"
	}
}

// ValidationDetails returns per-field details for validation errors from
// the domain or the request validator, or nil.
func ValidationDetails(err error) []shared.FieldError {
	if details := shared.FieldErrors(err); details != nil {
		return details
	}

	var verrs domain.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]shared.FieldError, 0, len(verrs))
		for _, e := range verrs {
			out = append(out, shared.FieldError{Field: e.Field, Message: e.Message})
		}
		return out
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) && verr.Field != "" {
		return []shared.FieldError{{Field: verr.Field, Message: verr.Message}}
	}
	return nil
}

// HandleAPIError writes the error response for err. fallback replaces the
// generic message of unexpected (500) errors when non-empty.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}

	var opts []shared.ResponseOption
	if status == http.StatusBadRequest {
		if details := ValidationDetails(err); len(details) > 0 {
			opts = append(opts, shared.WithDetails(details))
		}
	}
	if status == http.StatusUnauthorized {
		opts = append(opts, shared.WithElevatedLogLevel())
	}

	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
