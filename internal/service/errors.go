package service

import (
	"errors"
	"fmt"
)

// Service errors. Callers check them with errors.Is; the API layer maps
// them to HTTP status codes.
var (
	// ErrInvalidCredentials is returned for an unknown email and for a wrong
	// password alike.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidResetToken covers unknown, expired and already used password
	// reset tokens.
	ErrInvalidResetToken = errors.New("invalid or expired password reset token")

	// ErrSamePassword is returned when the new password equals the current one.
	ErrSamePassword = errors.New("new password must differ from the current password")

	// ErrNoCards is returned when a create request contains no cards.
	ErrNoCards = errors.New("at least one flashcard is required")

	// ErrTooManyCards is returned when a create request exceeds MaxCardsPerRequest.
	ErrTooManyCards = errors.New("too many flashcards in one request")
)

// ServiceError adds the failing operation to an unexpected error.
type ServiceError struct {
	Service   string
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s failed: %s: %v", e.Service, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s service %s failed: %s", e.Service, e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, operation, message string, err error) *ServiceError {
	return &ServiceError{
		Service:   service,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
