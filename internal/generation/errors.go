package generation

import (
	"context"
	"errors"

	"github.com/repetix/repetix-api/internal/domain"
)

// Errors returned by generators. Provider packages wrap these with %w.
var (
	// ErrInputValidation is returned when a request is rejected before any
	// call is made, for example an empty prompt.
	ErrInputValidation = errors.New("invalid generation input")

	// ErrNetwork is returned when the provider could not be reached.
	ErrNetwork = errors.New("network error while calling language model")

	// ErrAPI is returned when the provider answered with an error status.
	ErrAPI = errors.New("language model api request failed")

	// ErrSchemaValidation is returned when the response does not have the
	// expected structure or contains no usable candidates.
	ErrSchemaValidation = errors.New("language model response failed schema validation")

	// ErrContentBlocked is returned when the provider refused the content.
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTimeout is returned when the request did not finish in time.
	ErrTimeout = errors.New("language model request timed out")

	// ErrInvalidConfig is returned when a generator cannot be built from
	// the given configuration.
	ErrInvalidConfig = errors.New("invalid generator configuration")
)

// Error codes stored in generation error logs.
const (
	CodeInputValidation  = "InputValidationError"
	CodeNetwork          = "NetworkError"
	CodeAPI              = "ApiError"
	CodeSchemaValidation = "SchemaValidationError"
	CodeTimeout          = "TimeoutError"
	CodeUnknown          = "UnknownError"
)

// ErrorCode classifies err into one of the Code constants.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	case errors.Is(err, ErrInputValidation), errors.Is(err, domain.ErrValidation):
		return CodeInputValidation
	case errors.Is(err, ErrNetwork):
		return CodeNetwork
	case errors.Is(err, ErrAPI), errors.Is(err, ErrContentBlocked):
		return CodeAPI
	case errors.Is(err, ErrSchemaValidation):
		return CodeSchemaValidation
	default:
		return CodeUnknown
	}
}
