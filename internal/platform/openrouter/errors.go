package openrouter

import (
	"fmt"

	"github.com/repetix/repetix-api/internal/generation"
)

// APIError is returned for non-2xx responses. It matches generation.ErrAPI
// under errors.Is.
type APIError struct {
	StatusCode int
	// Body is the start of the response body. It is not part of Error()
	// because providers echo request details into it.
	Body string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openrouter api request failed with status %d", e.StatusCode)
}

// Unwrap returns generation.ErrAPI.
func (e *APIError) Unwrap() error {
	return generation.ErrAPI
}

// Temporary reports whether retrying the request may succeed.
func (e *APIError) Temporary() bool {
	return e.StatusCode >= 500
}
