package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/repetix/repetix-api/internal/api/middleware"
	"github.com/repetix/repetix-api/internal/api/shared"
	"github.com/repetix/repetix-api/internal/domain"
	"github.com/repetix/repetix-api/internal/platform/logger"
)

// decodeAndValidate decodes the JSON body into req and validates it. It
// writes the error response and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := shared.DecodeJSON(w, r, req); err != nil {
		HandleAPIError(w, r, err, "")
		return false
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Validation failed", err,
			shared.WithDetails(ValidationDetails(err)))
		return false
	}
	return true
}

// getPathUUID extracts a UUID from the URL path parameters.
// It parses and validates the UUID, handling common error cases.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}

	return id, nil
}

// handleUserIDAndPathUUID is a composite helper that extracts both the user ID from context
// and a UUID from the path parameters. It writes an error response if either extraction fails.
func handleUserIDAndPathUUID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}

	pathID, err := getPathUUID(r, paramName)
	if err != nil {
		logger.FromContext(r.Context()).Debug("invalid path parameter",
			slog.String("param_name", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, err, "")
		return uuid.Nil, uuid.Nil, false
	}

	return userID, pathID, true
}

// requireUserID returns the authenticated user's ID or writes 401.
func requireUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		logger.FromContext(r.Context()).Warn("user ID not found or invalid in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return uuid.Nil, false
	}
	return userID, true
}

// queryInt parses an optional integer query parameter. Absent means 0.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer", domain.ErrValidation)
	}
	return n, nil
}

// pageParams reads the page and pageSize query parameters.
func pageParams(r *http.Request) (page, pageSize int, err error) {
	var errs domain.ValidationErrors
	page, perr := queryInt(r, "page")
	if perr != nil {
		errs = append(errs, validationErrors(perr)...)
	}
	pageSize, serr := queryInt(r, "pageSize")
	if serr != nil {
		errs = append(errs, validationErrors(serr)...)
	}
	if len(errs) > 0 {
		return 0, 0, errs
	}
	return page, pageSize, nil
}

func validationErrors(err error) domain.ValidationErrors {
	if verr, ok := err.(*domain.ValidationError); ok {
		return domain.ValidationErrors{verr}
	}
	return domain.ValidationErrors{domain.NewValidationError("", err.Error(), err)}
}
