package api

import (
	"log/slog"
	"net/http"

	"github.com/repetix/repetix-api/internal/api/shared"
	"github.com/repetix/repetix-api/internal/service"
)

// GenerationHandler handles AI generation requests and their history.
type GenerationHandler struct {
	generations service.GenerationService
	logger      *slog.Logger
}

// NewGenerationHandler creates a new GenerationHandler
func NewGenerationHandler(generations service.GenerationService, logger *slog.Logger) *GenerationHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for GenerationHandler")
	}
	return &GenerationHandler{
		generations: generations,
		logger:      logger.With(slog.String("component", "generation_handler")),
	}
}

// Generate handles POST /api/generations.
func (h *GenerationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req GenerateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	gen, err := h.generations.Generate(r.Context(), userID, req.Text)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate flashcards")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, generationToResponse(gen))
}

// List handles GET /api/generations.
func (h *GenerationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	page, pageSize, err := pageParams(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	gens, p, err := h.generations.List(r.Context(), userID, page, pageSize)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list generations")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ListResponse[GenerationSummary]{
		Data:       mapSlice(gens, generationToSummary),
		Pagination: p,
	})
}

// Get handles GET /api/generations/{id}.
func (h *GenerationHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	gen, err := h.generations.Get(r.Context(), userID, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get generation")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, generationToResponse(gen))
}

// ListErrors handles GET /api/generation-errors.
func (h *GenerationHandler) ListErrors(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	page, pageSize, err := pageParams(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	logs, p, err := h.generations.ListErrors(r.Context(), userID, page, pageSize)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list generation errors")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ListResponse[GenerationErrorResponse]{
		Data:       mapSlice(logs, generationErrorToResponse),
		Pagination: p,
	})
}
