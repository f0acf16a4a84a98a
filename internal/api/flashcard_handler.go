package api

import (
	"log/slog"
	"net/http"

	"github.com/repetix/repetix-api/internal/api/shared"
	"github.com/repetix/repetix-api/internal/domain"
	"github.com/repetix/repetix-api/internal/platform/logger"
	"github.com/repetix/repetix-api/internal/service"
)

// FlashcardHandler handles flashcard CRUD requests.
type FlashcardHandler struct {
	flashcards service.FlashcardService
	logger     *slog.Logger
}

// NewFlashcardHandler creates a new FlashcardHandler
func NewFlashcardHandler(flashcards service.FlashcardService, logger *slog.Logger) *FlashcardHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for FlashcardHandler")
	}
	return &FlashcardHandler{
		flashcards: flashcards,
		logger:     logger.With(slog.String("component", "flashcard_handler")),
	}
}

// Create handles POST /api/flashcards.
func (h *FlashcardHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CreateFlashcardsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	inputs := make([]service.CreateFlashcardInput, 0, len(req.Cards))
	for _, c := range req.Cards {
		inputs = append(inputs, service.CreateFlashcardInput{
			FrontText:    c.FrontText,
			BackText:     c.BackText,
			Source:       domain.FlashcardSource(c.Source),
			GenerationID: c.GenerationID,
		})
	}

	cards, err := h.flashcards.Create(r.Context(), userID, inputs)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create flashcards")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("created flashcards",
		slog.Int("count", len(cards)))
	shared.RespondWithJSON(w, r, http.StatusCreated, CreateFlashcardsResponse{Cards: flashcardsToResponse(cards)})
}

// List handles GET /api/flashcards.
func (h *FlashcardHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	page, pageSize, err := pageParams(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	q := r.URL.Query()
	opts := domain.ListFlashcardsOptions{
		Page:      page,
		PageSize:  pageSize,
		SortBy:    q.Get("sortBy"),
		SortOrder: domain.SortOrder(q.Get("sortOrder")),
	}
	if src := q.Get("source"); src != "" {
		source := domain.FlashcardSource(src)
		opts.Source = &source
	}

	cards, p, err := h.flashcards.List(r.Context(), userID, opts)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list flashcards")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ListResponse[FlashcardResponse]{
		Data:       flashcardsToResponse(cards),
		Pagination: p,
	})
}

// Get handles GET /api/flashcards/{id}.
func (h *FlashcardHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	card, err := h.flashcards.Get(r.Context(), userID, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get flashcard")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, flashcardToResponse(card))
}

// Update handles PUT /api/flashcards/{id}.
func (h *FlashcardHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateFlashcardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	card, err := h.flashcards.Update(r.Context(), userID, id, req.FrontText, req.BackText, domain.FlashcardSource(req.Source))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update flashcard")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, flashcardToResponse(card))
}

// Delete handles DELETE /api/flashcards/{id}.
func (h *FlashcardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.flashcards.Delete(r.Context(), userID, id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete flashcard")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
