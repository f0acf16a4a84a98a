package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/repetix/repetix-api/internal/domain"
	"github.com/repetix/repetix-api/internal/generation"
	"github.com/repetix/repetix-api/internal/platform/logger"
	"github.com/repetix/repetix-api/internal/redact"
	"github.com/repetix/repetix-api/internal/store"
)

// maxErrorMessageLength bounds the message stored in a generation error log.
const maxErrorMessageLength = 1000

// GenerationService runs AI flashcard generation and exposes its history.
type GenerationService interface {
	// Generate validates text, asks the generator for candidates and stores
	// the resulting Generation. Failures after validation are recorded in
	// the generation error log.
	Generate(ctx context.Context, userID uuid.UUID, text string) (*domain.Generation, error)

	// Get returns the user's generation or store.ErrGenerationNotFound.
	Get(ctx context.Context, userID, id uuid.UUID) (*domain.Generation, error)

	// List returns one page of the user's generations, newest first.
	List(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]*domain.Generation, domain.Page, error)

	// ListErrors returns one page of the user's generation error logs.
	ListErrors(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]*domain.GenerationErrorLog, domain.Page, error)
}

type generationServiceImpl struct {
	generator   generation.Generator
	generations store.GenerationStore
	errorLogs   store.GenerationErrorStore
	logger      *slog.Logger
	now         func() time.Time
}

// NewGenerationService creates a new GenerationService.
// It returns an error if any of the required dependencies are nil.
func NewGenerationService(
	generator generation.Generator,
	generations store.GenerationStore,
	errorLogs store.GenerationErrorStore,
	logger *slog.Logger,
) (GenerationService, error) {
	if generator == nil {
		return nil, domain.NewValidationError("generator", "cannot be nil", domain.ErrValidation)
	}
	if generations == nil {
		return nil, domain.NewValidationError("generations", "cannot be nil", domain.ErrValidation)
	}
	if errorLogs == nil {
		return nil, domain.NewValidationError("errorLogs", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &generationServiceImpl{
		generator:   generator,
		generations: generations,
		errorLogs:   errorLogs,
		logger:      logger.With(slog.String("component", "generation_service")),
		now:         time.Now,
	}, nil
}

// Generate implements GenerationService.
func (s *generationServiceImpl) Generate(
	ctx context.Context,
	userID uuid.UUID,
	text string,
) (*domain.Generation, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", userID.String()))

	if err := domain.ValidateSourceText(text); err != nil {
		return nil, err
	}

	model := s.generator.Model()
	log.Debug("generating flashcards",
		slog.String("model", model),
		slog.Int("input_length", domain.TextLength(text)))

	start := s.now()
	candidates, err := s.generator.GenerateCandidates(ctx, text)
	duration := s.now().Sub(start)
	if err != nil {
		log.Warn("flashcard generation failed",
			slog.String("error", redact.Error(err)),
			slog.String("error_code", generation.ErrorCode(err)),
			slog.Duration("duration", duration))
		s.recordError(ctx, userID, model, text, err)
		return nil, fmt.Errorf("failed to generate flashcards: %w", err)
	}

	gen, err := domain.NewGeneration(userID, model, text, candidates, duration)
	if err == nil {
		err = s.generations.Create(ctx, gen)
	}
	if err != nil {
		log.Error("failed to save generation", slog.String("error", err.Error()))
		s.recordError(ctx, userID, model, text, err)
		return nil, fmt.Errorf("failed to save generation: %w", err)
	}

	log.Info("generated flashcards",
		slog.String("generation_id", gen.ID.String()),
		slog.Int("generated_count", gen.GeneratedCount),
		slog.Int64("duration_ms", gen.GenerationDuration))
	return gen, nil
}

// recordError writes a generation error log. A failure to write it is
// logged and otherwise ignored.
func (s *generationServiceImpl) recordError(ctx context.Context, userID uuid.UUID, model, text string, cause error) {
	msg := redact.Error(cause)
	if r := []rune(msg); len(r) > maxErrorMessageLength {
		msg = string(r[:maxErrorMessageLength])
	}

	entry := domain.NewGenerationErrorLog(userID, model, text, generation.ErrorCode(cause), msg)

	// The request may already be cancelled; the log entry is still wanted.
	if err := s.errorLogs.Create(context.WithoutCancel(ctx), entry); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to record generation error",
			slog.String("error", err.Error()),
			slog.String("error_code", entry.ErrorCode))
	}
}

// Get implements GenerationService.
func (s *generationServiceImpl) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Generation, error) {
	gen, err := s.generations.GetByID(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve generation: %w", err)
	}
	return gen, nil
}

// List implements GenerationService.
func (s *generationServiceImpl) List(
	ctx context.Context,
	userID uuid.UUID,
	page, pageSize int,
) ([]*domain.Generation, domain.Page, error) {
	p, err := domain.NewPage(page, pageSize)
	if err != nil {
		return nil, domain.Page{}, err
	}

	gens, total, err := s.generations.List(ctx, userID, p)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list generations",
			slog.String("error", err.Error()))
		return nil, domain.Page{}, fmt.Errorf("failed to list generations: %w", err)
	}

	p.Total = total
	return gens, p, nil
}

// ListErrors implements GenerationService.
func (s *generationServiceImpl) ListErrors(
	ctx context.Context,
	userID uuid.UUID,
	page, pageSize int,
) ([]*domain.GenerationErrorLog, domain.Page, error) {
	p, err := domain.NewPage(page, pageSize)
	if err != nil {
		return nil, domain.Page{}, err
	}

	logs, total, err := s.errorLogs.List(ctx, userID, p)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list generation errors",
			slog.String("error", err.Error()))
		return nil, domain.Page{}, fmt.Errorf("failed to list generation errors: %w", err)
	}

	p.Total = total
	return logs, p, nil
}
