package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/repetix/repetix-api/internal/domain"
	"github.com/repetix/repetix-api/internal/platform/logger"
	"github.com/repetix/repetix-api/internal/store"
)

const generationColumns = `id, user_id, model, source_text_length, source_text_hash, generated_count,
	accepted_unedited_count, accepted_edited_count, generation_duration, candidates, created_at, updated_at`

// PostgresGenerationStore implements store.GenerationStore. Candidates are
// kept in a JSONB column.
type PostgresGenerationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresGenerationStore creates a generation store on db. A nil logger
// means slog.Default().
func NewPostgresGenerationStore(db store.DBTX, logger *slog.Logger) *PostgresGenerationStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresGenerationStore{
		db:     db,
		logger: logger.With(slog.String("component", "generation_store")),
	}
}

var _ store.GenerationStore = (*PostgresGenerationStore)(nil)

// WithTx implements store.GenerationStore.WithTx.
func (s *PostgresGenerationStore) WithTx(tx *sql.Tx) store.GenerationStore {
	return &PostgresGenerationStore{db: tx, logger: s.logger}
}

// Create implements store.GenerationStore.Create.
func (s *PostgresGenerationStore) Create(ctx context.Context, gen *domain.Generation) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	candidates, err := json.Marshal(gen.Candidates)
	if err != nil {
		return fmt.Errorf("failed to encode candidates: %w", err)
	}

	query := `
		INSERT INTO generations (` + generationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = s.db.ExecContext(ctx, query,
		gen.ID,
		gen.UserID,
		gen.Model,
		gen.InputLength,
		gen.InputHash,
		gen.GeneratedCount,
		gen.AcceptedUneditedCount,
		gen.AcceptedEditedCount,
		gen.GenerationDuration,
		candidates,
		gen.CreatedAt,
		gen.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create generation",
			slog.String("error", err.Error()),
			slog.String("generation_id", gen.ID.String()))
		return MapError(err)
	}

	log.Info("generation created",
		slog.String("generation_id", gen.ID.String()),
		slog.Int("generated_count", gen.GeneratedCount))
	return nil
}

// GetByID implements store.GenerationStore.GetByID.
func (s *PostgresGenerationStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Generation, error) {
	query := "SELECT " + generationColumns + " FROM generations WHERE id = $1 AND user_id = $2"

	gen, err := scanGeneration(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrGenerationNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get generation",
			slog.String("error", err.Error()),
			slog.String("generation_id", id.String()))
		return nil, MapError(err)
	}
	return gen, nil
}

// List implements store.GenerationStore.List.
func (s *PostgresGenerationStore) List(
	ctx context.Context,
	userID uuid.UUID,
	page domain.Page,
) ([]*domain.Generation, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var total int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM generations WHERE user_id = $1", userID,
	).Scan(&total); err != nil {
		log.Error("failed to count generations", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}

	query := "SELECT " + generationColumns + ` FROM generations
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	rows, err := s.db.QueryContext(ctx, query, userID, page.PageSize, page.Offset())
	if err != nil {
		log.Error("failed to list generations", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	gens := make([]*domain.Generation, 0, page.PageSize)
	for rows.Next() {
		gen, err := scanGeneration(rows)
		if err != nil {
			log.Error("failed to scan generation", slog.String("error", err.Error()))
			return nil, 0, MapError(err)
		}
		gens = append(gens, gen)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, MapError(err)
	}
	return gens, total, nil
}

// IncrementAccepted implements store.GenerationStore.IncrementAccepted.
func (s *PostgresGenerationStore) IncrementAccepted(
	ctx context.Context,
	userID, id uuid.UUID,
	unedited, edited int,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE generations
		SET accepted_unedited_count = accepted_unedited_count + $1,
		    accepted_edited_count = accepted_edited_count + $2,
		    updated_at = NOW()
		WHERE id = $3 AND user_id = $4
	`
	result, err := s.db.ExecContext(ctx, query, unedited, edited, id, userID)
	if err != nil {
		log.Error("failed to increment accepted counters",
			slog.String("error", err.Error()),
			slog.String("generation_id", id.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrGenerationNotFound)
}

func scanGeneration(row rowScanner) (*domain.Generation, error) {
	var (
		g          domain.Generation
		candidates []byte
	)
	if err := row.Scan(
		&g.ID,
		&g.UserID,
		&g.Model,
		&g.InputLength,
		&g.InputHash,
		&g.GeneratedCount,
		&g.AcceptedUneditedCount,
		&g.AcceptedEditedCount,
		&g.GenerationDuration,
		&candidates,
		&g.CreatedAt,
		&g.UpdatedAt,
	); err != nil {
		return nil, err
	}

	g.Candidates = []domain.Candidate{}
	if len(candidates) > 0 {
		if err := json.Unmarshal(candidates, &g.Candidates); err != nil {
			return nil, fmt.Errorf("failed to decode candidates: %w", err)
		}
	}
	return &g, nil
}

// PostgresGenerationErrorStore implements store.GenerationErrorStore.
type PostgresGenerationErrorStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresGenerationErrorStore creates a generation error log store on db.
func NewPostgresGenerationErrorStore(db store.DBTX, logger *slog.Logger) *PostgresGenerationErrorStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresGenerationErrorStore{
		db:     db,
		logger: logger.With(slog.String("component", "generation_error_store")),
	}
}

var _ store.GenerationErrorStore = (*PostgresGenerationErrorStore)(nil)

// Create implements store.GenerationErrorStore.Create.
func (s *PostgresGenerationErrorStore) Create(ctx context.Context, entry *domain.GenerationErrorLog) error {
	query := `
		INSERT INTO generation_error_logs
			(id, user_id, model, source_text_hash, source_text_length, error_code, error_message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Model,
		entry.SourceTextHash,
		entry.SourceTextLength,
		entry.ErrorCode,
		entry.ErrorMessage,
		entry.CreatedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create generation error log",
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return nil
}

// List implements store.GenerationErrorStore.List.
func (s *PostgresGenerationErrorStore) List(
	ctx context.Context,
	userID uuid.UUID,
	page domain.Page,
) ([]*domain.GenerationErrorLog, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var total int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM generation_error_logs WHERE user_id = $1", userID,
	).Scan(&total); err != nil {
		log.Error("failed to count generation error logs", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}

	query := `
		SELECT id, user_id, model, source_text_hash, source_text_length, error_code, error_message, created_at
		FROM generation_error_logs
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := s.db.QueryContext(ctx, query, userID, page.PageSize, page.Offset())
	if err != nil {
		log.Error("failed to list generation error logs", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	logs := make([]*domain.GenerationErrorLog, 0, page.PageSize)
	for rows.Next() {
		var e domain.GenerationErrorLog
		if err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.Model,
			&e.SourceTextHash,
			&e.SourceTextLength,
			&e.ErrorCode,
			&e.ErrorMessage,
			&e.CreatedAt,
		); err != nil {
			return nil, 0, MapError(err)
		}
		logs = append(logs, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, MapError(err)
	}
	return logs, total, nil
}
