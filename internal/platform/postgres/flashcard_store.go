package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/repetix/repetix-api/internal/domain"
	"github.com/repetix/repetix-api/internal/platform/logger"
	"github.com/repetix/repetix-api/internal/store"
)

const flashcardColumns = "id, user_id, generation_id, front_text, back_text, source, created_at, updated_at"

// sortColumns whitelists ORDER BY columns; the value is interpolated into SQL.
var sortColumns = map[string]string{
	domain.SortByCreatedAt: "created_at",
	domain.SortByUpdatedAt: "updated_at",
}

// PostgresFlashcardStore implements store.FlashcardStore.
type PostgresFlashcardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresFlashcardStore creates a flashcard store on db. A nil logger
// means slog.Default().
func NewPostgresFlashcardStore(db store.DBTX, logger *slog.Logger) *PostgresFlashcardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresFlashcardStore{
		db:     db,
		logger: logger.With(slog.String("component", "flashcard_store")),
	}
}

var _ store.FlashcardStore = (*PostgresFlashcardStore)(nil)

// WithTx implements store.FlashcardStore.WithTx.
func (s *PostgresFlashcardStore) WithTx(tx *sql.Tx) store.FlashcardStore {
	return &PostgresFlashcardStore{db: tx, logger: s.logger}
}

// CreateMultiple implements store.FlashcardStore.CreateMultiple with a single
// multi-row INSERT.
func (s *PostgresFlashcardStore) CreateMultiple(ctx context.Context, cards []*domain.Flashcard) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(cards) == 0 {
		return nil
	}
	for i, c := range cards {
		if err := c.Validate(); err != nil {
			log.Warn("flashcard validation failed during create",
				slog.Int("index", i),
				slog.String("error", err.Error()))
			return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
		}
	}

	const perRow = 8
	values := make([]string, 0, len(cards))
	args := make([]any, 0, len(cards)*perRow)
	for i, c := range cards {
		base := i * perRow
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8))
		args = append(args,
			c.ID,
			c.UserID,
			nullUUID(c.GenerationID),
			c.FrontText,
			c.BackText,
			string(c.Source),
			c.CreatedAt,
			c.UpdatedAt,
		)
	}

	query := "INSERT INTO flashcards (" + flashcardColumns + ") VALUES " + strings.Join(values, ", ")
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("flashcard references a missing generation or user",
				slog.String("error", err.Error()))
			return fmt.Errorf("%w: %w", store.ErrGenerationNotFound, MapError(err))
		}
		log.Error("failed to create flashcards",
			slog.String("error", err.Error()),
			slog.Int("count", len(cards)))
		return MapError(err)
	}

	log.Info("flashcards created",
		slog.Int("count", len(cards)),
		slog.String("user_id", cards[0].UserID.String()))
	return nil
}

// GetByID implements store.FlashcardStore.GetByID.
func (s *PostgresFlashcardStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Flashcard, error) {
	query := "SELECT " + flashcardColumns + " FROM flashcards WHERE id = $1 AND user_id = $2"

	card, err := scanFlashcard(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrFlashcardNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get flashcard",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", id.String()))
		return nil, MapError(err)
	}
	return card, nil
}

// List implements store.FlashcardStore.List.
func (s *PostgresFlashcardStore) List(
	ctx context.Context,
	userID uuid.UUID,
	opts domain.ListFlashcardsOptions,
) ([]*domain.Flashcard, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	column, ok := sortColumns[opts.SortBy]
	if !ok {
		return nil, 0, fmt.Errorf("%w: unsupported sort field %q", store.ErrInvalidEntity, opts.SortBy)
	}
	direction := "DESC"
	if opts.SortOrder == domain.SortAsc {
		direction = "ASC"
	}

	where := "WHERE user_id = $1"
	args := []any{userID}
	if opts.Source != nil {
		where += " AND source = $2"
		args = append(args, string(*opts.Source))
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM flashcards "+where, args...).Scan(&total); err != nil {
		log.Error("failed to count flashcards", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}

	page := domain.Page{Page: opts.Page, PageSize: opts.PageSize}
	n := len(args)
	query := fmt.Sprintf("SELECT %s FROM flashcards %s ORDER BY %s %s, id %s LIMIT $%d OFFSET $%d",
		flashcardColumns, where, column, direction, direction, n+1, n+2)
	args = append(args, page.PageSize, page.Offset())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list flashcards", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	cards := make([]*domain.Flashcard, 0, page.PageSize)
	for rows.Next() {
		card, err := scanFlashcard(rows)
		if err != nil {
			log.Error("failed to scan flashcard", slog.String("error", err.Error()))
			return nil, 0, MapError(err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}

	return cards, total, nil
}

// Update implements store.FlashcardStore.Update.
func (s *PostgresFlashcardStore) Update(ctx context.Context, card *domain.Flashcard) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE flashcards
		SET front_text = $1, back_text = $2, source = $3, updated_at = $4
		WHERE id = $5 AND user_id = $6
	`
	result, err := s.db.ExecContext(ctx, query,
		card.FrontText,
		card.BackText,
		string(card.Source),
		card.UpdatedAt,
		card.ID,
		card.UserID,
	)
	if err != nil {
		log.Error("failed to update flashcard",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", card.ID.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrFlashcardNotFound); err != nil {
		return err
	}

	log.Debug("flashcard updated", slog.String("flashcard_id", card.ID.String()))
	return nil
}

// Delete implements store.FlashcardStore.Delete.
func (s *PostgresFlashcardStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, "DELETE FROM flashcards WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		log.Error("failed to delete flashcard",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", id.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrFlashcardNotFound); err != nil {
		return err
	}

	log.Info("flashcard deleted", slog.String("flashcard_id", id.String()))
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFlashcard(row rowScanner) (*domain.Flashcard, error) {
	var (
		c      domain.Flashcard
		genID  uuid.NullUUID
		source string
	)
	if err := row.Scan(
		&c.ID,
		&c.UserID,
		&genID,
		&c.FrontText,
		&c.BackText,
		&source,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if genID.Valid {
		id := genID.UUID
		c.GenerationID = &id
	}
	c.Source = domain.FlashcardSource(source)
	return &c, nil
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
