package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/repetix/repetix-api/internal/domain"
	"github.com/repetix/repetix-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var flashcardRowColumns = []string{
	"id", "user_id", "generation_id", "front_text", "back_text", "source", "created_at", "updated_at",
}

func TestFlashcardStore_CreateMultiple(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := NewPostgresFlashcardStore(db, quietLogger())

	userID := uuid.New()
	genID := uuid.New()
	manual, err := domain.NewFlashcard(userID, nil, "Q1", "A1", domain.SourceManual)
	require.NoError(t, err)
	ai, err := domain.NewFlashcard(userID, &genID, "Q2", "A2", domain.SourceAIFull)
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO flashcards \(.+\) VALUES \(\$1, .+\$8\), \(\$9, .+\$16\)`).
		WithArgs(
			manual.ID.String(), userID.String(), nil, "Q1", "A1", "manual", manual.CreatedAt, manual.UpdatedAt,
			ai.ID.String(), userID.String(), genID.String(), "Q2", "A2", "ai-full", ai.CreatedAt, ai.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, s.CreateMultiple(context.Background(), []*domain.Flashcard{manual, ai}))
}

func TestFlashcardStore_CreateMultiple_Errors(t *testing.T) {
	t.Parallel()

	t.Run("empty batch is a no-op", func(t *testing.T) {
		t.Parallel()
		db, _ := newMock(t)
		assert.NoError(t, NewPostgresFlashcardStore(db, quietLogger()).CreateMultiple(context.Background(), nil))
	})

	t.Run("invalid card rejected before query", func(t *testing.T) {
		t.Parallel()
		db, _ := newMock(t)
		bad := &domain.Flashcard{ID: uuid.New(), UserID: uuid.New(), Source: domain.SourceManual}
		err := NewPostgresFlashcardStore(db, quietLogger()).CreateMultiple(context.Background(), []*domain.Flashcard{bad})
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
		assert.ErrorIs(t, err, domain.ErrFrontTextEmpty)
	})

	t.Run("missing generation", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		genID := uuid.New()
		card, err := domain.NewFlashcard(uuid.New(), &genID, "Q", "A", domain.SourceAIEdited)
		require.NoError(t, err)

		mock.ExpectExec("INSERT INTO flashcards").
			WillReturnError(pgError(foreignKeyViolationCode, "flashcards_generation_id_fkey"))

		err = NewPostgresFlashcardStore(db, quietLogger()).CreateMultiple(context.Background(), []*domain.Flashcard{card})
		assert.ErrorIs(t, err, store.ErrGenerationNotFound)
	})
}

func TestFlashcardStore_GetByID(t *testing.T) {
	t.Parallel()

	userID, id, genID := uuid.New(), uuid.New(), uuid.New()
	now := time.Now().UTC()

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		mock.ExpectQuery(`FROM flashcards WHERE id = \$1 AND user_id = \$2`).
			WithArgs(id.String(), userID.String()).
			WillReturnRows(sqlmock.NewRows(flashcardRowColumns).
				AddRow(id.String(), userID.String(), genID.String(), "Q", "A", "ai-edited", now, now))

		card, err := NewPostgresFlashcardStore(db, quietLogger()).GetByID(context.Background(), userID, id)
		require.NoError(t, err)
		assert.Equal(t, id, card.ID)
		require.NotNil(t, card.GenerationID)
		assert.Equal(t, genID, *card.GenerationID)
		assert.Equal(t, domain.SourceAIEdited, card.Source)
	})

	t.Run("manual card has nil generation", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		mock.ExpectQuery("FROM flashcards").
			WillReturnRows(sqlmock.NewRows(flashcardRowColumns).
				AddRow(id.String(), userID.String(), nil, "Q", "A", "manual", now, now))

		card, err := NewPostgresFlashcardStore(db, quietLogger()).GetByID(context.Background(), userID, id)
		require.NoError(t, err)
		assert.Nil(t, card.GenerationID)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		mock.ExpectQuery("FROM flashcards").WillReturnError(sql.ErrNoRows)

		_, err := NewPostgresFlashcardStore(db, quietLogger()).GetByID(context.Background(), userID, id)
		assert.ErrorIs(t, err, store.ErrFlashcardNotFound)
	})
}

func TestFlashcardStore_List(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	now := time.Now().UTC()
	source := domain.SourceManual

	db, mock := newMock(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM flashcards WHERE user_id = \$1 AND source = \$2`).
		WithArgs(userID.String(), "manual").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(17))
	mock.ExpectQuery(`ORDER BY updated_at ASC, id ASC LIMIT \$3 OFFSET \$4`).
		WithArgs(userID.String(), "manual", 5, 5).
		WillReturnRows(sqlmock.NewRows(flashcardRowColumns).
			AddRow(uuid.NewString(), userID.String(), nil, "Q1", "A1", "manual", now, now).
			AddRow(uuid.NewString(), userID.String(), nil, "Q2", "A2", "manual", now, now))

	cards, total, err := NewPostgresFlashcardStore(db, quietLogger()).List(context.Background(), userID,
		domain.ListFlashcardsOptions{
			Page:      2,
			PageSize:  5,
			SortBy:    domain.SortByUpdatedAt,
			SortOrder: domain.SortAsc,
			Source:    &source,
		})
	require.NoError(t, err)
	assert.Equal(t, 17, total)
	require.Len(t, cards, 2)
	assert.Equal(t, "Q1", cards[0].FrontText)
}

func TestFlashcardStore_List_RejectsUnknownSort(t *testing.T) {
	t.Parallel()

	db, _ := newMock(t)
	_, _, err := NewPostgresFlashcardStore(db, quietLogger()).List(context.Background(), uuid.New(),
		domain.ListFlashcardsOptions{Page: 1, PageSize: 15, SortBy: "front_text; DROP TABLE users"})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestFlashcardStore_UpdateAndDelete(t *testing.T) {
	t.Parallel()

	card, err := domain.NewFlashcard(uuid.New(), nil, "Q", "A", domain.SourceManual)
	require.NoError(t, err)

	t.Run("update", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		mock.ExpectExec(`UPDATE flashcards`).
			WithArgs("Q", "A", "manual", card.UpdatedAt, card.ID.String(), card.UserID.String()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, NewPostgresFlashcardStore(db, quietLogger()).Update(context.Background(), card))
	})

	t.Run("update not owned", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		mock.ExpectExec(`UPDATE flashcards`).WillReturnResult(sqlmock.NewResult(0, 0))
		err := NewPostgresFlashcardStore(db, quietLogger()).Update(context.Background(), card)
		assert.ErrorIs(t, err, store.ErrFlashcardNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		mock.ExpectExec(`DELETE FROM flashcards WHERE id = \$1 AND user_id = \$2`).
			WithArgs(card.ID.String(), card.UserID.String()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, NewPostgresFlashcardStore(db, quietLogger()).Delete(context.Background(), card.UserID, card.ID))
	})

	t.Run("delete missing", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		mock.ExpectExec(`DELETE FROM flashcards`).WillReturnResult(sqlmock.NewResult(0, 0))
		err := NewPostgresFlashcardStore(db, quietLogger()).Delete(context.Background(), card.UserID, card.ID)
		assert.ErrorIs(t, err, store.ErrFlashcardNotFound)
	})
}

func TestFlashcardStore_WithTx(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM flashcards`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
		return NewPostgresFlashcardStore(db, quietLogger()).WithTx(tx).Delete(ctx, uuid.New(), uuid.New())
	})
	assert.NoError(t, err)
}
