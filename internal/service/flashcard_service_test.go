package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/repetix/repetix-api/internal/domain"
	"github.com/repetix/repetix-api/internal/mocks"
	"github.com/repetix/repetix-api/internal/service"
	"github.com/repetix/repetix-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type increment struct {
	generationID     uuid.UUID
	unedited, edited int
}

func newFlashcardService(t *testing.T) (service.FlashcardService, sqlmock.Sqlmock, *mocks.MockFlashcardStore, *mocks.MockGenerationStore) {
	t.Helper()
	db, mock := newMockDB(t)
	cards := &mocks.MockFlashcardStore{}
	gens := &mocks.MockGenerationStore{}

	svc, err := service.NewFlashcardService(db, cards, gens, quietLogger())
	require.NoError(t, err)
	return svc, mock, cards, gens
}

func TestNewFlashcardService_RequiresDependencies(t *testing.T) {
	t.Parallel()

	_, err := service.NewFlashcardService(nil, &mocks.MockFlashcardStore{}, &mocks.MockGenerationStore{}, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestFlashcardService_Create(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	genA := uuid.New()
	genB := uuid.New()

	t.Run("manual and AI cards in one transaction", func(t *testing.T) {
		t.Parallel()
		svc, db, cards, gens := newFlashcardService(t)

		var increments []increment
		gens.IncrementAcceptedFn = func(_ context.Context, uid, id uuid.UUID, unedited, edited int) error {
			assert.Equal(t, userID, uid)
			increments = append(increments, increment{id, unedited, edited})
			return nil
		}

		db.ExpectBegin()
		db.ExpectCommit()

		created, err := svc.Create(context.Background(), userID, []service.CreateFlashcardInput{
			{FrontText: " Manual Q ", BackText: "Manual A", Source: domain.SourceManual},
			{FrontText: "Q1", BackText: "A1", Source: domain.SourceAIFull, GenerationID: &genA},
			{FrontText: "Q2", BackText: "A2", Source: domain.SourceAIEdited, GenerationID: &genA},
			{FrontText: "Q3", BackText: "A3", Source: domain.SourceAIFull, GenerationID: &genB},
			{FrontText: "Q4", BackText: "A4", Source: domain.SourceAIFull, GenerationID: &genA},
		})
		require.NoError(t, err)
		require.Len(t, created, 5)
		assert.Equal(t, "Manual Q", created[0].FrontText)
		for _, c := range created {
			assert.Equal(t, userID, c.UserID)
		}
		assert.Equal(t, created, cards.Created)

		assert.Equal(t, []increment{{genA, 2, 1}, {genB, 1, 0}}, increments)
	})

	t.Run("foreign generation rolls back", func(t *testing.T) {
		t.Parallel()
		svc, db, cards, gens := newFlashcardService(t)
		gens.IncrementAcceptedFn = func(context.Context, uuid.UUID, uuid.UUID, int, int) error {
			return store.ErrGenerationNotFound
		}

		db.ExpectBegin()
		db.ExpectRollback()

		_, err := svc.Create(context.Background(), userID, []service.CreateFlashcardInput{
			{FrontText: "Q", BackText: "A", Source: domain.SourceAIFull, GenerationID: &genA},
		})
		assert.ErrorIs(t, err, store.ErrGenerationNotFound)
		assert.Empty(t, cards.Created)
	})

	t.Run("insert failure rolls back", func(t *testing.T) {
		t.Parallel()
		svc, db, cards, _ := newFlashcardService(t)
		dbErr := errors.New("insert failed")
		cards.CreateMultipleFn = func(context.Context, []*domain.Flashcard) error { return dbErr }

		db.ExpectBegin()
		db.ExpectRollback()

		_, err := svc.Create(context.Background(), userID, []service.CreateFlashcardInput{
			{FrontText: "Q", BackText: "A", Source: domain.SourceManual},
		})
		assert.ErrorIs(t, err, dbErr)
		var se *service.ServiceError
		assert.ErrorAs(t, err, &se)
	})
}

func TestFlashcardService_Create_Validation(t *testing.T) {
	t.Parallel()

	genID := uuid.New()
	tooMany := make([]service.CreateFlashcardInput, service.MaxCardsPerRequest+1)
	for i := range tooMany {
		tooMany[i] = service.CreateFlashcardInput{FrontText: "Q", BackText: "A", Source: domain.SourceManual}
	}

	tests := []struct {
		name       string
		inputs     []service.CreateFlashcardInput
		wantErr    error
		wantFields []string
	}{
		{name: "empty", inputs: nil, wantErr: service.ErrNoCards, wantFields: []string{"cards"}},
		{name: "too many", inputs: tooMany, wantErr: service.ErrTooManyCards, wantFields: []string{"cards"}},
		{
			name: "per card errors are indexed",
			inputs: []service.CreateFlashcardInput{
				{FrontText: "ok", BackText: "ok", Source: domain.SourceManual},
				{FrontText: "", BackText: strings.Repeat("x", 501), Source: domain.SourceManual},
				{FrontText: "Q", BackText: "A", Source: domain.SourceAIFull},
				{FrontText: "Q", BackText: "A", Source: domain.SourceManual, GenerationID: &genID},
			},
			wantErr: domain.ErrFrontTextEmpty,
			wantFields: []string{
				"cards[1].front_text",
				"cards[1].back_text",
				"cards[2].generation_id",
				"cards[3].generation_id",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, _, cards, _ := newFlashcardService(t)

			_, err := svc.Create(context.Background(), uuid.New(), tt.inputs)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Empty(t, cards.Created)

			var fields []string
			var verrs domain.ValidationErrors
			var verr *domain.ValidationError
			switch {
			case errors.As(err, &verrs):
				for _, e := range verrs {
					fields = append(fields, e.Field)
				}
			case errors.As(err, &verr):
				fields = append(fields, verr.Field)
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}

func TestFlashcardService_List(t *testing.T) {
	t.Parallel()

	svc, _, cards, _ := newFlashcardService(t)
	userID := uuid.New()
	manual := domain.SourceManual

	var got domain.ListFlashcardsOptions
	cards.ListFn = func(_ context.Context, uid uuid.UUID, opts domain.ListFlashcardsOptions) ([]*domain.Flashcard, int, error) {
		assert.Equal(t, userID, uid)
		got = opts
		return []*domain.Flashcard{{ID: uuid.New()}}, 31, nil
	}

	list, page, err := svc.List(context.Background(), userID, domain.ListFlashcardsOptions{Page: 3, Source: &manual})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, domain.Page{Page: 3, PageSize: 15, Total: 31}, page)
	assert.Equal(t, domain.SortByCreatedAt, got.SortBy)
	assert.Equal(t, domain.SortDesc, got.SortOrder)
	assert.Equal(t, &manual, got.Source)

	_, _, err = svc.List(context.Background(), userID, domain.ListFlashcardsOptions{SortBy: "front_text"})
	assert.ErrorIs(t, err, domain.ErrInvalidSortBy)
}

func TestFlashcardService_Update(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	genID := uuid.New()

	newCard := func() *domain.Flashcard {
		card, err := domain.NewFlashcard(userID, &genID, "Q", "A", domain.SourceAIFull)
		require.NoError(t, err)
		return card
	}

	t.Run("edits an AI card", func(t *testing.T) {
		t.Parallel()
		svc, _, cards, _ := newFlashcardService(t)
		card := newCard()
		cards.GetByIDFn = func(_ context.Context, uid, id uuid.UUID) (*domain.Flashcard, error) {
			assert.Equal(t, userID, uid)
			return card, nil
		}
		var saved *domain.Flashcard
		cards.UpdateFn = func(_ context.Context, c *domain.Flashcard) error {
			saved = c
			return nil
		}

		updated, err := svc.Update(context.Background(), userID, card.ID, "New Q", "New A", domain.SourceAIEdited)
		require.NoError(t, err)
		assert.Equal(t, "New Q", updated.FrontText)
		assert.Equal(t, domain.SourceAIEdited, updated.Source)
		assert.Same(t, updated, saved)
	})

	t.Run("ai-full is not an update source", func(t *testing.T) {
		t.Parallel()
		svc, _, cards, _ := newFlashcardService(t)
		card := newCard()
		cards.GetByIDFn = func(context.Context, uuid.UUID, uuid.UUID) (*domain.Flashcard, error) { return card, nil }
		cards.UpdateFn = func(context.Context, *domain.Flashcard) error {
			t.Fatal("store update must not be called")
			return nil
		}

		_, err := svc.Update(context.Background(), userID, card.ID, "Q", "A", domain.SourceAIFull)
		assert.ErrorIs(t, err, domain.ErrSourceNotUpdatable)
	})

	t.Run("ai card cannot be switched to manual", func(t *testing.T) {
		t.Parallel()
		svc, _, cards, _ := newFlashcardService(t)
		card := newCard()
		cards.GetByIDFn = func(context.Context, uuid.UUID, uuid.UUID) (*domain.Flashcard, error) { return card, nil }
		cards.UpdateFn = func(context.Context, *domain.Flashcard) error {
			t.Fatal("store update must not be called")
			return nil
		}

		_, err := svc.Update(context.Background(), userID, card.ID, "Q", "A", domain.SourceManual)
		assert.ErrorIs(t, err, domain.ErrGenerationIDNotAllowed)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("missing card", func(t *testing.T) {
		t.Parallel()
		svc, _, _, _ := newFlashcardService(t)

		_, err := svc.Update(context.Background(), userID, uuid.New(), "Q", "A", domain.SourceManual)
		assert.ErrorIs(t, err, store.ErrFlashcardNotFound)
	})
}

func TestFlashcardService_GetAndDelete(t *testing.T) {
	t.Parallel()

	svc, _, cards, _ := newFlashcardService(t)
	userID := uuid.New()

	_, err := svc.Get(context.Background(), userID, uuid.New())
	assert.ErrorIs(t, err, store.ErrFlashcardNotFound)

	want := &domain.Flashcard{ID: uuid.New(), UserID: userID}
	cards.GetByIDFn = func(context.Context, uuid.UUID, uuid.UUID) (*domain.Flashcard, error) { return want, nil }
	got, err := svc.Get(context.Background(), userID, want.ID)
	require.NoError(t, err)
	assert.Same(t, want, got)

	require.NoError(t, svc.Delete(context.Background(), userID, want.ID))

	cards.DeleteFn = func(context.Context, uuid.UUID, uuid.UUID) error { return store.ErrFlashcardNotFound }
	assert.ErrorIs(t, svc.Delete(context.Background(), userID, want.ID), store.ErrFlashcardNotFound)
}
