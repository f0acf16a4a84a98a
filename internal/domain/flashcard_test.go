package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFlashcard(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	genID := uuid.New()

	tests := []struct {
		name         string
		generationID *uuid.UUID
		front        string
		back         string
		source       FlashcardSource
		wantErr      error
	}{
		{name: "manual", front: "What is Go?", back: "A language", source: SourceManual},
		{name: "ai-full", generationID: &genID, front: "Q", back: "A", source: SourceAIFull},
		{name: "ai-edited", generationID: &genID, front: "Q", back: "A", source: SourceAIEdited},
		{name: "front at limit", front: strings.Repeat("ą", 200), back: "A", source: SourceManual},
		{name: "back at limit", front: "Q", back: strings.Repeat("b", 500), source: SourceManual},
		{name: "blank front", front: "   ", back: "A", source: SourceManual, wantErr: ErrFrontTextEmpty},
		{name: "front too long", front: strings.Repeat("a", 201), back: "A", source: SourceManual, wantErr: ErrFrontTextTooLong},
		{name: "blank back", front: "Q", back: "", source: SourceManual, wantErr: ErrBackTextEmpty},
		{name: "back too long", front: "Q", back: strings.Repeat("b", 501), source: SourceManual, wantErr: ErrBackTextTooLong},
		{name: "manual with generation", generationID: &genID, front: "Q", back: "A", source: SourceManual, wantErr: ErrGenerationIDNotAllowed},
		{name: "ai without generation", front: "Q", back: "A", source: SourceAIFull, wantErr: ErrGenerationIDRequired},
		{name: "unknown source", front: "Q", back: "A", source: "imported", wantErr: ErrInvalidSource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			card, err := NewFlashcard(userID, tt.generationID, tt.front, tt.back, tt.source)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, ErrValidation)
				assert.Nil(t, card)
				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, card.ID)
			assert.Equal(t, userID, card.UserID)
			assert.Equal(t, tt.source, card.Source)
			assert.False(t, card.CreatedAt.IsZero())
			assert.Equal(t, card.CreatedAt, card.UpdatedAt)
		})
	}
}

func TestNewFlashcard_TrimsText(t *testing.T) {
	t.Parallel()

	card, err := NewFlashcard(uuid.New(), nil, "  front \n", "\tback  ", SourceManual)
	require.NoError(t, err)
	assert.Equal(t, "front", card.FrontText)
	assert.Equal(t, "back", card.BackText)
}

func TestFlashcardValidate_CollectsAllErrors(t *testing.T) {
	t.Parallel()

	card := Flashcard{Source: "bogus"}
	err := card.Validate()
	require.Error(t, err)

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))

	fields := make([]string, 0, len(verrs))
	for _, e := range verrs {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{"id", "user_id", "front_text", "back_text", "source"}, fields)
}

func TestFlashcardUpdate(t *testing.T) {
	t.Parallel()

	genID := uuid.New()

	t.Run("ai-full to ai-edited", func(t *testing.T) {
		t.Parallel()
		card, err := NewFlashcard(uuid.New(), &genID, "Q", "A", SourceAIFull)
		require.NoError(t, err)
		before := card.UpdatedAt

		require.NoError(t, card.Update(" new Q ", "new A", SourceAIEdited))
		assert.Equal(t, "new Q", card.FrontText)
		assert.Equal(t, "new A", card.BackText)
		assert.Equal(t, SourceAIEdited, card.Source)
		assert.False(t, card.UpdatedAt.Before(before))
	})

	t.Run("ai-full rejected", func(t *testing.T) {
		t.Parallel()
		card, err := NewFlashcard(uuid.New(), nil, "Q", "A", SourceManual)
		require.NoError(t, err)

		err = card.Update("Q2", "A2", SourceAIFull)
		assert.ErrorIs(t, err, ErrSourceNotUpdatable)
		assert.Equal(t, "Q", card.FrontText)
		assert.Equal(t, SourceManual, card.Source)
	})

	t.Run("manual card cannot become ai-edited", func(t *testing.T) {
		t.Parallel()
		card, err := NewFlashcard(uuid.New(), nil, "Q", "A", SourceManual)
		require.NoError(t, err)

		err = card.Update("Q2", "A2", SourceAIEdited)
		assert.ErrorIs(t, err, ErrGenerationIDRequired)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, SourceManual, card.Source)
		assert.Equal(t, "Q", card.FrontText)
		assert.NoError(t, card.Validate())
	})

	t.Run("ai card cannot become manual", func(t *testing.T) {
		t.Parallel()
		card, err := NewFlashcard(uuid.New(), &genID, "Q", "A", SourceAIFull)
		require.NoError(t, err)

		err = card.Update("Q2", "A2", SourceManual)
		assert.ErrorIs(t, err, ErrGenerationIDNotAllowed)

		var verrs ValidationErrors
		require.True(t, errors.As(err, &verrs))
		require.Len(t, verrs, 1)
		assert.Equal(t, "generation_id", verrs[0].Field)

		assert.Equal(t, SourceAIFull, card.Source)
		require.NotNil(t, card.GenerationID)
		assert.Equal(t, genID, *card.GenerationID)
		assert.NoError(t, card.Validate())
	})

	t.Run("ai-edited stays ai-edited", func(t *testing.T) {
		t.Parallel()
		card, err := NewFlashcard(uuid.New(), &genID, "Q", "A", SourceAIEdited)
		require.NoError(t, err)
		require.NoError(t, card.Update("Q2", "A2", SourceAIEdited))
		assert.NoError(t, card.Validate())
	})

	t.Run("invalid text leaves card unchanged", func(t *testing.T) {
		t.Parallel()
		card, err := NewFlashcard(uuid.New(), nil, "Q", "A", SourceManual)
		require.NoError(t, err)

		err = card.Update("", strings.Repeat("x", 501), SourceManual)
		assert.ErrorIs(t, err, ErrFrontTextEmpty)
		assert.ErrorIs(t, err, ErrBackTextTooLong)
		assert.Equal(t, "Q", card.FrontText)
		assert.Equal(t, "A", card.BackText)
	})
}

func TestValidationErrorsPrefixed(t *testing.T) {
	t.Parallel()

	errs := ValidationErrors{NewValidationError("front_text", "is required", ErrFrontTextEmpty)}
	prefixed := errs.Prefixed("cards[2].")

	require.Len(t, prefixed, 1)
	assert.Equal(t, "cards[2].front_text", prefixed[0].Field)
	assert.Equal(t, "front_text", errs[0].Field)
	assert.ErrorIs(t, prefixed, ErrFrontTextEmpty)
	assert.Contains(t, prefixed.Error(), "cards[2].front_text is required")
}
