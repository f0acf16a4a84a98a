package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"generic error", errors.New("some error"), false},
		{"ErrNotFound", ErrNotFound, true},
		{"ErrUserNotFound", ErrUserNotFound, true},
		{"ErrFlashcardNotFound", ErrFlashcardNotFound, true},
		{"ErrGenerationNotFound", ErrGenerationNotFound, true},
		{"ErrResetTokenNotFound", ErrResetTokenNotFound, true},
		{"wrapped", fmt.Errorf("get card: %w", ErrFlashcardNotFound), true},
		{"store error", NewStoreError("flashcard", "get", "missing", ErrFlashcardNotFound), true},
		{"duplicate", ErrEmailExists, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, IsNotFoundError(tt.err))
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	t.Parallel()

	assert.True(t, IsDuplicateError(ErrEmailExists))
	assert.True(t, IsDuplicateError(fmt.Errorf("create: %w", ErrDuplicate)))
	assert.False(t, IsDuplicateError(ErrUserNotFound))
	assert.False(t, IsDuplicateError(nil))
}

func TestEntitySpecificErrorsAreDistinct(t *testing.T) {
	t.Parallel()

	assert.False(t, errors.Is(ErrFlashcardNotFound, ErrGenerationNotFound))
	assert.False(t, errors.Is(ErrGenerationNotFound, ErrUserNotFound))
	assert.Equal(t, "entity not found: flashcard", ErrFlashcardNotFound.Error())
	assert.Equal(t, "entity already exists: email", ErrEmailExists.Error())
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := NewStoreError("generation", "create", "insert failed", cause)

	assert.Equal(t, "create operation on generation failed: insert failed: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)

	var se *StoreError
	assert.True(t, errors.As(fmt.Errorf("wrap: %w", err), &se))
	assert.Equal(t, "generation", se.Entity)

	bare := NewStoreError("user", "update", "no rows", nil)
	assert.Equal(t, "update operation on user failed: no rows", bare.Error())
	assert.Nil(t, bare.Unwrap())
}
