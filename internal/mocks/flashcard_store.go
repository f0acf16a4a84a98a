package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/repetix/repetix-api/internal/domain"
	"github.com/repetix/repetix-api/internal/store"
)

// MockFlashcardStore implements store.FlashcardStore.
type MockFlashcardStore struct {
	CreateMultipleFn func(ctx context.Context, cards []*domain.Flashcard) error
	GetByIDFn        func(ctx context.Context, userID, id uuid.UUID) (*domain.Flashcard, error)
	ListFn           func(ctx context.Context, userID uuid.UUID, opts domain.ListFlashcardsOptions) ([]*domain.Flashcard, int, error)
	UpdateFn         func(ctx context.Context, card *domain.Flashcard) error
	DeleteFn         func(ctx context.Context, userID, id uuid.UUID) error

	// Created collects the cards passed to CreateMultiple.
	Created []*domain.Flashcard
}

var _ store.FlashcardStore = (*MockFlashcardStore)(nil)

// CreateMultiple implements store.FlashcardStore.
func (m *MockFlashcardStore) CreateMultiple(ctx context.Context, cards []*domain.Flashcard) error {
	if m.CreateMultipleFn != nil {
		return m.CreateMultipleFn(ctx, cards)
	}
	m.Created = append(m.Created, cards...)
	return nil
}

// GetByID implements store.FlashcardStore.
func (m *MockFlashcardStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Flashcard, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, userID, id)
	}
	return nil, store.ErrFlashcardNotFound
}

// List implements store.FlashcardStore.
func (m *MockFlashcardStore) List(
	ctx context.Context,
	userID uuid.UUID,
	opts domain.ListFlashcardsOptions,
) ([]*domain.Flashcard, int, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, userID, opts)
	}
	return []*domain.Flashcard{}, 0, nil
}

// Update implements store.FlashcardStore.
func (m *MockFlashcardStore) Update(ctx context.Context, card *domain.Flashcard) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, card)
	}
	return nil
}

// Delete implements store.FlashcardStore.
func (m *MockFlashcardStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, userID, id)
	}
	return nil
}

// WithTx returns m.
func (m *MockFlashcardStore) WithTx(*sql.Tx) store.FlashcardStore {
	return m
}
