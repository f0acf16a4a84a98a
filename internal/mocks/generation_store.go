package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
	"github.com/repetix/repetix-api/internal/domain"
	"github.com/repetix/repetix-api/internal/store"
)

// MockGenerationStore implements store.GenerationStore.
type MockGenerationStore struct {
	CreateFn            func(ctx context.Context, gen *domain.Generation) error
	GetByIDFn           func(ctx context.Context, userID, id uuid.UUID) (*domain.Generation, error)
	ListFn              func(ctx context.Context, userID uuid.UUID, page domain.Page) ([]*domain.Generation, int, error)
	IncrementAcceptedFn func(ctx context.Context, userID, id uuid.UUID, unedited, edited int) error

	// Created collects the generations passed to Create.
	Created []*domain.Generation
}

var _ store.GenerationStore = (*MockGenerationStore)(nil)

// Create implements store.GenerationStore.
func (m *MockGenerationStore) Create(ctx context.Context, gen *domain.Generation) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, gen)
	}
	m.Created = append(m.Created, gen)
	return nil
}

// GetByID implements store.GenerationStore.
func (m *MockGenerationStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Generation, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, userID, id)
	}
	return nil, store.ErrGenerationNotFound
}

// List implements store.GenerationStore.
func (m *MockGenerationStore) List(
	ctx context.Context,
	userID uuid.UUID,
	page domain.Page,
) ([]*domain.Generation, int, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, userID, page)
	}
	return []*domain.Generation{}, 0, nil
}

// IncrementAccepted implements store.GenerationStore.
func (m *MockGenerationStore) IncrementAccepted(ctx context.Context, userID, id uuid.UUID, unedited, edited int) error {
	if m.IncrementAcceptedFn != nil {
		return m.IncrementAcceptedFn(ctx, userID, id, unedited, edited)
	}
	return nil
}

// WithTx returns m.
func (m *MockGenerationStore) WithTx(*sql.Tx) store.GenerationStore {
	return m
}

// MockGenerationErrorStore implements store.GenerationErrorStore.
type MockGenerationErrorStore struct {
	CreateFn func(ctx context.Context, entry *domain.GenerationErrorLog) error
	ListFn   func(ctx context.Context, userID uuid.UUID, page domain.Page) ([]*domain.GenerationErrorLog, int, error)

	mu      sync.Mutex
	Created []*domain.GenerationErrorLog
}

var _ store.GenerationErrorStore = (*MockGenerationErrorStore)(nil)

// Create implements store.GenerationErrorStore.
func (m *MockGenerationErrorStore) Create(ctx context.Context, entry *domain.GenerationErrorLog) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Created = append(m.Created, entry)
	return nil
}

// List implements store.GenerationErrorStore.
func (m *MockGenerationErrorStore) List(
	ctx context.Context,
	userID uuid.UUID,
	page domain.Page,
) ([]*domain.GenerationErrorLog, int, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, userID, page)
	}
	return []*domain.GenerationErrorLog{}, 0, nil
}
