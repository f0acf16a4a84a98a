package mocks

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/repetix/repetix-api/internal/store"
)

// MockResetTokenStore implements store.ResetTokenStore. Without Fn
// overrides it keeps tokens in memory; Consume ignores expiry.
type MockResetTokenStore struct {
	CreateFn        func(ctx context.Context, tokenHash string, userID uuid.UUID, expiresAt time.Time) error
	ConsumeFn       func(ctx context.Context, tokenHash string) (uuid.UUID, error)
	DeleteForUserFn func(ctx context.Context, userID uuid.UUID) error

	mu     sync.Mutex
	Tokens map[string]uuid.UUID
}

var _ store.ResetTokenStore = (*MockResetTokenStore)(nil)

// Create implements store.ResetTokenStore.
func (m *MockResetTokenStore) Create(ctx context.Context, tokenHash string, userID uuid.UUID, expiresAt time.Time) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, tokenHash, userID, expiresAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Tokens == nil {
		m.Tokens = make(map[string]uuid.UUID)
	}
	m.Tokens[tokenHash] = userID
	return nil
}

// Consume implements store.ResetTokenStore.
func (m *MockResetTokenStore) Consume(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	if m.ConsumeFn != nil {
		return m.ConsumeFn(ctx, tokenHash)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	userID, ok := m.Tokens[tokenHash]
	if !ok {
		return uuid.Nil, store.ErrResetTokenNotFound
	}
	delete(m.Tokens, tokenHash)
	return userID, nil
}

// DeleteForUser implements store.ResetTokenStore.
func (m *MockResetTokenStore) DeleteForUser(ctx context.Context, userID uuid.UUID) error {
	if m.DeleteForUserFn != nil {
		return m.DeleteForUserFn(ctx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for hash, owner := range m.Tokens {
		if owner == userID {
			delete(m.Tokens, hash)
		}
	}
	return nil
}

// WithTx returns m.
func (m *MockResetTokenStore) WithTx(*sql.Tx) store.ResetTokenStore {
	return m
}

// MockRevokedTokenStore implements store.RevokedTokenStore with an
// in-memory set unless Fn fields are set.
type MockRevokedTokenStore struct {
	RevokeFn        func(ctx context.Context, jti string, userID uuid.UUID, expiresAt time.Time) error
	RevokeOnceFn    func(ctx context.Context, jti string, userID uuid.UUID, expiresAt time.Time) (bool, error)
	IsRevokedFn     func(ctx context.Context, jti string) (bool, error)
	DeleteExpiredFn func(ctx context.Context, now time.Time) (int64, error)

	mu      sync.Mutex
	Revoked map[string]time.Time
}

var _ store.RevokedTokenStore = (*MockRevokedTokenStore)(nil)

// Revoke implements store.RevokedTokenStore.
func (m *MockRevokedTokenStore) Revoke(ctx context.Context, jti string, userID uuid.UUID, expiresAt time.Time) error {
	if m.RevokeFn != nil {
		return m.RevokeFn(ctx, jti, userID, expiresAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Revoked == nil {
		m.Revoked = make(map[string]time.Time)
	}
	m.Revoked[jti] = expiresAt
	return nil
}

// RevokeOnce implements store.RevokedTokenStore.
func (m *MockRevokedTokenStore) RevokeOnce(
	ctx context.Context,
	jti string,
	userID uuid.UUID,
	expiresAt time.Time,
) (bool, error) {
	if m.RevokeOnceFn != nil {
		return m.RevokeOnceFn(ctx, jti, userID, expiresAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Revoked == nil {
		m.Revoked = make(map[string]time.Time)
	}
	if _, ok := m.Revoked[jti]; ok {
		return false, nil
	}
	m.Revoked[jti] = expiresAt
	return true, nil
}

// IsRevoked implements store.RevokedTokenStore.
func (m *MockRevokedTokenStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if m.IsRevokedFn != nil {
		return m.IsRevokedFn(ctx, jti)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Revoked[jti]
	return ok, nil
}

// DeleteExpired implements store.RevokedTokenStore.
func (m *MockRevokedTokenStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if m.DeleteExpiredFn != nil {
		return m.DeleteExpiredFn(ctx, now)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for jti, exp := range m.Revoked {
		if !exp.After(now) {
			delete(m.Revoked, jti)
			n++
		}
	}
	return n, nil
}
