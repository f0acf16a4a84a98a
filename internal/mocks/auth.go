package mocks

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/repetix/repetix-api/internal/platform/mail"
	"github.com/repetix/repetix-api/internal/service/auth"
)

// MockJWTService implements auth.JWTService.
type MockJWTService struct {
	GenerateTokenPairFn    func(ctx context.Context, userID uuid.UUID) (*auth.TokenPair, error)
	ValidateTokenFn        func(ctx context.Context, token string) (*auth.Claims, error)
	ValidateRefreshTokenFn func(ctx context.Context, token string) (*auth.Claims, error)
}

var _ auth.JWTService = (*MockJWTService)(nil)

// GenerateTokenPair implements auth.JWTService. The default returns tokens
// named after the user.
func (m *MockJWTService) GenerateTokenPair(ctx context.Context, userID uuid.UUID) (*auth.TokenPair, error) {
	if m.GenerateTokenPairFn != nil {
		return m.GenerateTokenPairFn(ctx, userID)
	}
	return &auth.TokenPair{
		AccessToken:  "access-" + userID.String(),
		RefreshToken: "refresh-" + userID.String(),
		ExpiresAt:    time.Now().Add(time.Hour),
	}, nil
}

// ValidateToken implements auth.JWTService.
func (m *MockJWTService) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, token)
	}
	return nil, auth.ErrInvalidToken
}

// ValidateRefreshToken implements auth.JWTService.
func (m *MockJWTService) ValidateRefreshToken(ctx context.Context, token string) (*auth.Claims, error) {
	if m.ValidateRefreshTokenFn != nil {
		return m.ValidateRefreshTokenFn(ctx, token)
	}
	return nil, auth.ErrInvalidRefreshToken
}

// ErrMockMismatch is returned by MockPasswordHasher.Compare on mismatch.
var ErrMockMismatch = errors.New("mock: password mismatch")

// MockPasswordHasher implements auth.PasswordHasher. By default Hash
// prefixes the password with "hashed:" and Compare checks that form.
type MockPasswordHasher struct {
	HashFn    func(password string) (string, error)
	CompareFn func(hashedPassword, password string) error
}

var _ auth.PasswordHasher = (*MockPasswordHasher)(nil)

// Hash implements auth.PasswordHasher.
func (m *MockPasswordHasher) Hash(password string) (string, error) {
	if m.HashFn != nil {
		return m.HashFn(password)
	}
	return "hashed:" + password, nil
}

// Compare implements auth.PasswordHasher.
func (m *MockPasswordHasher) Compare(hashedPassword, password string) error {
	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}
	if hashedPassword != "hashed:"+password {
		return ErrMockMismatch
	}
	return nil
}

// MockMailer implements mail.Mailer and records sent messages.
type MockMailer struct {
	SendFn func(ctx context.Context, msg mail.Message) error
	Sent   []mail.Message
}

var _ mail.Mailer = (*MockMailer)(nil)

// Send implements mail.Mailer.
func (m *MockMailer) Send(ctx context.Context, msg mail.Message) error {
	if m.SendFn != nil {
		return m.SendFn(ctx, msg)
	}
	m.Sent = append(m.Sent, msg)
	return nil
}
