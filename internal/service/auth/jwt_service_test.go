package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/repetix/repetix-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:                   testSecret,
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 1440,
	}
}

func newTestService(t *testing.T, now func() time.Time) *hmacJWTService {
	t.Helper()
	svc, err := newHMACJWTService(testAuthConfig(), now)
	require.NoError(t, err)
	return svc
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func TestNewJWTService(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(config.AuthConfig{JWTSecret: "short", TokenLifetimeMinutes: 1, RefreshTokenLifetimeMinutes: 2})
	assert.Error(t, err)

	cfg := testAuthConfig()
	cfg.TokenLifetimeMinutes = 0
	_, err = NewJWTService(cfg)
	assert.Error(t, err)

	_, err = NewJWTService(testAuthConfig())
	assert.NoError(t, err)
}

func TestGenerateTokenPair(t *testing.T) {
	t.Parallel()

	issued := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, fixedClock(issued))
	userID := uuid.New()

	pair, err := svc.GenerateTokenPair(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, issued.Add(time.Hour), pair.ExpiresAt)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	access, err := svc.ValidateToken(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, access.UserID)
	assert.Equal(t, userID.String(), access.Subject)
	assert.Equal(t, TokenTypeAccess, access.TokenType)
	assert.Equal(t, issued.Unix(), access.IssuedAt.Unix())
	assert.Equal(t, issued.Add(time.Hour).Unix(), access.ExpiresAt.Unix())
	assert.NotEmpty(t, access.ID)

	refresh, err := svc.ValidateRefreshToken(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, refresh.TokenType)
	assert.Equal(t, issued.Add(24*time.Hour).Unix(), refresh.ExpiresAt.Unix())
	assert.NotEqual(t, access.ID, refresh.ID)
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	issued := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()
	pair, err := newTestService(t, fixedClock(issued)).GenerateTokenPair(context.Background(), userID)
	require.NoError(t, err)

	other, err := newHMACJWTService(config.AuthConfig{
		JWTSecret:                   "wrong-secret-that-is-long-enough-for-testing",
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 1440,
	}, fixedClock(issued))
	require.NoError(t, err)
	foreign, err := other.GenerateTokenPair(context.Background(), userID)
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"uid": userID.String(), "type": "access", "exp": issued.Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		at      time.Time
		token   string
		wantErr error
	}{
		{name: "valid", at: issued, token: pair.AccessToken},
		{name: "within clock skew after expiry", at: issued.Add(61 * time.Minute), token: pair.AccessToken},
		{name: "expired", at: issued.Add(63 * time.Minute), token: pair.AccessToken, wantErr: ErrExpiredToken},
		{name: "within clock skew before issue", at: issued.Add(-time.Minute), token: pair.AccessToken},
		{name: "refresh token as access", at: issued, token: pair.RefreshToken, wantErr: ErrWrongTokenType},
		{name: "wrong signature", at: issued, token: foreign.AccessToken, wantErr: ErrInvalidToken},
		{name: "malformed", at: issued, token: "not.a.jwt", wantErr: ErrInvalidToken},
		{name: "alg none", at: issued, token: noneToken, wantErr: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			claims, err := newTestService(t, fixedClock(tt.at)).ValidateToken(context.Background(), tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, userID, claims.UserID)
		})
	}
}

func TestValidateRefreshToken(t *testing.T) {
	t.Parallel()

	issued := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	pair, err := newTestService(t, fixedClock(issued)).GenerateTokenPair(context.Background(), uuid.New())
	require.NoError(t, err)

	tests := []struct {
		name    string
		at      time.Time
		token   string
		wantErr error
	}{
		{name: "valid", at: issued.Add(23 * time.Hour), token: pair.RefreshToken},
		{name: "expired", at: issued.Add(25 * time.Hour), token: pair.RefreshToken, wantErr: ErrExpiredRefreshToken},
		{name: "access token as refresh", at: issued, token: pair.AccessToken, wantErr: ErrWrongTokenType},
		{name: "garbage", at: issued, token: "garbage", wantErr: ErrInvalidRefreshToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := newTestService(t, fixedClock(tt.at)).ValidateRefreshToken(context.Background(), tt.token)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
