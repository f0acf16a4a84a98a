package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// ResetTokenStore persists password reset tokens. Only hashes of the tokens
// are stored.
type ResetTokenStore interface {
	// Create stores a token hash for the user, valid until expiresAt.
	Create(ctx context.Context, tokenHash string, userID uuid.UUID, expiresAt time.Time) error

	// Consume marks the token as used and returns its owner. Unknown,
	// expired or already consumed tokens yield ErrResetTokenNotFound.
	Consume(ctx context.Context, tokenHash string) (uuid.UUID, error)

	// DeleteForUser removes every outstanding token of the user.
	DeleteForUser(ctx context.Context, userID uuid.UUID) error

	// WithTx returns a ResetTokenStore bound to tx.
	WithTx(tx *sql.Tx) ResetTokenStore
}

// RevokedTokenStore is the deny list for JWTs revoked before expiry.
type RevokedTokenStore interface {
	// Revoke records the token ID. Revoking the same ID twice is not an error.
	Revoke(ctx context.Context, jti string, userID uuid.UUID, expiresAt time.Time) error

	// RevokeOnce records the token ID and reports whether this call was the
	// one that revoked it. Concurrent callers with the same ID see true at
	// most once.
	RevokeOnce(ctx context.Context, jti string, userID uuid.UUID, expiresAt time.Time) (bool, error)

	// IsRevoked reports whether the token ID has been revoked.
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// DeleteExpired removes entries whose tokens have expired anyway and
	// returns how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
