package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/repetix/repetix-api/internal/platform/logger"
	"github.com/repetix/repetix-api/internal/store"
)

// PostgresResetTokenStore implements store.ResetTokenStore.
type PostgresResetTokenStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresResetTokenStore creates a reset token store on db.
func NewPostgresResetTokenStore(db store.DBTX, logger *slog.Logger) *PostgresResetTokenStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresResetTokenStore{
		db:     db,
		logger: logger.With(slog.String("component", "reset_token_store")),
	}
}

var _ store.ResetTokenStore = (*PostgresResetTokenStore)(nil)

// WithTx implements store.ResetTokenStore.WithTx.
func (s *PostgresResetTokenStore) WithTx(tx *sql.Tx) store.ResetTokenStore {
	return &PostgresResetTokenStore{db: tx, logger: s.logger}
}

// Create implements store.ResetTokenStore.Create.
func (s *PostgresResetTokenStore) Create(
	ctx context.Context,
	tokenHash string,
	userID uuid.UUID,
	expiresAt time.Time,
) error {
	query := `
		INSERT INTO password_reset_tokens (token_hash, user_id, expires_at)
		VALUES ($1, $2, $3)
	`
	if _, err := s.db.ExecContext(ctx, query, tokenHash, userID, expiresAt); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to store reset token",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return MapError(err)
	}
	return nil
}

// Consume implements store.ResetTokenStore.Consume. The UPDATE only matches
// unused, unexpired tokens, so a token can be consumed once.
func (s *PostgresResetTokenStore) Consume(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	query := `
		UPDATE password_reset_tokens
		SET used_at = NOW()
		WHERE token_hash = $1 AND used_at IS NULL AND expires_at > NOW()
		RETURNING user_id
	`
	var userID uuid.UUID
	if err := s.db.QueryRowContext(ctx, query, tokenHash).Scan(&userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, store.ErrResetTokenNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to consume reset token",
			slog.String("error", err.Error()))
		return uuid.Nil, MapError(err)
	}
	return userID, nil
}

// DeleteForUser implements store.ResetTokenStore.DeleteForUser.
func (s *PostgresResetTokenStore) DeleteForUser(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM password_reset_tokens WHERE user_id = $1", userID,
	); err != nil {
		return MapError(err)
	}
	return nil
}

// PostgresRevokedTokenStore implements store.RevokedTokenStore.
type PostgresRevokedTokenStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresRevokedTokenStore creates a revoked token store on db.
func NewPostgresRevokedTokenStore(db store.DBTX, logger *slog.Logger) *PostgresRevokedTokenStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresRevokedTokenStore{
		db:     db,
		logger: logger.With(slog.String("component", "revoked_token_store")),
	}
}

var _ store.RevokedTokenStore = (*PostgresRevokedTokenStore)(nil)

// Revoke implements store.RevokedTokenStore.Revoke.
func (s *PostgresRevokedTokenStore) Revoke(
	ctx context.Context,
	jti string,
	userID uuid.UUID,
	expiresAt time.Time,
) error {
	_, err := s.RevokeOnce(ctx, jti, userID, expiresAt)
	return err
}

// RevokeOnce implements store.RevokedTokenStore.RevokeOnce. The primary key
// on jti makes the insert the single point of decision between racing
// callers.
func (s *PostgresRevokedTokenStore) RevokeOnce(
	ctx context.Context,
	jti string,
	userID uuid.UUID,
	expiresAt time.Time,
) (bool, error) {
	query := `
		INSERT INTO revoked_tokens (jti, user_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (jti) DO NOTHING
	`
	result, err := s.db.ExecContext(ctx, query, jti, userID, expiresAt)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to revoke token",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return false, MapError(err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows == 1, nil
}

// IsRevoked implements store.RevokedTokenStore.IsRevoked.
func (s *PostgresRevokedTokenStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE jti = $1)", jti,
	).Scan(&revoked)
	if err != nil {
		return false, MapError(err)
	}
	return revoked, nil
}

// DeleteExpired implements store.RevokedTokenStore.DeleteExpired.
func (s *PostgresRevokedTokenStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM revoked_tokens WHERE expires_at <= $1", now)
	if err != nil {
		return 0, MapError(err)
	}
	return result.RowsAffected()
}
