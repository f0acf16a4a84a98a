package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/repetix/repetix-api/internal/config"
	"github.com/repetix/repetix-api/internal/domain"
	"github.com/repetix/repetix-api/internal/platform/logger"
	"github.com/repetix/repetix-api/internal/platform/mail"
	"github.com/repetix/repetix-api/internal/service/auth"
	"github.com/repetix/repetix-api/internal/store"
)

// ResetPasswordPath is appended to the app base URL in reset emails.
const ResetPasswordPath = "/reset-password"

// UserService handles accounts, credentials and sessions.
type UserService interface {
	// Register creates an account. Returns store.ErrEmailExists when the
	// email is taken.
	Register(ctx context.Context, email, password string) (*domain.User, error)

	// Authenticate checks the credentials. Unknown email and wrong password
	// both yield ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	// GetUser retrieves a user by their ID
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// ChangePassword replaces the password after verifying the current one.
	ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error

	// RequestPasswordReset mails a reset link when the email belongs to a
	// user. Unknown emails are not reported to the caller.
	RequestPasswordReset(ctx context.Context, email string) error

	// ResetPassword consumes a reset token and sets the new password.
	ResetPassword(ctx context.Context, token, newPassword string) error

	// IssueTokens starts a session for the user.
	IssueTokens(ctx context.Context, userID uuid.UUID) (*auth.TokenPair, error)

	// Refresh exchanges a refresh token for a new pair. The presented
	// refresh token is revoked.
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error)

	// Logout revokes the access token described by access and, when given,
	// the refresh token of the same user.
	Logout(ctx context.Context, access *auth.Claims, refreshToken string) error
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	db          *sql.DB
	users       store.UserStore
	resetTokens store.ResetTokenStore
	revoked     store.RevokedTokenStore
	jwt         auth.JWTService
	hasher      auth.PasswordHasher
	mailer      mail.Mailer
	cfg         config.AuthConfig
	logger      *slog.Logger
	now         func() time.Time
}

var _ UserService = (*UserServiceImpl)(nil)

// UserServiceDeps groups the collaborators of UserServiceImpl.
type UserServiceDeps struct {
	DB          *sql.DB
	Users       store.UserStore
	ResetTokens store.ResetTokenStore
	Revoked     store.RevokedTokenStore
	JWT         auth.JWTService
	Hasher      auth.PasswordHasher
	Mailer      mail.Mailer
}

// NewUserService creates a new UserService.
// It returns an error if any of the required dependencies are nil.
func NewUserService(deps UserServiceDeps, cfg config.AuthConfig, logger *slog.Logger) (*UserServiceImpl, error) {
	switch {
	case deps.DB == nil:
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	case deps.Users == nil:
		return nil, domain.NewValidationError("users", "cannot be nil", domain.ErrValidation)
	case deps.ResetTokens == nil:
		return nil, domain.NewValidationError("resetTokens", "cannot be nil", domain.ErrValidation)
	case deps.Revoked == nil:
		return nil, domain.NewValidationError("revoked", "cannot be nil", domain.ErrValidation)
	case deps.JWT == nil:
		return nil, domain.NewValidationError("jwt", "cannot be nil", domain.ErrValidation)
	case deps.Hasher == nil:
		return nil, domain.NewValidationError("hasher", "cannot be nil", domain.ErrValidation)
	case deps.Mailer == nil:
		return nil, domain.NewValidationError("mailer", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &UserServiceImpl{
		db:          deps.DB,
		users:       deps.Users,
		resetTokens: deps.ResetTokens,
		revoked:     deps.Revoked,
		jwt:         deps.JWT,
		hasher:      deps.Hasher,
		mailer:      deps.Mailer,
		cfg:         cfg,
		logger:      logger.With(slog.String("component", "user_service")),
		now:         time.Now,
	}, nil
}

// Register implements UserService.
func (s *UserServiceImpl) Register(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(email, password)
	if err != nil {
		return nil, userValidationError(err)
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		log.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, NewServiceError("user", "register", "failed to hash password", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("registration with existing email")
			return nil, err
		}
		log.Error("failed to create user", slog.String("error", err.Error()))
		return nil, NewServiceError("user", "register", "failed to create user", err)
	}

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	return user, nil
}

// Authenticate implements UserService.
func (s *UserServiceImpl) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("login for unknown email")
			return nil, ErrInvalidCredentials
		}
		log.Error("failed to look up user", slog.String("error", err.Error()))
		return nil, NewServiceError("user", "authenticate", "failed to look up user", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		log.Debug("login with wrong password", slog.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser implements UserService.
func (s *UserServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}

// ChangePassword implements UserService.
func (s *UserServiceImpl) ChangePassword(
	ctx context.Context,
	userID uuid.UUID,
	currentPassword, newPassword string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", userID.String()))

	if err := domain.ValidatePassword(newPassword); err != nil {
		return passwordError("newPassword", err)
	}
	if newPassword == currentPassword {
		return domain.NewValidationError("newPassword", "must differ from the current password", ErrSamePassword)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to retrieve user: %w", err)
	}
	if err := s.hasher.Compare(user.HashedPassword, currentPassword); err != nil {
		log.Debug("password change with wrong current password")
		return ErrInvalidCredentials
	}

	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return NewServiceError("user", "change_password", "failed to hash password", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hashed); err != nil {
		log.Error("failed to update password", slog.String("error", err.Error()))
		return fmt.Errorf("failed to update password: %w", err)
	}

	log.Info("password changed")
	return nil
}

// RequestPasswordReset implements UserService.
func (s *UserServiceImpl) RequestPasswordReset(ctx context.Context, email string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	token, hash, err := auth.NewResetToken()
	if err != nil {
		return NewServiceError("user", "request_password_reset", "failed to create token", err)
	}

	expiresAt := s.now().Add(time.Duration(s.cfg.ResetTokenLifetimeMinutes) * time.Minute)
	if err := s.resetTokens.Create(ctx, hash, user.ID, expiresAt); err != nil {
		log.Error("failed to store reset token", slog.String("error", err.Error()))
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	msg := mail.Message{
		To:      user.Email,
		Subject: "Reset your Repetix password",
		Body: fmt.Sprintf(
			"Use the link below to choose a new password. It expires in %d minutes.\n\n%s\n",
			s.cfg.ResetTokenLifetimeMinutes,
			resetLink(s.cfg.AppBaseURL, token),
		),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		log.Error("failed to send reset email", slog.String("error", err.Error()))
		return fmt.Errorf("failed to send reset email: %w", err)
	}

	log.Info("password reset requested", slog.String("user_id", user.ID.String()))
	return nil
}

// ResetPassword implements UserService.
func (s *UserServiceImpl) ResetPassword(ctx context.Context, token, newPassword string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if strings.TrimSpace(token) == "" {
		return ErrInvalidResetToken
	}
	if err := domain.ValidatePassword(newPassword); err != nil {
		return passwordError("newPassword", err)
	}

	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return NewServiceError("user", "reset_password", "failed to hash password", err)
	}

	var userID uuid.UUID
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		tokens := s.resetTokens.WithTx(tx)

		id, err := tokens.Consume(ctx, auth.HashResetToken(token))
		if err != nil {
			if errors.Is(err, store.ErrResetTokenNotFound) {
				return ErrInvalidResetToken
			}
			return fmt.Errorf("failed to consume reset token: %w", err)
		}
		userID = id

		if err := s.users.WithTx(tx).UpdatePassword(ctx, id, hashed); err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		if err := tokens.DeleteForUser(ctx, id); err != nil {
			return fmt.Errorf("failed to delete reset tokens: %w", err)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrInvalidResetToken) {
			log.Error("password reset failed", slog.String("error", err.Error()))
		}
		return err
	}

	log.Info("password reset", slog.String("user_id", userID.String()))
	return nil
}

// IssueTokens implements UserService.
func (s *UserServiceImpl) IssueTokens(ctx context.Context, userID uuid.UUID) (*auth.TokenPair, error) {
	pair, err := s.jwt.GenerateTokenPair(ctx, userID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to generate tokens",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewServiceError("user", "issue_tokens", "failed to generate tokens", err)
	}
	return pair, nil
}

// Refresh implements UserService.
func (s *UserServiceImpl) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	claims, err := s.jwt.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		log.Warn("revoked refresh token presented", slog.String("user_id", claims.UserID.String()))
		return nil, auth.ErrRevokedToken
	}

	if _, err := s.users.GetByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, auth.ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	// Rotation: only the caller that revokes the old token gets a new pair.
	rotated, err := s.revoked.RevokeOnce(ctx, claims.ID, claims.UserID, claims.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	if !rotated {
		log.Warn("refresh token reused concurrently", slog.String("user_id", claims.UserID.String()))
		return nil, auth.ErrRevokedToken
	}

	return s.IssueTokens(ctx, claims.UserID)
}

// Logout implements UserService.
func (s *UserServiceImpl) Logout(ctx context.Context, access *auth.Claims, refreshToken string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if access == nil {
		return auth.ErrMissingToken
	}
	if err := s.revoked.Revoke(ctx, access.ID, access.UserID, access.ExpiresAt); err != nil {
		return fmt.Errorf("failed to revoke access token: %w", err)
	}

	if refreshToken != "" {
		claims, err := s.jwt.ValidateRefreshToken(ctx, refreshToken)
		switch {
		case err != nil:
			// Unusable anyway.
			log.Debug("ignoring invalid refresh token on logout", slog.String("error", err.Error()))
		case claims.UserID != access.UserID:
			log.Warn("refresh token of another user presented on logout",
				slog.String("user_id", access.UserID.String()))
		default:
			if err := s.revoked.Revoke(ctx, claims.ID, claims.UserID, claims.ExpiresAt); err != nil {
				return fmt.Errorf("failed to revoke refresh token: %w", err)
			}
		}
	}

	log.Info("user logged out", slog.String("user_id", access.UserID.String()))
	return nil
}

func resetLink(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + ResetPasswordPath + "?token=" + url.QueryEscape(token)
}

// userValidationError attaches the offending field to the plain user
// validation sentinels.
func userValidationError(err error) error {
	switch {
	case errors.Is(err, domain.ErrEmptyEmail):
		return domain.NewValidationError("email", "is required", err)
	case errors.Is(err, domain.ErrInvalidEmail):
		return domain.NewValidationError("email", "must be a valid email address", err)
	case errors.Is(err, domain.ErrEmptyPassword),
		errors.Is(err, domain.ErrPasswordTooShort),
		errors.Is(err, domain.ErrPasswordTooLong):
		return passwordError("password", err)
	}
	return err
}

func passwordError(field string, err error) error {
	return domain.NewValidationError(field, strings.TrimPrefix(err.Error(), "password "), err)
}
