package mocks

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/repetix/repetix-api/internal/domain"
	"github.com/repetix/repetix-api/internal/service"
	"github.com/repetix/repetix-api/internal/service/auth"
)

// ErrNotMocked is returned by service mocks whose Fn field is unset.
var ErrNotMocked = errors.New("mock: method not configured")

// MockUserService implements service.UserService.
type MockUserService struct {
	RegisterFn             func(ctx context.Context, email, password string) (*domain.User, error)
	AuthenticateFn         func(ctx context.Context, email, password string) (*domain.User, error)
	GetUserFn              func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	ChangePasswordFn       func(ctx context.Context, userID uuid.UUID, current, next string) error
	RequestPasswordResetFn func(ctx context.Context, email string) error
	ResetPasswordFn        func(ctx context.Context, token, newPassword string) error
	IssueTokensFn          func(ctx context.Context, userID uuid.UUID) (*auth.TokenPair, error)
	RefreshFn              func(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
	LogoutFn               func(ctx context.Context, access *auth.Claims, refreshToken string) error
}

var _ service.UserService = (*MockUserService)(nil)

// Register implements service.UserService.
func (m *MockUserService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	if m.RegisterFn != nil {
		return m.RegisterFn(ctx, email, password)
	}
	return nil, ErrNotMocked
}

// Authenticate implements service.UserService.
func (m *MockUserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	if m.AuthenticateFn != nil {
		return m.AuthenticateFn(ctx, email, password)
	}
	return nil, ErrNotMocked
}

// GetUser implements service.UserService.
func (m *MockUserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	if m.GetUserFn != nil {
		return m.GetUserFn(ctx, userID)
	}
	return nil, ErrNotMocked
}

// ChangePassword implements service.UserService.
func (m *MockUserService) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	if m.ChangePasswordFn != nil {
		return m.ChangePasswordFn(ctx, userID, current, next)
	}
	return ErrNotMocked
}

// RequestPasswordReset implements service.UserService.
func (m *MockUserService) RequestPasswordReset(ctx context.Context, email string) error {
	if m.RequestPasswordResetFn != nil {
		return m.RequestPasswordResetFn(ctx, email)
	}
	return nil
}

// ResetPassword implements service.UserService.
func (m *MockUserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if m.ResetPasswordFn != nil {
		return m.ResetPasswordFn(ctx, token, newPassword)
	}
	return ErrNotMocked
}

// IssueTokens implements service.UserService.
func (m *MockUserService) IssueTokens(ctx context.Context, userID uuid.UUID) (*auth.TokenPair, error) {
	if m.IssueTokensFn != nil {
		return m.IssueTokensFn(ctx, userID)
	}
	return (&MockJWTService{}).GenerateTokenPair(ctx, userID)
}

// Refresh implements service.UserService.
func (m *MockUserService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	if m.RefreshFn != nil {
		return m.RefreshFn(ctx, refreshToken)
	}
	return nil, auth.ErrInvalidRefreshToken
}

// Logout implements service.UserService.
func (m *MockUserService) Logout(ctx context.Context, access *auth.Claims, refreshToken string) error {
	if m.LogoutFn != nil {
		return m.LogoutFn(ctx, access, refreshToken)
	}
	return nil
}

// MockFlashcardService implements service.FlashcardService.
type MockFlashcardService struct {
	CreateFn func(ctx context.Context, userID uuid.UUID, inputs []service.CreateFlashcardInput) ([]*domain.Flashcard, error)
	GetFn    func(ctx context.Context, userID, id uuid.UUID) (*domain.Flashcard, error)
	ListFn   func(ctx context.Context, userID uuid.UUID, opts domain.ListFlashcardsOptions) ([]*domain.Flashcard, domain.Page, error)
	UpdateFn func(ctx context.Context, userID, id uuid.UUID, front, back string, source domain.FlashcardSource) (*domain.Flashcard, error)
	DeleteFn func(ctx context.Context, userID, id uuid.UUID) error
}

var _ service.FlashcardService = (*MockFlashcardService)(nil)

// Create implements service.FlashcardService.
func (m *MockFlashcardService) Create(
	ctx context.Context,
	userID uuid.UUID,
	inputs []service.CreateFlashcardInput,
) ([]*domain.Flashcard, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, userID, inputs)
	}
	return nil, ErrNotMocked
}

// Get implements service.FlashcardService.
func (m *MockFlashcardService) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Flashcard, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, userID, id)
	}
	return nil, ErrNotMocked
}

// List implements service.FlashcardService.
func (m *MockFlashcardService) List(
	ctx context.Context,
	userID uuid.UUID,
	opts domain.ListFlashcardsOptions,
) ([]*domain.Flashcard, domain.Page, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, userID, opts)
	}
	return nil, domain.Page{}, ErrNotMocked
}

// Update implements service.FlashcardService.
func (m *MockFlashcardService) Update(
	ctx context.Context,
	userID, id uuid.UUID,
	front, back string,
	source domain.FlashcardSource,
) (*domain.Flashcard, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, userID, id, front, back, source)
	}
	return nil, ErrNotMocked
}

// Delete implements service.FlashcardService.
func (m *MockFlashcardService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, userID, id)
	}
	return ErrNotMocked
}

// MockGenerationService implements service.GenerationService.
type MockGenerationService struct {
	GenerateFn   func(ctx context.Context, userID uuid.UUID, text string) (*domain.Generation, error)
	GetFn        func(ctx context.Context, userID, id uuid.UUID) (*domain.Generation, error)
	ListFn       func(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]*domain.Generation, domain.Page, error)
	ListErrorsFn func(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]*domain.GenerationErrorLog, domain.Page, error)
}

var _ service.GenerationService = (*MockGenerationService)(nil)

// Generate implements service.GenerationService.
func (m *MockGenerationService) Generate(ctx context.Context, userID uuid.UUID, text string) (*domain.Generation, error) {
	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, userID, text)
	}
	return nil, ErrNotMocked
}

// Get implements service.GenerationService.
func (m *MockGenerationService) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Generation, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, userID, id)
	}
	return nil, ErrNotMocked
}

// List implements service.GenerationService.
func (m *MockGenerationService) List(
	ctx context.Context,
	userID uuid.UUID,
	page, pageSize int,
) ([]*domain.Generation, domain.Page, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, userID, page, pageSize)
	}
	return nil, domain.Page{}, ErrNotMocked
}

// ListErrors implements service.GenerationService.
func (m *MockGenerationService) ListErrors(
	ctx context.Context,
	userID uuid.UUID,
	page, pageSize int,
) ([]*domain.GenerationErrorLog, domain.Page, error) {
	if m.ListErrorsFn != nil {
		return m.ListErrorsFn(ctx, userID, page, pageSize)
	}
	return nil, domain.Page{}, ErrNotMocked
}
