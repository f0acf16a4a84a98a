package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/repetix/repetix-api/internal/config"
	"github.com/repetix/repetix-api/internal/generation"
	"github.com/repetix/repetix-api/internal/platform/gemini"
	"github.com/repetix/repetix-api/internal/platform/mail"
	"github.com/repetix/repetix-api/internal/platform/openrouter"
	"github.com/repetix/repetix-api/internal/platform/postgres"
	"github.com/repetix/repetix-api/internal/service"
	"github.com/repetix/repetix-api/internal/service/auth"
	"github.com/repetix/repetix-api/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	jwtService    auth.JWTService
	revokedTokens store.RevokedTokenStore

	userService       service.UserService
	flashcardService  service.FlashcardService
	generationService service.GenerationService
}

// newApplication wires stores, the generation provider and the services
// around an open database connection.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes),
		slog.Int("refresh_token_lifetime_minutes", cfg.Auth.RefreshTokenLifetimeMinutes))

	userStore := postgres.NewPostgresUserStore(db, logger)
	flashcardStore := postgres.NewPostgresFlashcardStore(db, logger)
	generationStore := postgres.NewPostgresGenerationStore(db, logger)
	generationErrorStore := postgres.NewPostgresGenerationErrorStore(db, logger)
	resetTokenStore := postgres.NewPostgresResetTokenStore(db, logger)
	app.revokedTokens = postgres.NewPostgresRevokedTokenStore(db, logger)

	generator, err := newGenerator(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM generator: %w", err)
	}
	logger.Info("LLM generator initialized",
		slog.String("provider", cfg.LLM.Provider),
		slog.String("model", generator.Model()))

	app.userService, err = service.NewUserService(service.UserServiceDeps{
		DB:          db,
		Users:       userStore,
		ResetTokens: resetTokenStore,
		Revoked:     app.revokedTokens,
		JWT:         app.jwtService,
		Hasher:      auth.NewBcryptHasher(cfg.Auth.BCryptCost),
		Mailer:      mail.NewLogMailer(logger),
	}, cfg.Auth, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	app.flashcardService, err = service.NewFlashcardService(db, flashcardStore, generationStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create flashcard service: %w", err)
	}

	app.generationService, err = service.NewGenerationService(generator, generationStore, generationErrorStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation service: %w", err)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// newGenerator selects the flashcard generator named by cfg.Provider.
func newGenerator(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (generation.Generator, error) {
	switch cfg.Provider {
	case config.ProviderOpenRouter:
		g, err := openrouter.NewGenerator(openrouter.ConfigFromLLM(cfg, logger))
		if err != nil {
			return nil, err
		}
		return g, nil
	case config.ProviderGemini:
		g, err := gemini.NewGenerator(ctx, gemini.ConfigFromLLM(cfg, logger))
		if err != nil {
			return nil, err
		}
		return g, nil
	case config.ProviderMock:
		return generation.NewStaticGenerator(generation.DefaultStaticDelay), nil
	default:
		return nil, fmt.Errorf("%w: unknown llm provider %q", generation.ErrInvalidConfig, cfg.Provider)
	}
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}

	app.logger.Info("application shutdown completed")
}
