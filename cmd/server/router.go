package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/repetix/repetix-api/internal/api"
	apiMiddleware "github.com/repetix/repetix-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(app.config.Server.WriteTimeout()))

	authHandler := api.NewAuthHandler(app.userService, app.logger)
	flashcardHandler := api.NewFlashcardHandler(app.flashcardService, app.logger)
	generationHandler := api.NewGenerationHandler(app.generationService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService, app.revokedTokens)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.RefreshToken)
			r.Post("/reset-password/request", authHandler.RequestPasswordReset)
			r.Post("/reset-password", authHandler.ResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.Authenticate)
				r.Get("/session", authHandler.Session)
				r.Post("/logout", authHandler.Logout)
				r.Post("/change-password", authHandler.ChangePassword)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/generations", generationHandler.Generate)
			r.Get("/generations", generationHandler.List)
			r.Get("/generations/{id}", generationHandler.Get)
			r.Get("/generation-errors", generationHandler.ListErrors)

			r.Route("/flashcards", func(r chi.Router) {
				r.Post("/", flashcardHandler.Create)
				r.Get("/", flashcardHandler.List)
				r.Get("/{id}", flashcardHandler.Get)
				r.Put("/{id}", flashcardHandler.Update)
				r.Delete("/{id}", flashcardHandler.Delete)
			})
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", slog.String("error", err.Error()))
		}
	})

	return r
}
