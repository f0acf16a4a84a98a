package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	readHeaderTimeout = 5 * time.Second

	// revokedTokenSweepInterval is how often expired revocation entries
	// are purged.
	revokedTokenSweepInterval = time.Hour
)

// Run listens on the configured port and serves until ctx is cancelled or
// SIGINT/SIGTERM arrives.
func (app *application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", app.config.Server.Port))
	if err != nil {
		app.cleanup()
		return fmt.Errorf("failed to listen on port %d: %w", app.config.Server.Port, err)
	}
	return app.serve(ctx, ln)
}

// serve runs the HTTP server, the signal watcher and the revoked token
// sweeper under one errgroup. When any of them stops, the others are told
// to stop and the server is shut down gracefully.
func (app *application) serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	server := &http.Server{
		Handler:           app.setupRouter(),
		ReadTimeout:       app.config.Server.ReadTimeout(),
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      app.config.Server.WriteTimeout(),
		ErrorLog:          slog.NewLogLogger(app.logger.Handler(), slog.LevelError),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.logger.Info("starting server", slog.String("addr", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(signals)

		select {
		case sig := <-signals:
			app.logger.Info("shutdown signal received", slog.String("signal", sig.String()))
			cancel()
		case <-gctx.Done():
		}
		return nil
	})

	g.Go(func() error {
		app.sweepRevokedTokens(gctx, revokedTokenSweepInterval)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		app.logger.Info("shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout())
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			app.logger.Error("server shutdown failed", slog.String("error", err.Error()))
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	err := g.Wait()
	app.cleanup()
	if err != nil {
		return err
	}

	app.logger.Info("server shutdown completed")
	return nil
}

// sweepRevokedTokens periodically deletes revocation entries whose tokens
// have expired on their own.
func (app *application) sweepRevokedTokens(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := app.revokedTokens.DeleteExpired(ctx, now)
			if err != nil {
				if ctx.Err() == nil {
					app.logger.Warn("failed to purge revoked tokens", slog.String("error", err.Error()))
				}
				continue
			}
			if n > 0 {
				app.logger.Debug("purged revoked tokens", slog.Int64("count", n))
			}
		}
	}
}
