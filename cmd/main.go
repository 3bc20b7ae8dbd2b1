// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/tabletop/internal/config"
	"github.com/Shivanand-hulikatti/tabletop/internal/database"
	"github.com/Shivanand-hulikatti/tabletop/internal/handler"
	"github.com/Shivanand-hulikatti/tabletop/internal/logger"
	"github.com/Shivanand-hulikatti/tabletop/internal/preference"
	"github.com/Shivanand-hulikatti/tabletop/internal/repository"
	"github.com/Shivanand-hulikatti/tabletop/internal/service"
	"github.com/Shivanand-hulikatti/tabletop/internal/session"
)

const sweepInterval = time.Minute

func main() {
	os.Exit(serve())
}

// serve runs the server and returns the process exit code once every
// deferred cleanup has run.
func serve() int {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log.With(zap.String("repository", cfg.RepositoryDriver))); err != nil {
		log.Error("server exited", zap.Error(err))
		return 1
	}
	return 0
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	// ── 1. Event repository ──────────────────────────────────────────────
	var repo service.Repository
	switch cfg.RepositoryDriver {
	case config.DriverMemory:
		repo = repository.NewMemoryRepository()
		log.Warn("using in-memory repository; events are lost on restart")
	default:
		pool, err := database.NewPool(ctx, cfg.Database, log.Named("database").Logger)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer pool.Close()
		if err := database.Migrate(ctx, pool); err != nil {
			return fmt.Errorf("database: %w", err)
		}
		repo = repository.NewPostgresRepository(pool)
		log.Info("connected to PostgreSQL", zap.String("host", cfg.Database.Host), zap.String("db", cfg.Database.DBName))
	}

	// ── 2. Preference store ──────────────────────────────────────────────
	prefs, err := preference.OpenSQLite(ctx, cfg.PreferencesDB)
	if err != nil {
		return fmt.Errorf("preferences: %w", err)
	}
	defer prefs.Close()

	// ── 3. Wire up layers ────────────────────────────────────────────────
	registry := session.NewRegistry(repo, prefs, log.Named("session").Logger)
	go registry.Run(ctx, sweepInterval, cfg.SessionIdleTimeout)

	router := handler.NewRouter(
		handler.NewEventHandler(service.NewEventService(repo), log.Named("events").Logger),
		handler.NewSessionHandler(registry, log.Named("sessions").Logger),
		log.Named("http").Logger,
	)

	// ── 4. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Block until SIGINT/SIGTERM or the listener fails.
	select {
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("server stopped")
	return nil
}
