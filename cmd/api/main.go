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

	"github.com/trailbook-app/trailbook/internal/config"
	"github.com/trailbook-app/trailbook/internal/database"
	"github.com/trailbook-app/trailbook/internal/handler"
	"github.com/trailbook-app/trailbook/internal/logger"
	"github.com/trailbook-app/trailbook/internal/middleware"
	"github.com/trailbook-app/trailbook/internal/repository"
	"github.com/trailbook-app/trailbook/internal/router"
	"github.com/trailbook-app/trailbook/internal/server"
	"github.com/trailbook-app/trailbook/internal/service"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	loggerService, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := loggerService.GetLogger()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancelMigrate()
	if err := database.Migrate(migrateCtx, log, cfg); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	s, err := server.New(cfg, log, loggerService)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	repos := repository.NewRepositories(s)
	middlewares := middleware.NewMiddlewares(s, repos.Users)

	services, err := service.NewService(s, repos, middlewares.Auth.Issuer())
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	handlers := handler.NewHandlers(s, services)
	s.SetupHTTPServer(router.New(handlers, middlewares))

	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	loggerService.Shutdown(10 * time.Second)

	log.Info().Msg("server stopped")
	return nil
}
