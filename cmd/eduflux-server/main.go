package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/at-ishikawa/eduflux/internal/config"
	"github.com/at-ishikawa/eduflux/internal/database"
	"github.com/at-ishikawa/eduflux/internal/inference"
	"github.com/at-ishikawa/eduflux/internal/inference/groq"
	"github.com/at-ishikawa/eduflux/internal/mastery"
	"github.com/at-ishikawa/eduflux/internal/note"
	"github.com/at-ishikawa/eduflux/internal/server"
	"github.com/at-ishikawa/eduflux/internal/student"
	"github.com/at-ishikawa/eduflux/internal/toolresult"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}

	if cfg.Groq.APIKey == "" {
		return fmt.Errorf("GROQ_API_KEY environment variable is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("EDUFLUX_JWT_SECRET environment variable is required")
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("database.Open() > %w", err)
	}
	defer func() {
		_ = db.Close()
	}()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("db.PingContext() > %w", err)
	}

	groqClient := groq.NewClient(cfg.Groq.APIKey, cfg.Groq.Model, inference.DefaultMaxRetryAttempts)
	defer func() {
		_ = groqClient.Close()
	}()

	handler := server.NewHandler(
		cfg,
		groqClient,
		student.NewDBRepository(db),
		note.NewDBRepository(db),
		mastery.NewDBRepository(db),
		toolresult.NewDBRepository(db),
	)
	srv := server.NewServer(cfg, handler, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("srv.Shutdown() > %w", err)
	}
	return <-errCh
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(os.Getenv("EDUFLUX_CONFIG"))
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}
