package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/erazemk/izgubljeno/internal/api"
	"github.com/erazemk/izgubljeno/internal/auth"
	"github.com/erazemk/izgubljeno/internal/config"
	"github.com/erazemk/izgubljeno/internal/db"
	"github.com/erazemk/izgubljeno/internal/imaging"
	"github.com/erazemk/izgubljeno/internal/store"
)

func main() {
	cfg, err := config.Load(os.Args[1:], os.Stdout)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog := newLogger(cfg.LogPath, cfg.Debug, os.Stdout, os.Stderr)
	defer closeLog()

	if err := run(cfg, logger); err != nil {
		logger.Error("server error", zap.Error(err))
		closeLog()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	database, err := db.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Ensure schema exists (idempotent).
	if err := db.EnsureSchema(database); err != nil {
		return fmt.Errorf("ensuring database schema: %w", err)
	}
	logger.Info("database ready", zap.String("path", cfg.DatabasePath))

	// Without a configured secret, use the one generated on first run.
	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		jwtSecret, err = store.GetJWTSecret(context.Background(), database)
		if err != nil {
			return fmt.Errorf("loading JWT secret: %w", err)
		}
	}

	images, err := imaging.NewStore(cfg.UploadDir, "/uploads")
	if err != nil {
		return err
	}

	authService := &auth.Service{
		DB:          database,
		Secret:      jwtSecret,
		TokenExpiry: cfg.TokenExpiry,
		Logger:      logger,
	}

	handler := api.NewRouter(database, authService, api.Options{
		ClaimPolicy:    cfg.ClaimPolicy,
		Images:         images,
		MaxUploadBytes: cfg.MaxUploadBytes(),
	}, logger)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          zap.NewStdLog(logger),
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	logger.Info("server started",
		zap.String("addr", cfg.Addr),
		zap.String("claim_policy", cfg.ClaimPolicy),
		zap.Duration("token_expiry", cfg.TokenExpiry),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	logger.Info("server stopped, closing database")
	return nil
}
