package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/karnkeshav/automateresume/internal/cli"
	"github.com/karnkeshav/automateresume/internal/config"
	apperrors "github.com/karnkeshav/automateresume/internal/errors"
	"github.com/karnkeshav/automateresume/internal/observability"
)

// Exit codes. A missing resume file gets its own code so callers can tell
// "fix the path" apart from every other failure.
const (
	exitOK             = 0
	exitFailure        = 1
	exitResumeNotFound = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Bootstrap logger for config loading; replaced once the configured
	// level is known.
	logger, err := apperrors.New("info")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return exitFailure
	}

	cfg, err := config.LoadConfig(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return exitFailure
	}

	logger, err = apperrors.New(cfg.App.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return exitFailure
	}

	obs, err := observability.New(cfg.Observability, cli.Version)
	if err != nil {
		logger.LogError(err, "Failed to initialize observability")
		return exitFailure
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Observability shutdown failed", "error", err)
		}
	}()

	logger.Info("Starting automateresume",
		"version", cli.Version,
		"log_level", cfg.App.LogLevel,
		"model", cfg.AI.Model)

	if err := cli.Execute(ctx, cfg, logger); err != nil {
		logger.LogError(err, "Application execution failed")
		return exitCode(err)
	}

	return exitOK
}

// exitCode maps a failure to its process exit status
func exitCode(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code == apperrors.ErrCodeResumeNotFound {
		return exitResumeNotFound
	}
	return exitFailure
}
