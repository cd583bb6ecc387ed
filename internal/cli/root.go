package cli

import (
	"context"

	"github.com/karnkeshav/automateresume/internal/config"
	apperrors "github.com/karnkeshav/automateresume/internal/errors"

	"github.com/spf13/cobra"
)

// Define custom private types for context keys.
type configKeyType struct{}
type loggerKeyType struct{}

// Use variables of these types as the keys.
var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

var rootCmd = &cobra.Command{
	Use:   "automateresume",
	Short: "A CLI tool that tailors a resume to a job description",
	Long: `Automateresume tailors a resume to a specific job description through
three generation passes (tailor, critique, revise) and renders the final
draft to PDF. All intermediate drafts are kept as artifacts in the output
directory.`,
}

func Execute(ctx context.Context, cfg *config.Config, logger *apperrors.Logger) error {
	// Attach the config and logger to the context, making them available to all subcommands
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	rootCmd.SetContext(ctx)
	return rootCmd.Execute()
}

// getConfigFromContext is a helper function to get config from context
func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context") // Should not happen if properly initialized
}

// getLoggerFromContext is a helper function to get logger from context
func getLoggerFromContext(ctx context.Context) *apperrors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*apperrors.Logger); ok {
		return logger
	}
	panic("logger not found in context") // Should not happen if properly initialized
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}
