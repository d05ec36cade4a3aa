package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/sha1n/text-to-visitor/internal/config"
	"github.com/sha1n/text-to-visitor/internal/pipeline"
	"github.com/spf13/pflag"
)

// RunParams contains dependencies for the run function
type RunParams struct {
	LoadSettings  func(*pflag.FlagSet) (*config.Settings, error)
	ValidSettings func(*config.Settings) error
	RunPipeline   func(context.Context, pipeline.Options) (*pipeline.Summary, error)
	Stdout        io.Writer
}

// DefaultRunParams returns production dependencies
func DefaultRunParams() RunParams {
	return RunParams{
		LoadSettings:  config.LoadSettingsWithFlags,
		ValidSettings: config.ValidateSettings,
		RunPipeline:   pipeline.Run,
		Stdout:        os.Stdout,
	}
}

// RunWithDeps extracts the dataset with the provided dependencies
func RunWithDeps(ctx context.Context, params RunParams, flags *pflag.FlagSet, version string) error {
	// Load settings
	settings, err := params.LoadSettings(flags)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	// Validate settings before touching any input
	if err := params.ValidSettings(settings); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := setupLogging(settings.LogLevel); err != nil {
		return err
	}

	slog.Info("Starting dataset extraction", "version", version)
	config.Log(settings)

	opts, err := pipeline.OptionsFromSettings(settings)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	opts.Stdout = params.Stdout
	opts.Logger = slog.Default()

	summary, err := params.RunPipeline(ctx, opts)
	if err != nil {
		slog.Error("Dataset extraction failed", "error", err)
		return err
	}

	slog.Info("Dataset extraction completed", "rows", summary.Rows, "output", settings.Output)
	return nil
}

// setupLogging installs the default logger. Logs always go to stderr so
// stdout carries only the dataset preview and search results.
func setupLogging(level string) error {
	l, err := config.ParseLogLevel(level)
	if err != nil {
		return err
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})
	slog.SetDefault(slog.New(handler))
	return nil
}
