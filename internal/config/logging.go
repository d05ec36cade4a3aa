package config

import (
	"context"
	"log/slog"
	"strings"
)

// Log logs the resolved settings in a granular way, skipping irrelevant ones
func Log(s *Settings) {
	LogWithLogger(s, slog.Default())
}

// LogWithLogger logs the resolved settings using the provided logger
func LogWithLogger(s *Settings, logger *slog.Logger) {
	ctx := context.Background()
	logger.InfoContext(ctx, "Config: java_dir", "value", s.JavaDir)
	logger.InfoContext(ctx, "Config: json_dir", "value", s.JSONDir)
	logger.InfoContext(ctx, "Config: output", "value", s.Output)
	logger.InfoContext(ctx, "Config: format", "value", s.Format)
	logger.InfoContext(ctx, "Config: comment_mode", "value", s.CommentMode)
	if len(s.Exclude) > 0 {
		logger.InfoContext(ctx, "Config: exclude", "value", strings.Join(s.Exclude, ","))
	}

	logger.InfoContext(ctx, "Config: preview.enabled", "value", s.Preview.Enabled)
	if s.Preview.Enabled && s.Preview.Width > 0 {
		logger.InfoContext(ctx, "Config: preview.width", "value", s.Preview.Width)
	}

	if s.Index.Enabled() {
		LogIndexWithLogger(s, logger)
	}
}

// LogIndexWithLogger logs the index settings only
func LogIndexWithLogger(s *Settings, logger *slog.Logger) {
	ctx := context.Background()
	logger.InfoContext(ctx, "Config: index.dir", "value", s.Index.Dir)
	logger.InfoContext(ctx, "Config: index.lock_timeout", "value", s.Index.LockTimeout)
	logger.InfoContext(ctx, "Config: index.max_results", "value", s.Index.MaxResults)
}

// SettingsLogValue returns a slog.Value for Settings
func SettingsLogValue(s Settings) slog.Value {
	return slog.GroupValue(
		slog.String("java_dir", s.JavaDir),
		slog.String("json_dir", s.JSONDir),
		slog.String("output", s.Output),
		slog.String("format", s.Format),
		slog.String("comment_mode", s.CommentMode),
		slog.Any("exclude", s.Exclude),
		slog.Group("index",
			slog.String("dir", s.Index.Dir),
			slog.Duration("lock_timeout", s.Index.LockTimeout),
			slog.Int("max_results", s.Index.MaxResults),
		),
	)
}
