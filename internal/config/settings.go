package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sha1n/text-to-visitor/internal/dataset"
	"github.com/sha1n/text-to-visitor/internal/javasrc"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of all environment variables read by the tool.
const EnvPrefix = "TEXT_TO_VISITOR"

// DefaultOutput is the dataset file name used when none is configured.
const DefaultOutput = "query_to_visitor_dataset.csv"

// PreviewSettings configuration for the console preview
type PreviewSettings struct {
	Enabled bool `mapstructure:"enabled"`
	Width   int  `mapstructure:"width"`
}

// IndexSettings configuration for the rule search index
type IndexSettings struct {
	Dir         string        `mapstructure:"dir"`
	LockTimeout time.Duration `mapstructure:"lock_timeout"`
	MaxResults  int           `mapstructure:"max_results"`
}

// Enabled returns true if an index directory is configured.
func (s IndexSettings) Enabled() bool {
	return s.Dir != ""
}

// Settings application settings
type Settings struct {
	JavaDir     string          `mapstructure:"java_dir"`
	JSONDir     string          `mapstructure:"json_dir"`
	Output      string          `mapstructure:"output"`
	Format      string          `mapstructure:"format"`
	CommentMode string          `mapstructure:"comment_mode"`
	Exclude     []string        `mapstructure:"exclude"`
	LogLevel    string          `mapstructure:"log_level"`
	Preview     PreviewSettings `mapstructure:"preview"`
	Index       IndexSettings   `mapstructure:"index"`
}

// LoadSettings loads settings from environment variables and optional .env file
func LoadSettings() (*Settings, error) {
	return LoadSettingsWithFlags(nil)
}

// LoadSettingsWithFlags loads settings with optional CLI flag overrides.
// Priority: CLI flags > environment variables > .env file > defaults.
// If flags is nil, only env vars and defaults are used.
func LoadSettingsWithFlags(flags *pflag.FlagSet) (*Settings, error) {
	v := viper.New()

	// Default values
	v.SetDefault("java_dir", "")
	v.SetDefault("json_dir", "")
	v.SetDefault("output", DefaultOutput)
	v.SetDefault("format", string(dataset.FormatCSV))
	v.SetDefault("comment_mode", string(javasrc.CommentModeParity))
	v.SetDefault("exclude", []string{})
	v.SetDefault("log_level", "info")
	v.SetDefault("preview.enabled", true)
	v.SetDefault("preview.width", 0)

	// Index defaults
	v.SetDefault("index.dir", "")
	v.SetDefault("index.lock_timeout", 30*time.Second)
	v.SetDefault("index.max_results", 20)

	// Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind specific env vars for nested config
	_ = v.BindEnv("preview.enabled", EnvPrefix+"_PREVIEW_ENABLED")
	_ = v.BindEnv("preview.width", EnvPrefix+"_PREVIEW_WIDTH")
	_ = v.BindEnv("index.dir", EnvPrefix+"_INDEX_DIR")
	_ = v.BindEnv("index.lock_timeout", EnvPrefix+"_INDEX_LOCK_TIMEOUT")
	_ = v.BindEnv("index.max_results", EnvPrefix+"_INDEX_MAX_RESULTS")

	// Bind CLI flags if provided (highest priority)
	if flags != nil {
		bindFlag(v, flags, "java_dir", "java-dir")
		bindFlag(v, flags, "json_dir", "json-dir")
		bindFlag(v, flags, "output", "output")
		bindFlag(v, flags, "format", "format")
		bindFlag(v, flags, "comment_mode", "comment-mode")
		bindFlag(v, flags, "exclude", "exclude")
		bindFlag(v, flags, "log_level", "log-level")
		bindFlag(v, flags, "preview.enabled", "preview")
		bindFlag(v, flags, "preview.width", "preview-width")

		// Index CLI flags
		bindFlag(v, flags, "index.dir", "index-dir")
		bindFlag(v, flags, "index.lock_timeout", "index-lock-timeout")
		bindFlag(v, flags, "index.max_results", "max-results")
	}

	// Helper to look for .env file
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // Ignore error if .env doesn't exist

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, err
	}

	// Handle explicit parsing of exclude patterns if provided via env var as comma-separated string
	excludeEnv := os.Getenv(EnvPrefix + "_EXCLUDE")
	if excludeEnv != "" {
		if len(settings.Exclude) == 0 || (len(settings.Exclude) == 1 && strings.Contains(settings.Exclude[0], ",")) {
			settings.Exclude = strings.Split(excludeEnv, ",")
		}
	}

	// Trim spaces from exclude patterns
	for i := range settings.Exclude {
		settings.Exclude[i] = strings.TrimSpace(settings.Exclude[i])
	}
	settings.Exclude = filterEmptyStrings(settings.Exclude)

	// Expand home directory in paths
	settings.JavaDir = expandHomeDir(settings.JavaDir)
	settings.JSONDir = expandHomeDir(settings.JSONDir)
	settings.Output = expandHomeDir(settings.Output)
	settings.Index.Dir = expandHomeDir(settings.Index.Dir)

	return &settings, nil
}

// bindFlag binds a flag to a key if the flag set defines it. Subcommands only
// register the flags they use.
func bindFlag(v *viper.Viper, flags *pflag.FlagSet, key, name string) {
	if flag := flags.Lookup(name); flag != nil {
		_ = v.BindPFlag(key, flag)
	}
}

// expandHomeDir expands ~ to the user's home directory
func expandHomeDir(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home
	}
	return path
}

// filterEmptyStrings removes empty strings from a slice
func filterEmptyStrings(s []string) []string {
	var result []string
	for _, str := range s {
		if str != "" {
			result = append(result, str)
		}
	}
	return result
}

// ParseLogLevel maps a level name to a slog level. Empty means info.
func ParseLogLevel(level string) (slog.Level, error) {
	if level == "" {
		return slog.LevelInfo, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log-level: %s", level)
	}
	return l, nil
}

// ValidateSettings checks the settings of a dataset extraction run.
// Input directories must exist before any processing starts.
func ValidateSettings(s *Settings) error {
	if err := validateInputDir("java-dir", s.JavaDir); err != nil {
		return err
	}
	if err := validateInputDir("json-dir", s.JSONDir); err != nil {
		return err
	}

	if strings.TrimSpace(s.Output) == "" {
		return errors.New("output cannot be empty")
	}
	if info, err := os.Stat(s.Output); err == nil && info.IsDir() {
		return errors.New("output must be a file, got directory: " + s.Output)
	}

	if _, err := dataset.ParseFormat(s.Format); err != nil {
		return errors.New("format must be one of csv, jsonl or parquet, got: " + s.Format)
	}
	if _, err := javasrc.ParseCommentMode(s.CommentMode); err != nil {
		return errors.New("comment-mode must be 'parity' or 'lexical', got: " + s.CommentMode)
	}
	if _, err := ParseLogLevel(s.LogLevel); err != nil {
		return err
	}

	if s.Preview.Width < 0 {
		return errors.New("preview-width cannot be negative")
	}

	if s.Index.Enabled() {
		return ValidateIndexSettings(s)
	}
	return nil
}

// ValidateIndexSettings checks the settings used by the search and serve
// commands, which read an existing index only.
func ValidateIndexSettings(s *Settings) error {
	if s.Index.Dir == "" {
		return errors.New("index-dir cannot be empty")
	}
	if s.Index.LockTimeout <= 0 {
		return errors.New("index-lock-timeout must be positive")
	}
	if s.Index.MaxResults <= 0 {
		return errors.New("max-results must be positive")
	}
	if _, err := ParseLogLevel(s.LogLevel); err != nil {
		return err
	}
	return nil
}

// validateInputDir checks that a required input path is an existing directory
func validateInputDir(name, path string) error {
	if path == "" {
		return errors.New(name + " is required")
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if !info.IsDir() {
		return errors.New(name + " must be a directory: " + path)
	}
	return nil
}
