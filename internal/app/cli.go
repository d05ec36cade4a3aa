package app

import (
	"time"

	"github.com/sha1n/text-to-visitor/internal/config"
	"github.com/spf13/pflag"
)

// RegisterFlags registers the dataset extraction flags on the given FlagSet
func RegisterFlags(flags *pflag.FlagSet) {
	flags.StringP("java-dir", "j", "", "Directory containing the Java visitor sources")
	flags.StringP("json-dir", "r", "", "Directory containing the JSON rule metadata")
	flags.StringP("output", "o", config.DefaultOutput, "Dataset output file")
	flags.StringP("format", "f", "csv", "Output format: csv, jsonl or parquet")
	flags.String("comment-mode", "parity", "Block comment stripping: parity or lexical")
	flags.StringSlice("exclude", nil, "Glob patterns of files to skip in both trees (comma-separated)")
	flags.Bool("preview", true, "Print a preview of the dataset")
	flags.Int("preview-width", 0, "Preview width in columns (0 detects the terminal width)")
	RegisterIndexFlags(flags)
}

// RegisterIndexFlags registers the rule index flags on the given FlagSet
func RegisterIndexFlags(flags *pflag.FlagSet) {
	flags.String("index-dir", "", "Rule index directory (empty disables indexing)")
	flags.Duration("index-lock-timeout", 30*time.Second, "Maximum time to wait for the index lock")
	flags.Int("max-results", 20, "Maximum number of search results")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
}
