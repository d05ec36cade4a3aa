// Package pipeline runs the dataset extraction end to end: collect visitor
// sources, join them with rule metadata, emit the dataset and optionally
// rebuild the rule index.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/sha1n/text-to-visitor/internal/collect"
	"github.com/sha1n/text-to-visitor/internal/config"
	"github.com/sha1n/text-to-visitor/internal/dataset"
	"github.com/sha1n/text-to-visitor/internal/javasrc"
	"github.com/sha1n/text-to-visitor/internal/ruleindex"
)

// Options configures a single run.
type Options struct {
	JavaDir     string
	JSONDir     string
	Output      string
	Format      dataset.Format
	CommentMode javasrc.CommentMode
	Exclude     []string

	// Preview controls the console preview. The zero value detects the
	// terminal width and uses the default row limits.
	Preview        dataset.PreviewOptions
	DisablePreview bool

	// IndexDir is empty when no rule index is maintained.
	IndexDir    string
	LockTimeout time.Duration

	Stdout io.Writer
	Logger *slog.Logger
}

// OptionsFromSettings maps validated settings to run options.
func OptionsFromSettings(s *config.Settings) (Options, error) {
	format, err := dataset.ParseFormat(s.Format)
	if err != nil {
		return Options{}, err
	}
	mode, err := javasrc.ParseCommentMode(s.CommentMode)
	if err != nil {
		return Options{}, err
	}

	opts := Options{
		JavaDir:     s.JavaDir,
		JSONDir:     s.JSONDir,
		Output:      s.Output,
		Format:      format,
		CommentMode: mode,
		Exclude:     s.Exclude,
		IndexDir:    s.Index.Dir,
		LockTimeout: s.Index.LockTimeout,

		Preview:        dataset.DefaultPreviewOptions(),
		DisablePreview: !s.Preview.Enabled,
	}
	opts.Preview.Width = s.Preview.Width
	return opts, nil
}

// Summary counts what a run read, skipped and produced.
type Summary struct {
	JavaFiles               int
	JavaFilesWithoutMarker  int
	DuplicatesOverwritten   int
	Visitors                int
	JSONFiles               int
	UnmatchedJSONFiles      int
	VisitorsWithoutMetadata int
	Rows                    int
	Indexed                 int
}

// LogValue implements slog.LogValuer.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("java_files", s.JavaFiles),
		slog.Int("java_files_without_marker", s.JavaFilesWithoutMarker),
		slog.Int("duplicates_overwritten", s.DuplicatesOverwritten),
		slog.Int("visitors", s.Visitors),
		slog.Int("json_files", s.JSONFiles),
		slog.Int("unmatched_json_files", s.UnmatchedJSONFiles),
		slog.Int("visitors_without_metadata", s.VisitorsWithoutMetadata),
		slog.Int("rows", s.Rows),
	)
}

func (s Summary) manifestSummary() ruleindex.Summary {
	return ruleindex.Summary{
		Rows:                    s.Rows,
		JavaFiles:               s.JavaFiles,
		JavaFilesWithoutMarker:  s.JavaFilesWithoutMarker,
		JSONFiles:               s.JSONFiles,
		UnmatchedJSONFiles:      s.UnmatchedJSONFiles,
		VisitorsWithoutMetadata: s.VisitorsWithoutMetadata,
	}
}

// Run executes the pipeline. Any error aborts the run before the output file
// is replaced, except index failures which happen after the dataset is written.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	collector, err := collect.NewVisitorCollector(opts.Exclude, opts.CommentMode)
	if err != nil {
		return nil, err
	}
	joiner, err := collect.NewMetadataJoiner(opts.Exclude)
	if err != nil {
		return nil, err
	}

	visitors, err := collector.Collect(ctx, opts.JavaDir)
	if err != nil {
		return nil, fmt.Errorf("failed to collect visitors: %w", err)
	}

	joined, err := joiner.Join(ctx, opts.JSONDir, visitors)
	if err != nil {
		return nil, fmt.Errorf("failed to join rule metadata: %w", err)
	}

	vstats := visitors.Stats()
	summary := &Summary{
		JavaFiles:               vstats.FilesScanned,
		JavaFilesWithoutMarker:  vstats.WithoutMarker,
		DuplicatesOverwritten:   vstats.Overwritten,
		Visitors:                visitors.Len(),
		JSONFiles:               joined.Stats.FilesScanned,
		UnmatchedJSONFiles:      joined.Stats.Unmatched,
		VisitorsWithoutMetadata: joined.Stats.VisitorsWithoutMetadata,
		Rows:                    len(joined.Rows),
	}
	logger.Info("Dataset assembled", "summary", summary)

	emitter := &dataset.Emitter{Stdout: stdout, Format: opts.Format}
	if !opts.DisablePreview {
		preview := opts.Preview
		emitter.Preview = &preview
	}
	if _, err := emitter.Emit(joined.Rows, opts.Output); err != nil {
		return nil, fmt.Errorf("failed to write dataset: %w", err)
	}

	if opts.IndexDir == "" {
		return summary, nil
	}

	index := ruleindex.NewIndex(opts.IndexDir, opts.LockTimeout, logger)
	manifest := ruleindex.NewManifest(
		ruleindex.Sources{JavaDir: opts.JavaDir, JSONDir: opts.JSONDir},
		ruleindex.Output{Path: opts.Output, Format: string(opts.Format)},
		summary.manifestSummary(),
	)
	indexed, err := index.Rebuild(ctx, joined.Rows, manifest)
	if err != nil {
		return summary, fmt.Errorf("failed to rebuild rule index: %w", err)
	}
	summary.Indexed = indexed
	return summary, nil
}
