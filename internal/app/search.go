package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/sha1n/text-to-visitor/internal/config"
	"github.com/sha1n/text-to-visitor/internal/ruleindex"
	"github.com/spf13/pflag"
)

// Searcher is a rule searcher that owns an open index.
type Searcher interface {
	ruleindex.RuleSearcher
	Close() error
}

// SearchParams contains dependencies for the search command
type SearchParams struct {
	LoadSettings  func(*pflag.FlagSet) (*config.Settings, error)
	ValidSettings func(*config.Settings) error
	OpenSearcher  func(*config.Settings) (Searcher, error)
	Stdout        io.Writer
}

// DefaultSearchParams returns production dependencies
func DefaultSearchParams() SearchParams {
	return SearchParams{
		LoadSettings:  config.LoadSettingsWithFlags,
		ValidSettings: config.ValidateIndexSettings,
		OpenSearcher:  OpenIndexSearcher,
		Stdout:        os.Stdout,
	}
}

// OpenIndexSearcher opens the rule index configured in settings
func OpenIndexSearcher(settings *config.Settings) (Searcher, error) {
	index := ruleindex.NewIndex(settings.Index.Dir, settings.Index.LockTimeout, slog.Default())
	searcher, err := index.OpenSearcher(settings.Index.MaxResults)
	if err != nil {
		return nil, err
	}
	return searcher, nil
}

// RunSearchWithDeps queries the rule index and prints the hits as a table
func RunSearchWithDeps(ctx context.Context, params SearchParams, flags *pflag.FlagSet, args []string, filters ruleindex.Filters) (err error) {
	queryStr := strings.TrimSpace(strings.Join(args, " "))
	if queryStr == "" {
		return errors.New("query cannot be empty")
	}

	settings, err := params.LoadSettings(flags)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if err := params.ValidSettings(settings); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := setupLogging(settings.LogLevel); err != nil {
		return err
	}

	searcher, err := params.OpenSearcher(settings)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := searcher.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	result, err := searcher.Search(ctx, queryStr, filters)
	if err != nil {
		return err
	}
	return printSearchResult(params.Stdout, result, queryStr)
}

func printSearchResult(w io.Writer, result *ruleindex.Result, queryStr string) error {
	if result.Total == 0 {
		_, err := fmt.Fprintf(w, "No rules found for query: %s\n", queryStr)
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rule ID", "Rule Type", "Score", "NL Query"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	var data [][]string
	for _, hit := range result.Hits {
		data = append(data, []string{hit.RuleID, hit.RuleType, fmt.Sprintf("%.3f", hit.Score), hit.NLQuery})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := color.New(color.FgCyan).Fprintf(w, "%d of %d rules\n", len(result.Hits), result.Total)
	return err
}
