package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sha1n/text-to-visitor/internal/config"
	"github.com/sha1n/text-to-visitor/internal/domain"
	"github.com/sha1n/text-to-visitor/internal/ruleindex"
	"github.com/spf13/pflag"
)

type fakeSearcher struct {
	result  *ruleindex.Result
	err     error
	query   string
	filters ruleindex.Filters
	closed  bool
}

func (f *fakeSearcher) Search(_ context.Context, text string, filters ruleindex.Filters) (*ruleindex.Result, error) {
	f.query = text
	f.filters = filters
	return f.result, f.err
}

func (f *fakeSearcher) Close() error {
	f.closed = true
	return nil
}

func searchParams(searcher *fakeSearcher, stdout *bytes.Buffer) SearchParams {
	return SearchParams{
		LoadSettings: func(*pflag.FlagSet) (*config.Settings, error) {
			return &config.Settings{LogLevel: "error"}, nil
		},
		ValidSettings: noopValidate,
		OpenSearcher: func(*config.Settings) (Searcher, error) {
			return searcher, nil
		},
		Stdout: stdout,
	}
}

func TestRunSearchWithDeps_PrintsTable(t *testing.T) {
	searcher := &fakeSearcher{result: &ruleindex.Result{
		Total: 2,
		Hits:  []ruleindex.Hit{{RuleID: "S100", RuleType: "CODE_SMELL", NLQuery: "Methods should not be empty", Score: 1.25}},
	}}
	var stdout bytes.Buffer

	err := RunSearchWithDeps(context.Background(), searchParams(searcher, &stdout), nil, []string{"empty", "methods"}, ruleindex.Filters{RuleType: "CODE_SMELL"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if searcher.query != "empty methods" {
		t.Errorf("Expected joined query 'empty methods', got %q", searcher.query)
	}
	if searcher.filters.RuleType != "CODE_SMELL" {
		t.Errorf("Expected rule type filter, got %+v", searcher.filters)
	}
	if !searcher.closed {
		t.Error("Expected searcher to be closed")
	}

	out := stdout.String()
	for _, want := range []string{"S100", "CODE_SMELL", "1.250", "Methods should not be empty", "1 of 2 rules"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}

func TestRunSearchWithDeps_NoResults(t *testing.T) {
	var stdout bytes.Buffer
	searcher := &fakeSearcher{result: &ruleindex.Result{}}

	if err := RunSearchWithDeps(context.Background(), searchParams(searcher, &stdout), nil, []string{"nothing"}, ruleindex.Filters{}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if stdout.String() != "No rules found for query: nothing\n" {
		t.Errorf("Unexpected output: %q", stdout.String())
	}
}

func TestRunSearchWithDeps_Errors(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		mutate         func(p *SearchParams)
		wantErrContain string
	}{
		{
			name:           "empty query",
			args:           []string{" "},
			wantErrContain: "query cannot be empty",
		},
		{
			name: "invalid settings",
			args: []string{"q"},
			mutate: func(p *SearchParams) {
				p.ValidSettings = func(*config.Settings) error { return errors.New("index-dir cannot be empty") }
			},
			wantErrContain: "invalid configuration",
		},
		{
			name: "open failure",
			args: []string{"q"},
			mutate: func(p *SearchParams) {
				p.OpenSearcher = func(*config.Settings) (Searcher, error) { return nil, ruleindex.ErrIndexNotFound }
			},
			wantErrContain: "rule index not found",
		},
		{
			name: "search failure",
			args: []string{"q"},
			mutate: func(p *SearchParams) {
				p.OpenSearcher = func(*config.Settings) (Searcher, error) {
					return &fakeSearcher{err: errors.New("search failed")}, nil
				}
			},
			wantErrContain: "search failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout bytes.Buffer
			params := searchParams(&fakeSearcher{result: &ruleindex.Result{}}, &stdout)
			if tt.mutate != nil {
				tt.mutate(&params)
			}
			err := RunSearchWithDeps(context.Background(), params, nil, tt.args, ruleindex.Filters{})
			if err == nil || !strings.Contains(err.Error(), tt.wantErrContain) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErrContain, err)
			}
		})
	}
}

func TestOpenIndexSearcher(t *testing.T) {
	dir := t.TempDir()
	settings := &config.Settings{Index: config.IndexSettings{Dir: dir, LockTimeout: time.Second, MaxResults: 5}}

	if _, err := OpenIndexSearcher(settings); !errors.Is(err, ruleindex.ErrIndexNotFound) {
		t.Fatalf("Expected ErrIndexNotFound, got %v", err)
	}

	index := ruleindex.NewIndex(dir, time.Second, nil)
	rows := []domain.DatasetRow{{RuleID: "S1", RuleType: "BUG", NLQuery: "Null pointers should not be dereferenced", JavaVisitor: "class NullDereferenceCheck {}"}}
	if _, err := index.Rebuild(context.Background(), rows, nil); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	searcher, err := OpenIndexSearcher(settings)
	if err != nil {
		t.Fatalf("OpenIndexSearcher failed: %v", err)
	}
	defer func() { _ = searcher.Close() }()

	result, err := searcher.Search(context.Background(), "pointers", ruleindex.Filters{})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if result.Total != 1 || result.Hits[0].RuleID != "S1" {
		t.Errorf("Expected S1, got %+v", result)
	}
}
