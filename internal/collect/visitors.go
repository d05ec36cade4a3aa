// Package collect walks the visitor and metadata trees and joins them into
// dataset rows.
package collect

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/sha1n/text-to-visitor/internal/domain"
	"github.com/sha1n/text-to-visitor/internal/javasrc"
)

// ErrInvalidEncoding indicates a source file is not valid UTF-8.
var ErrInvalidEncoding = errors.New("invalid UTF-8 encoding")

// VisitorStats counts what the visitor walk saw.
type VisitorStats struct {
	FilesScanned  int
	WithoutMarker int
	Overwritten   int
}

// Visitors maps rule keys to the visitor collected for them.
type Visitors struct {
	records map[string]domain.VisitorRecord
	stats   VisitorStats
}

// NewVisitors creates an empty visitor set.
func NewVisitors() *Visitors {
	return &Visitors{records: make(map[string]domain.VisitorRecord)}
}

// Put stores a record, replacing any earlier record with the same ID.
// Returns true if a record was replaced.
func (v *Visitors) Put(record domain.VisitorRecord) bool {
	_, replaced := v.records[record.ID]
	v.records[record.ID] = record
	return replaced
}

// Get returns the visitor for a rule key.
func (v *Visitors) Get(id string) (domain.VisitorRecord, bool) {
	record, ok := v.records[id]
	return record, ok
}

// Len returns the number of distinct rule keys.
func (v *Visitors) Len() int {
	return len(v.records)
}

// IDs returns the collected rule keys in sorted order.
func (v *Visitors) IDs() []string {
	ids := make([]string, 0, len(v.records))
	for id := range v.records {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Stats returns the walk counters.
func (v *Visitors) Stats() VisitorStats {
	return v.stats
}

// VisitorCollector reads Java visitor files.
type VisitorCollector struct {
	filter      *FileFilter
	commentMode javasrc.CommentMode
}

// NewVisitorCollector creates a collector for .java files.
func NewVisitorCollector(excludePatterns []string, mode javasrc.CommentMode) (*VisitorCollector, error) {
	filter, err := NewFileFilter(JavaExtension, excludePatterns)
	if err != nil {
		return nil, err
	}
	return &VisitorCollector{filter: filter, commentMode: mode}, nil
}

// Collect walks root and returns every visitor carrying a rule annotation.
// Files without the annotation are skipped; any read failure aborts.
func (c *VisitorCollector) Collect(ctx context.Context, root string) (*Visitors, error) {
	visitors := NewVisitors()

	err := walkFiles(ctx, root, c.filter, func(path string) error {
		visitors.stats.FilesScanned++

		content, err := ReadSourceFile(path)
		if err != nil {
			return err
		}

		id, ok := javasrc.ExtractRuleKey(content)
		if !ok {
			visitors.stats.WithoutMarker++
			return nil
		}

		record := domain.VisitorRecord{
			ID:     id,
			Source: javasrc.StripBlockComments(content, c.commentMode),
			Path:   path,
		}
		if visitors.Put(record) {
			visitors.stats.Overwritten++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return visitors, nil
}

// ReadSourceFile reads a UTF-8 text file and normalizes CRLF and CR line
// endings to LF.
func ReadSourceFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("failed to decode %s: %w", path, ErrInvalidEncoding)
	}

	content := string(data)
	if strings.IndexByte(content, '\r') >= 0 {
		content = strings.ReplaceAll(content, "\r\n", "\n")
		content = strings.ReplaceAll(content, "\r", "\n")
	}
	return content, nil
}
