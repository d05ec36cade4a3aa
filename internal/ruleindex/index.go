// Package ruleindex maintains a Bleve full-text index over the dataset rows
// so rules can be looked up by title, visitor source or class names.
package ruleindex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/sha1n/text-to-visitor/internal/domain"
	"github.com/sha1n/text-to-visitor/internal/javasrc"
)

const (
	// IndexDirname is the Bleve index directory inside the index dir
	IndexDirname = "rules.bleve"

	// LockFilename guards rebuilds of the index dir
	LockFilename = "index.lock"

	// MaxBatchSize is the maximum number of documents per batch
	MaxBatchSize = 100

	// MaxBatchBytes is the maximum visitor source bytes per batch (10MB)
	MaxBatchBytes = 10 * 1024 * 1024
)

// ErrIndexNotFound indicates the index directory holds no rule index.
var ErrIndexNotFound = errors.New("rule index not found")

// Index manages the rule index stored under a directory.
type Index struct {
	dir         string
	lockTimeout time.Duration
	logger      *slog.Logger
}

// NewIndex creates an index rooted at dir.
func NewIndex(dir string, lockTimeout time.Duration, logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.Default()
	}
	return &Index{
		dir:         dir,
		lockTimeout: lockTimeout,
		logger:      logger,
	}
}

// Dir returns the index directory.
func (i *Index) Dir() string {
	return i.dir
}

func (i *Index) indexPath() string {
	return filepath.Join(i.dir, IndexDirname)
}

// ManifestPath returns the path of the manifest describing the index.
func (i *Index) ManifestPath() string {
	return filepath.Join(i.dir, ManifestFilename)
}

// CreateIndexMapping creates the Bleve index mapping for rule documents.
func CreateIndexMapping() mapping.IndexMapping {
	docMapping := bleve.NewDocumentMapping()

	// Free text fields
	for _, name := range []string{domain.RuleFieldNLQuery, domain.RuleFieldJavaVisitor} {
		field := bleve.NewTextFieldMapping()
		field.Analyzer = standard.Name
		field.Store = true
		field.IncludeTermVectors = true
		docMapping.AddFieldMappingsAt(name, field)
	}

	// Exact match fields
	for _, name := range []string{domain.RuleFieldID, domain.RuleFieldType, domain.RuleFieldVisitorClass, domain.RuleFieldSuperClass} {
		field := bleve.NewTextFieldMapping()
		field.Analyzer = keyword.Name
		field.Store = true
		docMapping.AddFieldMappingsAt(name, field)
	}

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = standard.Name
	return indexMapping
}

// Exists reports whether an index has been built in the directory.
func (i *Index) Exists() bool {
	_, err := os.Stat(i.indexPath())
	return err == nil
}

// Rebuild replaces the index with one built from rows and writes the
// manifest. Concurrent rebuilds of the same directory are serialized by the
// index lock. It returns the number of indexed documents.
func (i *Index) Rebuild(ctx context.Context, rows []domain.DatasetRow, manifest *Manifest) (count int, err error) {
	lock := NewFileLock(filepath.Join(i.dir, LockFilename))
	if err := lock.Lock(ctx, i.lockTimeout); err != nil {
		return 0, err
	}
	defer func() {
		if uerr := lock.Unlock(); uerr != nil && err == nil {
			err = uerr
		}
	}()

	tempPath := i.indexPath() + ".tmp"
	if err := os.RemoveAll(tempPath); err != nil {
		return 0, fmt.Errorf("failed to clear temp index: %w", err)
	}

	count, err = i.build(ctx, tempPath, rows)
	if err != nil {
		_ = os.RemoveAll(tempPath)
		return count, err
	}

	if err := os.RemoveAll(i.indexPath()); err != nil {
		_ = os.RemoveAll(tempPath)
		return count, fmt.Errorf("failed to remove previous index: %w", err)
	}
	if err := os.Rename(tempPath, i.indexPath()); err != nil {
		_ = os.RemoveAll(tempPath)
		return count, fmt.Errorf("failed to move index into place: %w", err)
	}

	if manifest != nil {
		manifest.Summary.Indexed = count
		if err := manifest.Save(i.ManifestPath()); err != nil {
			return count, err
		}
	}

	i.logger.Info("Rule index rebuilt", "dir", i.dir, "documents", count)
	return count, nil
}

func (i *Index) build(ctx context.Context, path string, rows []domain.DatasetRow) (count int, err error) {
	index, err := bleve.New(path, CreateIndexMapping())
	if err != nil {
		return 0, fmt.Errorf("failed to create index: %w", err)
	}
	defer func() {
		if cerr := index.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	batch := index.NewBatch()
	batchBytes := 0
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		doc := i.document(ctx, row)
		if err := batch.Index(doc.ID, doc); err != nil {
			return 0, fmt.Errorf("failed to index rule %s: %w", row.RuleID, err)
		}
		batchBytes += len(row.JavaVisitor)

		if batch.Size() >= MaxBatchSize || batchBytes >= MaxBatchBytes {
			if err := index.Batch(batch); err != nil {
				return 0, fmt.Errorf("batch index failed: %w", err)
			}
			batch.Reset()
			batchBytes = 0
		}
	}

	if batch.Size() > 0 {
		if err := index.Batch(batch); err != nil {
			return 0, fmt.Errorf("final batch index failed: %w", err)
		}
	}

	// Rows sharing a rule ID replace each other, so the count comes from the index.
	docs, err := index.DocCount()
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return int(docs), nil
}

// document derives the index form of a row. Visitors that do not parse are
// still indexed, without class names.
func (i *Index) document(ctx context.Context, row domain.DatasetRow) domain.RuleDocument {
	outline, err := javasrc.Outline(ctx, []byte(row.JavaVisitor))
	if err != nil {
		i.logger.Debug("Failed to outline visitor", "rule", row.RuleID, "error", err)
	}
	return domain.NewRuleDocument(row, outline.Name, outline.SuperClass)
}

// OpenSearcher opens the index for reading.
func (i *Index) OpenSearcher(maxResults int) (*Searcher, error) {
	if !i.Exists() {
		return nil, fmt.Errorf("%w in %s", ErrIndexNotFound, i.dir)
	}

	index, err := bleve.OpenUsing(i.indexPath(), map[string]interface{}{"read_only": true})
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	return &Searcher{index: index, maxResults: maxResults}, nil
}

// DocumentCount returns the number of documents in the index.
func (i *Index) DocumentCount() (count uint64, err error) {
	searcher, err := i.OpenSearcher(1)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := searcher.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return searcher.index.DocCount()
}
