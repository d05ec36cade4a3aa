package collect

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// File extensions of the two input trees.
const (
	JavaExtension = ".java"
	JSONExtension = ".json"
)

// FileFilter determines which files of an input tree take part in a walk.
type FileFilter struct {
	extension string
	patterns  []string
}

// NewFileFilter creates a filter accepting files with the given extension.
// Exclude patterns use doublestar syntax and are matched against the path
// relative to the walk root and against the base name.
func NewFileFilter(extension string, excludePatterns []string) (*FileFilter, error) {
	for _, p := range excludePatterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid exclude pattern: %q", p)
		}
	}
	return &FileFilter{
		extension: extension,
		patterns:  excludePatterns,
	}, nil
}

// Extension returns the accepted file extension, including the leading dot.
func (f *FileFilter) Extension() string {
	return f.extension
}

// Accepts returns true if relPath has the filter's extension and is not excluded.
func (f *FileFilter) Accepts(relPath string) bool {
	return strings.HasSuffix(relPath, f.extension) && !f.ShouldExclude(relPath)
}

// ShouldExclude returns true if the given path matches any exclusion pattern.
func (f *FileFilter) ShouldExclude(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	base := filepath.Base(relPath)

	for _, pattern := range f.patterns {
		if doublestar.MatchUnvalidated(pattern, relPath) || doublestar.MatchUnvalidated(pattern, base) {
			return true
		}
	}
	return false
}

// Stem returns the base name of path without its final extension.
// "rules/S100.json" becomes "S100", "a/S1.v2.json" becomes "S1.v2".
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
