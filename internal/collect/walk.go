package collect

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// walkFiles calls fn for every file below root accepted by filter, in lexical
// order. Any traversal error aborts the walk.
func walkFiles(ctx context.Context, root string, filter *FileFilter, fn func(path string) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to walk %s: %w", path, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", path, err)
		}

		if d.IsDir() {
			if relPath != "." && filter.ShouldExclude(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if !filter.Accepts(relPath) {
			return nil
		}

		// Symlinks are followed for files only; a link to a directory is not a source file.
		if d.Type()&fs.ModeSymlink != 0 {
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("failed to stat %s: %w", path, err)
			}
			if info.IsDir() {
				return nil
			}
		}

		return fn(path)
	})
}
