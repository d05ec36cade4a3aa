package dataset

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/sha1n/text-to-visitor/internal/domain"
)

// Emitter builds the dataset table, previews it and writes it out.
type Emitter struct {
	Stdout  io.Writer
	Preview *PreviewOptions
	Format  Format
}

// NewEmitter creates an emitter writing console output to stdout.
// A nil preview disables the preview.
func NewEmitter(format Format, preview *PreviewOptions) *Emitter {
	return &Emitter{
		Stdout:  os.Stdout,
		Preview: preview,
		Format:  format,
	}
}

// Emit writes rows to path and reports success on the console.
func (e *Emitter) Emit(rows []domain.DatasetRow, path string) (*Table, error) {
	table := NewTable(rows)

	if e.Preview != nil {
		if err := Preview(e.Stdout, table, *e.Preview); err != nil {
			return nil, fmt.Errorf("failed to render preview: %w", err)
		}
	}

	if err := WriteFile(table, path, e.Format); err != nil {
		return nil, err
	}

	success := color.New(color.FgGreen)
	if _, err := success.Fprintf(e.Stdout, "%s file '%s' has been created successfully.\n", e.Format.Label(), path); err != nil {
		return nil, err
	}
	return table, nil
}
