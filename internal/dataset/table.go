// Package dataset builds the query-to-visitor table and serializes it.
package dataset

import (
	"fmt"
	"strings"

	"github.com/sha1n/text-to-visitor/internal/domain"
)

// Table is the in-memory dataset. Row order and column order are preserved
// exactly as given.
type Table struct {
	columns []string
	rows    []domain.DatasetRow
}

// NewTable creates a table with the fixed dataset columns.
func NewTable(rows []domain.DatasetRow) *Table {
	return &Table{
		columns: domain.Columns,
		rows:    rows,
	}
}

// Columns returns the column names in output order.
func (t *Table) Columns() []string {
	return t.columns
}

// Rows returns the dataset rows.
func (t *Table) Rows() []domain.DatasetRow {
	return t.rows
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Records returns the rows as string slices in column order.
func (t *Table) Records() [][]string {
	records := make([][]string, len(t.rows))
	for i, row := range t.rows {
		records[i] = row.Values()
	}
	return records
}

// Shape returns the "[N rows x M columns]" summary line.
func (t *Table) Shape() string {
	return fmt.Sprintf("[%d rows x %d columns]", len(t.rows), len(t.columns))
}

// Format is an output serialization format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatJSONL   Format = "jsonl"
	FormatParquet Format = "parquet"
)

// Formats lists the supported output formats.
var Formats = []Format{FormatCSV, FormatJSONL, FormatParquet}

// ParseFormat validates a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if strings.EqualFold(string(f), s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format: %q", s)
}

// Label returns the display name of the format, e.g. "CSV".
func (f Format) Label() string {
	return strings.ToUpper(string(f))
}
