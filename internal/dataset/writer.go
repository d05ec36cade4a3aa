package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/sha1n/text-to-visitor/internal/domain"
)

// parquetRow is the Parquet schema of a dataset row.
type parquetRow struct {
	RuleID      string `parquet:"rule_id,snappy"`
	RuleType    string `parquet:"rule_type,snappy"`
	NLQuery     string `parquet:"nl_query,snappy"`
	JavaVisitor string `parquet:"java_visitor,snappy"`
}

// WriteFile serializes the table to path in the given format.
// The file is written to a temporary name and renamed into place, so a failed
// run never leaves a partial dataset behind.
func WriteFile(table *Table, path string, format Format) error {
	var writer func(io.Writer) error
	switch format {
	case FormatCSV:
		writer = func(w io.Writer) error { return WriteCSV(w, table) }
	case FormatJSONL:
		writer = func(w io.Writer) error { return WriteJSONL(w, table) }
	case FormatParquet:
		writer = func(w io.Writer) error { return WriteParquet(w, table) }
	default:
		return fmt.Errorf("unknown output format: %q", format)
	}

	return writeAtomic(path, writer)
}

// writeAtomic handles opening a temp file next to path, writing to it and
// renaming it over path.
func writeAtomic(path string, writer func(io.Writer) error) error {
	dir := filepath.Dir(path)
	file, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create output file in %s: %w", dir, err)
	}
	tempPath := file.Name()
	// Clean up temp file on any failure
	defer func() { _ = os.Remove(tempPath) }()

	if err := writer(file); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename output file to %s: %w", path, err)
	}
	return nil
}

// WriteCSV writes a header row followed by one record per row.
// Fields containing commas, quotes or newlines are quoted with embedded
// quotes doubled.
func WriteCSV(w io.Writer, table *Table) error {
	csvWriter := csv.NewWriter(w)

	if err := csvWriter.Write(table.Columns()); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, record := range table.Records() {
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// WriteJSONL writes one JSON object per line, keyed by column name.
func WriteJSONL(w io.Writer, table *Table) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	for _, row := range table.Rows() {
		if err := encoder.Encode(row); err != nil {
			return fmt.Errorf("failed to encode JSON row %s: %w", row.RuleID, err)
		}
	}
	return nil
}

// WriteParquet writes the rows with the parquetRow schema.
func WriteParquet(w io.Writer, table *Table) error {
	rows := make([]parquetRow, 0, table.Len())
	for _, row := range table.Rows() {
		rows = append(rows, toParquetRow(row))
	}

	writer := parquet.NewGenericWriter[parquetRow](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

func toParquetRow(row domain.DatasetRow) parquetRow {
	return parquetRow{
		RuleID:      row.RuleID,
		RuleType:    row.RuleType,
		NLQuery:     row.NLQuery,
		JavaVisitor: row.JavaVisitor,
	}
}
