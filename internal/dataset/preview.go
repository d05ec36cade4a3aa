package dataset

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/term"
)

const (
	// DefaultPreviewMaxRows is the row count above which the preview is elided.
	DefaultPreviewMaxRows = 60

	// DefaultPreviewEdgeRows is the number of rows shown at each end of an
	// elided preview.
	DefaultPreviewEdgeRows = 5

	defaultTerminalWidth = 80
	minCellWidth         = 8
	ellipsis             = "..."
)

// PreviewOptions controls the console rendering of a table.
type PreviewOptions struct {
	// Width is the total width to fit the table into. Zero means detect the
	// terminal width.
	Width    int
	MaxRows  int
	EdgeRows int
}

// DefaultPreviewOptions returns options with terminal width detection.
func DefaultPreviewOptions() PreviewOptions {
	return PreviewOptions{
		MaxRows:  DefaultPreviewMaxRows,
		EdgeRows: DefaultPreviewEdgeRows,
	}
}

// TerminalWidth returns override when positive, otherwise the stdout terminal
// width, falling back to 80 columns.
func TerminalWidth(override int) int {
	if override > 0 {
		return override
	}
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return defaultTerminalWidth
	}
	return width
}

// Preview renders a condensed view of the table: one line per row, cells
// truncated to fit the width, and only the head and tail of long tables.
func Preview(w io.Writer, table *Table, opts PreviewOptions) error {
	if table.Len() == 0 {
		_, err := fmt.Fprintf(w, "Empty dataset\nColumns: [%s]\n", strings.Join(table.Columns(), ", "))
		return err
	}

	indexWidth := len(strconv.Itoa(table.Len())) + 3
	// Each column costs 3 characters of padding and border.
	cellWidth := (TerminalWidth(opts.Width) - indexWidth) / len(table.Columns())
	cellWidth = max(cellWidth-3, minCellWidth)

	tbl := tablewriter.NewWriter(w)
	tbl.Header(append([]string{""}, table.Columns()...))
	tbl.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	var data [][]string
	for _, i := range previewIndexes(table.Len(), opts) {
		if i < 0 {
			data = append(data, ellipsisRow(len(table.Columns())+1))
			continue
		}
		row := []string{strconv.Itoa(i)}
		for _, value := range table.Rows()[i].Values() {
			row = append(row, truncateCell(value, cellWidth))
		}
		data = append(data, row)
	}

	if err := tbl.Bulk(data); err != nil {
		return err
	}
	if err := tbl.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\n%s\n", table.Shape())
	return err
}

// previewIndexes returns the row indexes to render, with -1 marking the
// elided middle.
func previewIndexes(n int, opts PreviewOptions) []int {
	maxRows := opts.MaxRows
	if maxRows <= 0 {
		maxRows = DefaultPreviewMaxRows
	}
	edge := opts.EdgeRows
	if edge <= 0 {
		edge = DefaultPreviewEdgeRows
	}

	if n <= maxRows || 2*edge >= n {
		indexes := make([]int, n)
		for i := range n {
			indexes[i] = i
		}
		return indexes
	}

	indexes := make([]int, 0, 2*edge+1)
	for i := range edge {
		indexes = append(indexes, i)
	}
	indexes = append(indexes, -1)
	for i := n - edge; i < n; i++ {
		indexes = append(indexes, i)
	}
	return indexes
}

// truncateCell flattens newlines and tabs to their escaped form and cuts the
// value to width runes.
func truncateCell(value string, width int) string {
	value = strings.NewReplacer("\n", `\n`, "\t", `\t`).Replace(value)
	runes := []rune(value)
	if len(runes) <= width {
		return value
	}
	return string(runes[:width-len(ellipsis)]) + ellipsis
}

func ellipsisRow(columns int) []string {
	row := make([]string, columns)
	for i := range row {
		row[i] = ellipsis
	}
	return row
}
