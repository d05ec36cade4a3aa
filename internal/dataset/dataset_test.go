package dataset

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/sha1n/text-to-visitor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRows() []domain.DatasetRow {
	return []domain.DatasetRow{
		{
			RuleID:      "S100",
			RuleType:    "CODE_SMELL",
			NLQuery:     "Do the thing",
			JavaVisitor: "@Rule(key = \"S100\")\npublic class Foo {}",
		},
		{
			RuleID:      "S200",
			RuleType:    "BUG",
			NLQuery:     `Strings should be compared with "equals", not "=="`,
			JavaVisitor: "@Rule(key = \"S200\")\nclass Bar {\n  String s = \"a,b\";\n\tint x;\r\n}",
		},
		{
			RuleID:      "S300",
			RuleType:    "VULNERABILITY",
			NLQuery:     " leading space",
			JavaVisitor: "",
		},
	}
}

func TestParseFormat(t *testing.T) {
	for _, f := range Formats {
		got, err := ParseFormat(string(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}

	got, err := ParseFormat("CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, got)
	assert.Equal(t, "CSV", got.Label())

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestTable(t *testing.T) {
	table := NewTable(sampleRows())

	assert.Equal(t, []string{"Rule ID", "Rule Type", "NL Query", "Java Visitor"}, table.Columns())
	assert.Equal(t, 3, table.Len())
	assert.Equal(t, "[3 rows x 4 columns]", table.Shape())

	records := table.Records()
	require.Len(t, records, 3)
	assert.Equal(t, []string{"S100", "CODE_SMELL", "Do the thing", "@Rule(key = \"S100\")\npublic class Foo {}"}, records[0])
}

func TestWriteCSV_Scenario(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, NewTable(sampleRows()[:1])))

	want := "Rule ID,Rule Type,NL Query,Java Visitor\n" +
		"S100,CODE_SMELL,Do the thing,\"@Rule(key = \"\"S100\"\")\npublic class Foo {}\"\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	rows := sampleRows()
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, NewTable(rows)))

	reader := csv.NewReader(&buf)
	records, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, len(rows)+1)

	assert.Equal(t, domain.Columns, records[0])
	for i, row := range rows {
		want := row.Values()
		// encoding/csv reads \r\n inside quoted fields back as \n
		want[3] = strings.ReplaceAll(want[3], "\r\n", "\n")
		assert.Equal(t, want, records[i+1], "row %d", i)
	}
}

func TestWriteCSV_EmptyTableWritesHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, NewTable(nil)))
	assert.Equal(t, "Rule ID,Rule Type,NL Query,Java Visitor\n", buf.String())
}

func TestWriteJSONL(t *testing.T) {
	rows := sampleRows()
	var buf bytes.Buffer
	require.NoError(t, WriteJSONL(&buf, NewTable(rows)))

	data := buf.String()
	scanner := bufio.NewScanner(strings.NewReader(data))
	var got []domain.DatasetRow
	for scanner.Scan() {
		var row domain.DatasetRow
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &row))
		got = append(got, row)
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, rows, got)

	first := strings.SplitN(data, "\n", 2)[0]
	assert.True(t, strings.HasPrefix(first, `{"Rule ID":"S100","Rule Type":"CODE_SMELL"`), first)
}

func TestWriteFile_Parquet(t *testing.T) {
	rows := sampleRows()
	path := filepath.Join(t.TempDir(), "dataset.parquet")
	require.NoError(t, WriteFile(NewTable(rows), path, FormatParquet))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[parquetRow](file)
	defer func() { _ = reader.Close() }()

	assert.Equal(t, int64(len(rows)), reader.NumRows())
	readRows := make([]parquetRow, len(rows))
	n, err := reader.Read(readRows)
	if err != nil {
		require.Equal(t, len(rows), n, "unexpected read error: %v", err)
	}
	for i, row := range rows {
		assert.Equal(t, toParquetRow(row), readRows[i])
	}
}

func TestWriteFile_Idempotent(t *testing.T) {
	for _, format := range Formats {
		t.Run(string(format), func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "out."+string(format))

			require.NoError(t, WriteFile(NewTable(sampleRows()), path, format))
			first, err := os.ReadFile(path)
			require.NoError(t, err)

			require.NoError(t, WriteFile(NewTable(sampleRows()), path, format))
			second, err := os.ReadFile(path)
			require.NoError(t, err)

			assert.Equal(t, first, second)

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Len(t, entries, 1, "temp files should not be left behind")
		})
	}
}

func TestWriteFile_UnwritableDestination(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.csv")
	err := WriteFile(NewTable(sampleRows()), path, FormatCSV)
	require.Error(t, err)
	assert.Contains(t, err.Error(), filepath.Dir(path))
}

func TestWriteFile_UnknownFormat(t *testing.T) {
	err := WriteFile(NewTable(nil), filepath.Join(t.TempDir(), "out"), Format("xml"))
	assert.Error(t, err)
}

func TestPreview(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Preview(&buf, NewTable(sampleRows()), PreviewOptions{Width: 120}))

	out := buf.String()
	assert.Contains(t, out, "S100")
	assert.Contains(t, out, "CODE_SMELL")
	assert.Contains(t, out, `\n`)
	assert.Contains(t, out, "[3 rows x 4 columns]")
}

func TestPreview_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Preview(&buf, NewTable(nil), DefaultPreviewOptions()))
	assert.Equal(t, "Empty dataset\nColumns: [Rule ID, Rule Type, NL Query, Java Visitor]\n", buf.String())
}

func TestPreview_ElidesLongTables(t *testing.T) {
	var rows []domain.DatasetRow
	for i := range 100 {
		rows = append(rows, domain.DatasetRow{RuleID: fmt.Sprintf("S%d", 1000+i), RuleType: "BUG"})
	}

	var buf bytes.Buffer
	require.NoError(t, Preview(&buf, NewTable(rows), PreviewOptions{Width: 100}))

	out := buf.String()
	assert.Contains(t, out, "S1000")
	assert.Contains(t, out, "S1004")
	assert.NotContains(t, out, "S1005")
	assert.NotContains(t, out, "S1094")
	assert.Contains(t, out, "S1095")
	assert.Contains(t, out, "S1099")
	assert.Contains(t, out, "[100 rows x 4 columns]")
}

func TestPreviewIndexes(t *testing.T) {
	opts := DefaultPreviewOptions()
	assert.Equal(t, []int{0, 1, 2}, previewIndexes(3, opts))
	assert.Len(t, previewIndexes(60, opts), 60)
	assert.Equal(t, []int{0, 1, 2, 3, 4, -1, 56, 57, 58, 59, 60}, previewIndexes(61, opts))
}

func TestTruncateCell(t *testing.T) {
	assert.Equal(t, "short", truncateCell("short", 10))
	assert.Equal(t, `a\nb`, truncateCell("a\nb", 10))
	assert.Equal(t, "abcde...", truncateCell("abcdefghijk", 8))
	assert.Equal(t, "héllo w...", truncateCell("héllo wörld!", 10))
}

func TestTerminalWidth_Override(t *testing.T) {
	assert.Equal(t, 132, TerminalWidth(132))
	assert.Positive(t, TerminalWidth(0))
}

func TestEmitter_Emit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "query_to_visitor_dataset.csv")
	var out bytes.Buffer
	emitter := &Emitter{Stdout: &out, Preview: &PreviewOptions{Width: 100}, Format: FormatCSV}

	table, err := emitter.Emit(sampleRows(), path)
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())

	assert.Contains(t, out.String(), "[3 rows x 4 columns]")
	assert.Contains(t, out.String(), fmt.Sprintf("CSV file '%s' has been created successfully.", path))

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestEmitter_NoPreview(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	var out bytes.Buffer
	emitter := NewEmitter(FormatJSONL, nil)
	emitter.Stdout = &out

	_, err := emitter.Emit(sampleRows(), path)
	require.NoError(t, err)
	assert.NotContains(t, out.String(), "rows x")
	assert.Contains(t, out.String(), "JSONL file")
}
