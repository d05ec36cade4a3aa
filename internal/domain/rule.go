package domain

// VisitorRecord is a Java rule visitor collected from the visitors tree.
type VisitorRecord struct {
	// ID is the rule key taken from the @Rule annotation.
	// Example: "S1234"
	ID string

	// Source is the full file content with block comments stripped.
	Source string

	// Path is the file the record was read from.
	Path string
}

// RuleMetadata is the sidecar JSON description of a rule.
type RuleMetadata struct {
	// ID is the JSON file base name without its extension. It is not
	// validated against the rule key format.
	ID string

	// Type is the value of the "type" field, e.g. "CODE_SMELL".
	Type string

	// Title is the value of the "title" field, the natural-language query.
	Title string

	// Path is the file the metadata was read from.
	Path string
}

// DatasetRow is one joined training example.
type DatasetRow struct {
	RuleID      string `json:"Rule ID"`
	RuleType    string `json:"Rule Type"`
	NLQuery     string `json:"NL Query"`
	JavaVisitor string `json:"Java Visitor"`
}

// Dataset column names, in output order.
const (
	ColumnRuleID      = "Rule ID"
	ColumnRuleType    = "Rule Type"
	ColumnNLQuery     = "NL Query"
	ColumnJavaVisitor = "Java Visitor"
)

// Columns is the fixed column order of every emitted dataset.
var Columns = []string{ColumnRuleID, ColumnRuleType, ColumnNLQuery, ColumnJavaVisitor}

// Values returns the row fields in Columns order.
func (r DatasetRow) Values() []string {
	return []string{r.RuleID, r.RuleType, r.NLQuery, r.JavaVisitor}
}

// NewDatasetRow joins a visitor with its metadata.
func NewDatasetRow(meta RuleMetadata, visitor VisitorRecord) DatasetRow {
	return DatasetRow{
		RuleID:      meta.ID,
		RuleType:    meta.Type,
		NLQuery:     meta.Title,
		JavaVisitor: visitor.Source,
	}
}
