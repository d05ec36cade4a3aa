package domain

// RuleDocument represents a dataset row stored in the Bleve rule index.
type RuleDocument struct {
	// ID is the rule key, also used as the Bleve document ID.
	ID string `json:"rule_id"`

	// RuleType is the rule category, e.g. "BUG" or "CODE_SMELL".
	RuleType string `json:"rule_type"`

	// NLQuery is the natural-language rule title.
	NLQuery string `json:"nl_query"`

	// JavaVisitor is the cleaned visitor source.
	JavaVisitor string `json:"java_visitor"`

	// VisitorClass is the first top-level class declared in the visitor.
	VisitorClass string `json:"visitor_class"`

	// SuperClass is the class the visitor extends, if any.
	// Example: "IssuableSubscriptionVisitor"
	SuperClass string `json:"super_class"`
}

// Bleve field name constants for consistent field references in queries and mappings.
const (
	RuleFieldID           = "rule_id"
	RuleFieldType         = "rule_type"
	RuleFieldNLQuery      = "nl_query"
	RuleFieldJavaVisitor  = "java_visitor"
	RuleFieldVisitorClass = "visitor_class"
	RuleFieldSuperClass   = "super_class"
)

// NewRuleDocument creates the index form of a dataset row.
func NewRuleDocument(row DatasetRow, visitorClass, superClass string) RuleDocument {
	return RuleDocument{
		ID:           row.RuleID,
		RuleType:     row.RuleType,
		NLQuery:      row.NLQuery,
		JavaVisitor:  row.JavaVisitor,
		VisitorClass: visitorClass,
		SuperClass:   superClass,
	}
}
