package ruleindex

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SearchToolName is the name of the MCP rule search tool.
const SearchToolName = "search_rules"

// RuleSearcher runs rule queries.
type RuleSearcher interface {
	Search(ctx context.Context, text string, filters Filters) (*Result, error)
}

// SearchArgument defines search parameters.
type SearchArgument struct {
	Query    string `json:"query" jsonschema:"Search text matched against rule titles, visitor sources, rule keys and visitor class names"`
	RuleType string `json:"rule_type,omitempty" jsonschema:"Filter by rule type (e.g., BUG, CODE_SMELL, VULNERABILITY)"`
}

// SearchHandler handles the search MCP tool.
type SearchHandler struct {
	searcher RuleSearcher
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(searcher RuleSearcher) *SearchHandler {
	return &SearchHandler{searcher: searcher}
}

// Handle executes the search and returns formatted results.
func (h *SearchHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args SearchArgument) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(args.Query) == "" {
		return errorResult("Query cannot be empty"), nil, nil
	}

	results, err := h.searcher.Search(ctx, args.Query, Filters{RuleType: args.RuleType})
	if err != nil {
		return errorResult(fmt.Sprintf("Search failed: %s", err)), nil, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: FormatMarkdown(results, args.Query)},
		},
	}, nil, nil
}

// FormatMarkdown renders search results for an MCP client.
func FormatMarkdown(results *Result, queryStr string) string {
	if results.Total == 0 {
		return fmt.Sprintf("No rules found for query: %s", queryStr)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d rules for '%s':\n\n", results.Total, queryStr)

	for i, hit := range results.Hits {
		fmt.Fprintf(&sb, "### %d. %s (%s)\n", i+1, hit.RuleID, hit.RuleType)
		fmt.Fprintf(&sb, "%s\n\n", hit.NLQuery)
		if hit.VisitorClass != "" {
			fmt.Fprintf(&sb, "**Visitor**: %s", hit.VisitorClass)
			if hit.SuperClass != "" {
				fmt.Fprintf(&sb, " extends %s", hit.SuperClass)
			}
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "**Score**: %.4f\n\n", hit.Score)

		if len(hit.Fragments) > 0 {
			sb.WriteString("```java\n")
			for _, fragment := range hit.Fragments {
				sb.WriteString(fragment)
				sb.WriteString("\n")
			}
			sb.WriteString("```\n\n")
		}
	}

	if results.Total > uint64(len(results.Hits)) {
		fmt.Fprintf(&sb, "... and %d more rules\n", results.Total-uint64(len(results.Hits)))
	}
	return sb.String()
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
		IsError: true,
	}
}

// GetToolDefinition returns the MCP tool definition.
func (h *SearchHandler) GetToolDefinition() *mcp.Tool {
	return &mcp.Tool{
		Name:        SearchToolName,
		Description: "Search the rule dataset by natural-language title, visitor source, rule key or visitor class",
	}
}

// RegisterSearchTool registers the search tool with an MCP server.
func RegisterSearchTool(server *mcp.Server, searcher RuleSearcher) {
	handler := NewSearchHandler(searcher)
	mcp.AddTool(server, handler.GetToolDefinition(), handler.Handle)
}
