package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sha1n/text-to-visitor/internal/ruleindex"
)

type stubSearcher struct {
	result *ruleindex.Result
}

func (s *stubSearcher) Search(_ context.Context, _ string, _ ruleindex.Filters) (*ruleindex.Result, error) {
	return s.result, nil
}

func TestCreateServer(t *testing.T) {
	server := CreateServer(ServerConfig{Name: "test-server", Version: "1.0.0"})
	if server == nil {
		t.Fatal("Expected server to be created")
	}
}

func TestCreateServer_EmptyConfig(t *testing.T) {
	server := CreateServer(ServerConfig{})
	if server == nil {
		t.Fatal("Expected server to be created even with empty config")
	}
}

func TestCreateServer_WithSearcher(t *testing.T) {
	searcher := &stubSearcher{result: &ruleindex.Result{
		Total: 1,
		Hits:  []ruleindex.Hit{{RuleID: "S100", RuleType: "CODE_SMELL", NLQuery: "Do the thing"}},
	}}
	server := CreateServer(ServerConfig{Name: "text-to-visitor", Version: "1.0.0", Searcher: searcher})

	ctx := context.Background()
	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("Failed to connect server: %v", err)
	}
	defer func() { _ = serverSession.Close() }()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("Failed to connect client: %v", err)
	}
	defer func() { _ = session.Close() }()

	tools, err := session.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("ListTools failed: %v", err)
	}
	if len(tools.Tools) != 1 || tools.Tools[0].Name != ruleindex.SearchToolName {
		t.Fatalf("Expected only the %s tool, got %v", ruleindex.SearchToolName, tools.Tools)
	}

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      ruleindex.SearchToolName,
		Arguments: map[string]any{"query": "thing"},
	})
	if err != nil {
		t.Fatalf("CallTool failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("Expected successful result, got %v", result.Content)
	}
	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("Expected text content, got %T", result.Content[0])
	}
	if !strings.Contains(text.Text, "S100") {
		t.Errorf("Expected rule S100 in result, got: %s", text.Text)
	}
}
