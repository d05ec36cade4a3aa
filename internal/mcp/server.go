package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sha1n/text-to-visitor/internal/ruleindex"
)

// ServerConfig contains configuration for creating an MCP server
type ServerConfig struct {
	Name     string
	Version  string
	Searcher ruleindex.RuleSearcher
}

// CreateServer creates and configures the MCP server
func CreateServer(cfg ServerConfig) *mcp.Server {
	s := mcp.NewServer(&mcp.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, nil)

	if cfg.Searcher != nil {
		ruleindex.RegisterSearchTool(s, cfg.Searcher)
	}

	return s
}
