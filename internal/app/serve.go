package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sha1n/text-to-visitor/internal/config"
	mcputil "github.com/sha1n/text-to-visitor/internal/mcp"
	"github.com/spf13/pflag"
)

// ServeParams contains dependencies for the serve command
type ServeParams struct {
	LoadSettings      func(*pflag.FlagSet) (*config.Settings, error)
	ValidSettings     func(*config.Settings) error
	CreateServer      func(*config.Settings, string) (*mcp.Server, func(), error)
	CustomIOTransport mcp.Transport // Optional: for testing with custom IO
}

// DefaultServeParams returns production dependencies
func DefaultServeParams() ServeParams {
	return ServeParams{
		LoadSettings:  config.LoadSettingsWithFlags,
		ValidSettings: config.ValidateIndexSettings,
		CreateServer:  CreateMCPServer,
	}
}

// RunServeWithDeps serves the rule index over MCP stdio
func RunServeWithDeps(ctx context.Context, params ServeParams, flags *pflag.FlagSet, version string) error {
	settings, err := params.LoadSettings(flags)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if err := params.ValidSettings(settings); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := setupLogging(settings.LogLevel); err != nil {
		return err
	}

	slog.Info("Starting MCP rule search server", "version", version)
	config.LogIndexWithLogger(settings, slog.Default())

	mcpServer, cleanup, err := params.CreateServer(settings, version)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}

	// Use custom transport if provided (for testing), otherwise use stdio
	transport := params.CustomIOTransport
	if transport == nil {
		transport = &mcp.StdioTransport{}
	}
	return mcpServer.Run(ctx, transport)
}

// CreateMCPServer opens the rule index and creates the MCP server with the
// search tool registered. The cleanup function closes the index.
func CreateMCPServer(settings *config.Settings, version string) (*mcp.Server, func(), error) {
	searcher, err := OpenIndexSearcher(settings)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open rule index: %w", err)
	}

	cleanup := func() {
		if err := searcher.Close(); err != nil {
			slog.Error("Failed to close rule index", "error", err)
		}
	}

	server := mcputil.CreateServer(mcputil.ServerConfig{
		Name:     "text-to-visitor",
		Version:  version,
		Searcher: searcher,
	})
	return server, cleanup, nil
}
