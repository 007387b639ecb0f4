package mcp

import (
	"context"
	"log/slog"
	"slices"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/tome/internal/config"
	"github.com/hpungsan/tome/internal/ops"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
// Every tool is read-only; mutations go through the web UI and the CLI.
var toolRegistry = map[string]toolEntry{
	"entry_list": {
		def:     entryListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleEntryList },
	},
	"entry_fetch": {
		def:     entryFetchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleEntryFetch },
	},
	"entry_export": {
		def:     entryExportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleEntryExport },
	},
	"tag_list": {
		def:     tagListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTagList },
	},
	"tag_resolve": {
		def:     tagResolveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTagResolve },
	},
	"tag_suggest": {
		def:     tagSuggestToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTagSuggest },
	},
}

// AllToolNames returns every tool name, sorted.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with Tome tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(env *ops.Env, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"tome",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(env, cfg)

	for _, name := range ValidateDisabledTools(cfg.DisabledTools) {
		env.Log().Warn("unknown tool in disabled_tools", slog.String("tool", name))
	}
	disabled := make(map[string]bool, len(cfg.DisabledTools))
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	// Register tools (skip disabled)
	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(env *ops.Env, cfg *config.Config, version string) error {
	s := NewServer(env, cfg, version)
	return server.ServeStdio(s)
}

// ToolHandlerFunc is the signature for tool handlers.
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
