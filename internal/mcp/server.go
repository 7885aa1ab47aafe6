package mcp

import (
	"context"
	"slices"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/cusc/copywriter/internal/config"
	"github.com/cusc/copywriter/internal/snapshot"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"prompt_course": {
		def:     promptCourseToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePromptCourse },
	},
	"prompt_event": {
		def:     promptEventToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePromptEvent },
	},
	"catalog_list": {
		def:     catalogListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCatalogList },
	},
	"snapshot_save": {
		def:     saveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSave },
	},
	"snapshot_list": {
		def:     listToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"snapshot_fetch": {
		def:     fetchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFetch },
	},
	"snapshot_rename": {
		def:     renameToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRename },
	},
	"snapshot_delete": {
		def:     deleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDelete },
	},
}

// AllToolNames returns all valid tool names, sorted.
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

// NewServer creates a new MCP server with the copywriter tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(store *snapshot.Store, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"copywriter",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(store, cfg)

	disabled := make(map[string]bool, len(cfg.DisabledTools))
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run serves MCP over stdio until the client disconnects.
func Run(store *snapshot.Store, cfg *config.Config, version string) error {
	s := NewServer(store, cfg, version)
	return server.ServeStdio(s)
}

// ToolHandlerFunc is the signature for tool handlers.
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
