// Package mcp exposes gait's registry diagnostics and runner over the Model
// Context Protocol for AI agents and editor tooling.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewServer creates a new MCP server with gait tools registered.
func NewServer(version string) *server.MCPServer {
	s := server.NewMCPServer(
		"gait",
		version,
		server.WithToolCapabilities(true),
	)

	s.AddTool(
		mcp.NewTool("gait/steps",
			mcp.WithDescription("List registered step patterns with usage flags and specificity scores"),
		),
		HandleSteps,
	)

	s.AddTool(
		mcp.NewTool("gait/unused",
			mcp.WithDescription("List registered steps never matched by any run (in-memory usage unioned with the persisted ledger)"),
		),
		HandleUnused,
	)

	s.AddTool(
		mcp.NewTool("gait/score",
			mcp.WithDescription("Compute the specificity score of an arbitrary step pattern"),
			mcp.WithString("pattern", mcp.Required(), mcp.Description("Pattern text, e.g. \"I have {count:u32} apples\"")),
		),
		HandleScore,
	)

	s.AddTool(
		mcp.NewTool("gait/validate",
			mcp.WithDescription("Validate a gait suite config YAML file"),
			mcp.WithString("path", mcp.Required(), mcp.Description("Path to the .gait.yaml file")),
		),
		HandleValidate,
	)

	s.AddTool(
		mcp.NewTool("gait/run",
			mcp.WithDescription("Run feature files against the registered steps"),
			mcp.WithString("features", mcp.Required(), mcp.Description("Feature file glob, e.g. features/*.feature")),
			mcp.WithString("filter", mcp.Description("Tag filter expression, e.g. has(\"smoke\") && !has(\"wip\")")),
		),
		HandleRun,
	)

	return s
}
