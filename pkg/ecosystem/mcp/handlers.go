package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ormasoftchile/gait/pkg/config"
	"github.com/ormasoftchile/gait/pkg/feature"
	"github.com/ormasoftchile/gait/pkg/pattern"
	"github.com/ormasoftchile/gait/pkg/registry"
	"github.com/ormasoftchile/gait/pkg/runtime"
)

// HandleSteps implements the gait/steps MCP tool.
func HandleSteps(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reg, err := registry.Default()
	if err != nil {
		return errorResult(fmt.Sprintf("registry build failed: %v", err)), nil
	}
	infos, err := reg.Snapshot()
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(infos, false), nil
}

// HandleUnused implements the gait/unused MCP tool.
func HandleUnused(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reg, err := registry.Default()
	if err != nil {
		return errorResult(fmt.Sprintf("registry build failed: %v", err)), nil
	}
	unused, err := reg.Unused()
	if err != nil {
		return errorResult(err.Error()), nil
	}
	type row struct {
		Keyword feature.Keyword `json:"keyword"`
		Pattern string          `json:"pattern"`
		Source  string          `json:"source,omitempty"`
	}
	rows := make([]row, 0, len(unused))
	for _, e := range unused {
		rows = append(rows, row{Keyword: e.Keyword, Pattern: e.Pattern, Source: e.Source})
	}
	return jsonResult(rows, false), nil
}

// HandleScore implements the gait/score MCP tool. The text goes through the
// shared compile memo table, so unbalanced braces are rejected here the same
// way the registry build would reject them; registry state is untouched.
func HandleScore(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	text, _ := args["pattern"].(string)
	if text == "" {
		return errorResult("pattern argument is required"), nil
	}

	cp, err := pattern.Compile(text)
	if err != nil {
		return errorResult(fmt.Sprintf("pattern does not compile: %v", err)), nil
	}
	return jsonResult(pattern.Score(cp.Tokens), false), nil
}

// HandleValidate implements the gait/validate MCP tool.
func HandleValidate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	path, _ := args["path"].(string)
	if path == "" {
		return errorResult("path argument is required"), nil
	}

	_, errs := config.ValidateFile(path)
	if hasErrors(errs) {
		return errorResult(formatErrors(errs)), nil
	}
	return textResult(fmt.Sprintf("✓ %s is valid", path)), nil
}

// HandleRun implements the gait/run MCP tool.
func HandleRun(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	glob, _ := args["features"].(string)
	if glob == "" {
		return errorResult("features argument is required"), nil
	}

	reg, err := registry.Default()
	if err != nil {
		return errorResult(fmt.Sprintf("registry build failed: %v", err)), nil
	}

	features, err := feature.LoadGlobs([]string{glob})
	if err != nil {
		return errorResult(err.Error()), nil
	}

	runner := &runtime.Runner{Registry: reg}
	if src, _ := args["filter"].(string); src != "" {
		filter, err := runtime.NewTagFilter(src)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		runner.Filter = filter
	}

	result, err := runner.Run(ctx, features)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(result, result.Failed()), nil
}

func hasErrors(errs []*config.ValidationError) bool {
	for _, e := range errs {
		if e.Severity == "error" {
			return true
		}
	}
	return false
}

func formatErrors(errs []*config.ValidationError) string {
	var msgs []string
	for _, e := range errs {
		if e.Severity == "error" {
			msgs = append(msgs, fmt.Sprintf("[%s] %s", e.Phase, e.Message))
		}
	}
	return strings.Join(msgs, "; ")
}

func jsonResult(v any, isErr bool) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("marshal result: %v", err))
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(string(data))},
		IsError: isErr,
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(msg),
		},
		IsError: true,
	}
}
