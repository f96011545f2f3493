// Command gait-mcp serves gait's registry diagnostics and runner over the
// Model Context Protocol on stdio.
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/ormasoftchile/gait/pkg/ecosystem/mcp"
)

// Version is set at build time via ldflags.
var version = "dev"

func main() {
	s := mcp.NewServer(version)
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}
