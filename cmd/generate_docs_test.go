package cmd

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/deskflow/slotbooker/internal/server"
	"github.com/deskflow/slotbooker/internal/tools/scheduling_tools"
)

func TestGenerateToolsMarkdown(t *testing.T) {
	// Build the real tool set the same way the command does
	sc, err := server.NewServerContext(context.Background(), "")
	if err != nil {
		t.Fatalf("failed to create server context: %v", err)
	}
	defer func() { _ = sc.Shutdown() }()

	mcpSrv := mcpserver.NewMCPServer("test-server", "1.0.0",
		mcpserver.WithToolCapabilities(true),
	)
	if err := scheduling_tools.RegisterSchedulingTools(mcpSrv, sc); err != nil {
		t.Fatalf("failed to register scheduling tools: %v", err)
	}

	serverTools := mcpSrv.ListTools()
	tools := make([]mcp.Tool, 0, len(serverTools))
	for _, serverTool := range serverTools {
		tools = append(tools, serverTool.Tool)
	}

	markdown := generateToolsMarkdown(tools)

	for _, want := range []string{
		"# MCP Tools Reference",
		"## Multi-Tenant Support",
		"### scheduling_get_available_slots",
		"### scheduling_book_slot",
		"### scheduling_get_auth_url",
		"### scheduling_save_auth_code",
		"`tenant` (optional)",
		"`timezone` (required)",
	} {
		if !strings.Contains(markdown, want) {
			t.Errorf("generated docs missing %q", want)
		}
	}
}

func TestGetPropertyType(t *testing.T) {
	if got := getPropertyType(map[string]interface{}{"type": "string"}); got != "string" {
		t.Errorf("getPropertyType() = %q, want %q", got, "string")
	}
	if got := getPropertyType(map[string]interface{}{}); got != "any" {
		t.Errorf("getPropertyType() = %q, want %q", got, "any")
	}
}
