package scheduling_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/deskflow/slotbooker/internal/google"
	"github.com/deskflow/slotbooker/internal/server"
	"github.com/deskflow/slotbooker/internal/tools/common"
)

// RegisterAuthTools registers the Google Calendar OAuth tools with the MCP server
func RegisterAuthTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Get OAuth URL tool
	getAuthURLTool := mcp.NewTool("scheduling_get_auth_url",
		mcp.WithDescription("Get the OAuth URL to authorize Google Calendar access for a tenant"),
		mcp.WithString("tenant",
			mcp.Description("Tenant account name (default: 'default'). Selects the Google account whose calendar is used."),
		),
	)

	s.AddTool(getAuthURLTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetAuthURL(ctx, request, sc)
	})

	// Save authorization code tool
	saveAuthCodeTool := mcp.NewTool("scheduling_save_auth_code",
		mcp.WithDescription("Save the OAuth authorization code to complete Google Calendar authentication for a tenant"),
		mcp.WithString("tenant",
			mcp.Description("Tenant account name (default: 'default'). Selects the Google account whose calendar is used."),
		),
		mcp.WithString("authCode",
			mcp.Required(),
			mcp.Description("The authorization code from Google OAuth"),
		),
	)

	s.AddTool(saveAuthCodeTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleSaveAuthCode(ctx, request, sc)
	})

	return nil
}

func handleGetAuthURL(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	tenant := common.GetTenantFromArgs(ctx, args)

	authURL := google.GetAuthURLForAccount(tenant)

	result := fmt.Sprintf(`To authorize Google Calendar access for tenant "%s":

1. Visit this URL in your browser:
   %s

2. Sign in with the Google account that owns the tenant calendar
3. Grant access to Google Calendar
4. Copy the authorization code

5. Call the scheduling_save_auth_code tool with the code and tenant name to complete authentication`, tenant, authURL)

	return mcp.NewToolResultText(result), nil
}

func handleSaveAuthCode(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	tenant := common.GetTenantFromArgs(ctx, args)

	authCode, ok := args["authCode"].(string)
	if !ok || authCode == "" {
		return mcp.NewToolResultError("authCode is required"), nil
	}

	if err := google.SaveTokenForAccount(ctx, tenant, authCode); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to save authorization code for tenant %s: %v", tenant, err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Authorization successful for tenant '%s'. Calendar token saved; the scheduling tools can now access this calendar.", tenant)), nil
}
