package scheduling_tools

import (
	"context"
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/deskflow/slotbooker/internal/gcal"
	"github.com/deskflow/slotbooker/internal/logging"
	"github.com/deskflow/slotbooker/internal/server"
)

// getCalendarClient retrieves or creates a calendar client for the specified tenant
func getCalendarClient(ctx context.Context, tenant string, sc *server.ServerContext) (*gcal.Client, error) {
	client := sc.CalendarClientForTenant(tenant)
	if client == nil {
		// Check if token exists before trying to create client
		if !gcal.HasTokenForAccount(tenant) {
			authURL := gcal.GetAuthURLForAccount(tenant)
			return nil, fmt.Errorf(`Google OAuth token not found for tenant "%s". To authorize calendar access:

1. Visit this URL in your browser:
   %s

2. Sign in with the Google account that owns the tenant calendar
3. Grant access to Google Calendar
4. Copy the authorization code

5. Provide the authorization code to your AI agent
   The agent will use the scheduling_save_auth_code tool with tenant="%s" to complete authentication.

Note: You only need to authorize once. The tokens will be automatically refreshed.`, tenant, authURL, tenant)
		}

		var err error
		client, err = gcal.NewClientForAccount(ctx, tenant)
		if err != nil {
			return nil, fmt.Errorf("failed to create calendar client for tenant %s: %w", tenant, err)
		}
		client = client.WithLogger(logging.DefaultLogger())
		if metrics := sc.Metrics(); metrics != nil {
			client = client.WithMetrics(metrics)
		}
		sc.SetCalendarClientForTenant(tenant, client)
	}
	return client, nil
}

// RegisterSchedulingTools registers all scheduling tools with the MCP server
func RegisterSchedulingTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if err := RegisterAvailabilityTools(s, sc); err != nil {
		return fmt.Errorf("failed to register availability tools: %w", err)
	}

	if err := RegisterBookingTools(s, sc); err != nil {
		return fmt.Errorf("failed to register booking tools: %w", err)
	}

	if err := RegisterAuthTools(s, sc); err != nil {
		return fmt.Errorf("failed to register auth tools: %w", err)
	}

	return nil
}
