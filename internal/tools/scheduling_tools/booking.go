package scheduling_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/deskflow/slotbooker/internal/instrumentation"
	"github.com/deskflow/slotbooker/internal/scheduling"
	"github.com/deskflow/slotbooker/internal/server"
	"github.com/deskflow/slotbooker/internal/tools/common"
)

// RegisterBookingTools registers the booking tool with the MCP server
func RegisterBookingTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Book an appointment slot on the tenant's Google Calendar. The slot is revalidated against the live calendar and booking quotas before the event is created. Returns JSON with the event ID and optional conference link."),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Slot start time (RFC3339, e.g., '2025-01-15T09:00:00Z')"),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("Slot end time (RFC3339). Must be start plus the policy slot duration."),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Event title"),
		),
		mcp.WithString("description",
			mcp.Description("Event description"),
		),
		mcp.WithString("attendeeEmails",
			mcp.Description("Comma-separated list of attendee email addresses"),
		),
		mcp.WithBoolean("addConferenceLink",
			mcp.Description("Attach a Google Meet conference link to the event (default: false)"),
		),
	}, policyToolOptions()...)

	bookSlotTool := mcp.NewTool("scheduling_book_slot", opts...)

	s.AddTool(bookSlotTool, common.InstrumentedToolHandlerWithOperation(
		"scheduling_book_slot", instrumentation.OperationBook, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleBookSlot(ctx, request, sc)
		}))

	return nil
}

func handleBookSlot(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	tenant := common.GetTenantFromArgs(ctx, args)

	startStr, ok := args["start"].(string)
	if !ok || startStr == "" {
		return mcp.NewToolResultError("start is required"), nil
	}
	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid start format: %v", err)), nil
	}

	endStr, ok := args["end"].(string)
	if !ok || endStr == "" {
		return mcp.NewToolResultError("end is required"), nil
	}
	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid end format: %v", err)), nil
	}

	title, ok := args["title"].(string)
	if !ok || title == "" {
		return mcp.NewToolResultError("title is required"), nil
	}

	req := scheduling.BookingRequest{
		Slot:  scheduling.Slot{Start: start, End: end},
		Title: title,
	}
	if v, ok := args["description"].(string); ok {
		req.Description = v
	}
	if v, ok := args["attendeeEmails"].(string); ok && v != "" {
		req.AttendeeEmails = splitCommaList(v)
	}
	if v, ok := args["addConferenceLink"].(bool); ok {
		req.AddConferenceLink = v
	}

	// Validate the policy before touching Google.
	in, err := policyInputFromArgs(args)
	if err != nil {
		return mcp.NewToolResultError(toolErrorMessage(err)), nil
	}
	policy, err := scheduling.NewPolicy(in)
	if err != nil {
		return mcp.NewToolResultError(toolErrorMessage(err)), nil
	}

	if _, err := getCalendarClient(ctx, tenant, sc); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	svc, err := sc.BookingServiceForTenant(tenant)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	outcome, err := svc.Book(ctx, tenant, policy, req)
	if metrics := sc.Metrics(); metrics != nil && outcome != nil {
		metrics.RecordBookingRequest(ctx, string(outcome.State))
	}
	if err != nil {
		return mcp.NewToolResultError(toolErrorMessage(err)), nil
	}

	data, err := json.Marshal(outcome.Confirmation)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode confirmation: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
