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

// policyToolOptions returns the per-tenant scheduling policy arguments shared
// by the availability and booking tools.
func policyToolOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("tenant",
			mcp.Description("Tenant account name (default: 'default'). Selects the Google account whose calendar is used."),
		),
		mcp.WithString("timezone",
			mcp.Required(),
			mcp.Description("IANA timezone of the tenant's business hours (e.g., 'Europe/Berlin')"),
		),
		mcp.WithNumber("daysAheadHorizon",
			mcp.Required(),
			mcp.Description("How many days ahead to offer slots, starting today"),
		),
		mcp.WithNumber("slotDurationMinutes",
			mcp.Required(),
			mcp.Description("Length of each bookable slot in minutes"),
		),
		mcp.WithNumber("slotIntervalMinutes",
			mcp.Required(),
			mcp.Description("Spacing between candidate slot starts in minutes"),
		),
		mcp.WithNumber("maxSlotsReturned",
			mcp.Description("Maximum number of slots to return (default: 10)"),
		),
		mcp.WithBoolean("skipPastTimeToday",
			mcp.Description("Skip slots earlier than the current time today (default: true)"),
		),
		mcp.WithString("businessHours",
			mcp.Required(),
			mcp.Description(`JSON object mapping weekday names to opening hours, e.g. '{"monday":"09:00-17:00","saturday":"closed"}'. Days not listed have no availability.`),
		),
		mcp.WithString("closedWeekdays",
			mcp.Description("Comma-separated weekday names that are always closed (e.g., 'saturday,sunday')"),
		),
		mcp.WithString("holidayDates",
			mcp.Description("Comma-separated dates without availability, YYYY-MM-DD in the policy timezone"),
		),
		mcp.WithNumber("bufferMinutes",
			mcp.Description("Minutes of padding required around existing calendar events (default: 0)"),
		),
		mcp.WithNumber("maxBookingsPerDay",
			mcp.Description("Maximum bookings this system creates per calendar day (0 = no cap)"),
		),
		mcp.WithNumber("maxBookingsPerWeek",
			mcp.Description("Maximum bookings this system creates per ISO week (0 = no cap)"),
		),
	}
}

// RegisterAvailabilityTools registers the availability tool with the MCP server
func RegisterAvailabilityTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("List bookable appointment slots on the tenant's Google Calendar, honoring business hours, buffers and booking quotas. Returns a JSON array of {start, end} pairs in UTC."),
	}, policyToolOptions()...)

	getAvailableSlotsTool := mcp.NewTool("scheduling_get_available_slots", opts...)

	s.AddTool(getAvailableSlotsTool, common.InstrumentedToolHandlerWithOperation(
		"scheduling_get_available_slots", instrumentation.OperationAvailability, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetAvailableSlots(ctx, request, sc)
		}))

	return nil
}

func handleGetAvailableSlots(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	tenant := common.GetTenantFromArgs(ctx, args)

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

	svc, err := sc.AvailabilityServiceForTenant(tenant)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	slots, err := svc.AvailableSlots(ctx, tenant, policy)
	if err != nil {
		if metrics := sc.Metrics(); metrics != nil {
			metrics.RecordAvailabilityRequest(ctx, instrumentation.StatusError, 0)
		}
		return mcp.NewToolResultError(toolErrorMessage(err)), nil
	}

	// Slots go out as RFC3339 UTC regardless of the policy timezone.
	type slotRange struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}
	ranges := make([]slotRange, 0, len(slots))
	for _, s := range slots {
		ranges = append(ranges, slotRange{
			Start: s.Start.UTC().Format(time.RFC3339),
			End:   s.End.UTC().Format(time.RFC3339),
		})
	}
	data, err := json.Marshal(ranges)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode slots: %v", err)), nil
	}

	if metrics := sc.Metrics(); metrics != nil {
		metrics.RecordAvailabilityRequest(ctx, instrumentation.StatusSuccess, len(slots))
	}

	return mcp.NewToolResultText(string(data)), nil
}
