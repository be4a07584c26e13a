package common

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/deskflow/slotbooker/internal/instrumentation"
	"github.com/deskflow/slotbooker/internal/server"
)

// ToolHandlerFunc is the handler signature the MCP server dispatches to.
type ToolHandlerFunc = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// InstrumentedToolHandler wraps a tool handler with a span, invocation
// metrics and audit logging.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", sc, handler))
func InstrumentedToolHandler(toolName string, sc *server.ServerContext, handler ToolHandlerFunc) ToolHandlerFunc {
	return instrumented(toolName, "", sc, handler)
}

// InstrumentedToolHandlerWithOperation additionally tags the invocation
// with the scheduling operation, plus the tenant label when detailed
// labels are enabled. Calendar API call metrics are recorded by the
// calendar client where the calls happen; one tool call can fan out into
// several API calls.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandlerWithOperation("my_tool", "book", sc, handler))
func InstrumentedToolHandlerWithOperation(toolName, operation string, sc *server.ServerContext, handler ToolHandlerFunc) ToolHandlerFunc {
	return instrumented(toolName, operation, sc, handler)
}

func instrumented(toolName, operation string, sc *server.ServerContext, handler ToolHandlerFunc) ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		metrics := sc.Metrics()
		auditLogger := sc.AuditLogger()
		if metrics == nil && auditLogger == nil {
			return handler(ctx, request)
		}

		tenant := GetTenantFromArgs(ctx, request.GetArguments())

		builder := instrumentation.NewSpanAttributeBuilder().WithTenant(tenant)
		if operation != "" {
			builder = builder.WithOperation(operation)
		}

		start := time.Now()
		ctx, span := instrumentation.StartToolSpan(ctx, toolName, builder.Build()...)
		defer span.End()

		// The record is built after the span starts so it picks up valid
		// trace and span IDs.
		invocation := instrumentation.NewToolInvocation(toolName).WithSpanContext(ctx)
		if operation != "" {
			invocation.WithOperation(operation)
		}
		if tenant != "" {
			invocation.WithTenant(tenant)
		}

		result, err := handler(ctx, request)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		switch {
		case err != nil:
			status = instrumentation.StatusError
			invocation.CompleteWithError(err)
			instrumentation.SetSpanError(span, err)
		case result != nil && result.IsError:
			// Tool-level errors come back as results, not Go errors.
			status = instrumentation.StatusError
			invocation.Complete(false, nil)
		default:
			invocation.CompleteSuccess()
			instrumentation.SetSpanSuccess(span)
		}

		if metrics != nil {
			if operation == "" {
				metrics.RecordToolInvocation(ctx, toolName, status, duration)
			} else {
				metrics.RecordToolInvocationWithTenant(ctx, toolName, status, tenant, duration)
			}
		}
		if auditLogger != nil {
			auditLogger.LogToolInvocation(invocation)
		}

		return result, err
	}
}
