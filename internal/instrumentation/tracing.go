package instrumentation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the tracer name used for all spans in this module.
const TracerName = "github.com/deskflow/slotbooker"

// Span attribute keys.
const (
	SpanAttrTool      = "mcp.tool"
	SpanAttrOperation = "calendar.operation"
	SpanAttrTenant    = "scheduling.tenant"
	SpanAttrStatus    = "mcp.status"
	SpanAttrEventID   = "calendar.event_id"
)

// SpanAttributeBuilder assembles span attributes under the shared keys.
type SpanAttributeBuilder struct {
	attrs []attribute.KeyValue
}

// NewSpanAttributeBuilder creates an empty SpanAttributeBuilder.
func NewSpanAttributeBuilder() *SpanAttributeBuilder {
	return &SpanAttributeBuilder{
		attrs: make([]attribute.KeyValue, 0, 8),
	}
}

// WithOperation adds the calendar operation attribute.
func (b *SpanAttributeBuilder) WithOperation(operation string) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.String(SpanAttrOperation, operation))
	return b
}

// WithTenant adds the tenant account attribute when non-empty.
func (b *SpanAttributeBuilder) WithTenant(tenant string) *SpanAttributeBuilder {
	if tenant != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrTenant, tenant))
	}
	return b
}

// WithEventID adds the created calendar event identifier when non-empty.
func (b *SpanAttributeBuilder) WithEventID(eventID string) *SpanAttributeBuilder {
	if eventID != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrEventID, eventID))
	}
	return b
}

// Build returns the assembled attributes.
func (b *SpanAttributeBuilder) Build() []attribute.KeyValue {
	return b.attrs
}

// StartToolSpan starts a server-kind span for an MCP tool invocation.
// The caller must end the span.
func StartToolSpan(ctx context.Context, toolName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return startSpan(ctx, "tool."+toolName, trace.SpanKindServer,
		attribute.String(SpanAttrTool, toolName), attrs)
}

// StartCalendarAPISpan starts a client-kind span for a Google Calendar API
// call. The caller must end the span.
func StartCalendarAPISpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return startSpan(ctx, "calendar."+operation, trace.SpanKindClient,
		attribute.String(SpanAttrOperation, operation), attrs)
}

func startSpan(ctx context.Context, name string, kind trace.SpanKind, lead attribute.KeyValue, attrs []attribute.KeyValue) (context.Context, trace.Span) {
	all := make([]attribute.KeyValue, 0, len(attrs)+1)
	all = append(all, lead)
	all = append(all, attrs...)
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, name,
		trace.WithAttributes(all...),
		trace.WithSpanKind(kind),
	)
}

// SetSpanError records the error on the span and marks it failed.
func SetSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess marks the span as completed successfully.
func SetSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// GetTraceID returns the trace ID of the span in ctx, or "" when no valid
// span is present.
func GetTraceID(ctx context.Context) string {
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		return sc.TraceID().String()
	}
	return ""
}

// GetSpanID returns the span ID of the span in ctx, or "" when no valid
// span is present.
func GetSpanID(ctx context.Context) string {
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		return sc.SpanID().String()
	}
	return ""
}
