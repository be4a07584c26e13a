package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys, shared across instruments.
const (
	attrMethod    = "method"
	attrPath      = "path"
	attrStatus    = "status"
	attrOperation = "operation"
	attrResult    = "result"
	attrKind      = "kind"
	attrTool      = "tool"
	attrTenant    = "tenant"
)

// Metrics records the scheduling server's operational metrics. All Record
// methods tolerate a zero-value Metrics, so a disabled provider can hand
// out &Metrics{} instead of nil.
type Metrics struct {
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram
	activeSessions      metric.Int64UpDownCounter

	calendarAPIOperationsTotal   metric.Int64Counter
	calendarAPIOperationDuration metric.Float64Histogram
	calendarAPIErrorsTotal       metric.Int64Counter

	availabilityRequestsTotal metric.Int64Counter
	availabilitySlotsReturned metric.Int64Histogram
	bookingRequestsTotal      metric.Int64Counter

	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram

	// detailedLabels opts in to high-cardinality labels such as tenant.
	detailedLabels bool
}

// instrumentFactory creates instruments and remembers the first failure,
// so NewMetrics reads as a flat list instead of a ladder of error checks.
type instrumentFactory struct {
	meter metric.Meter
	err   error
}

func (f *instrumentFactory) counter(name, desc, unit string) metric.Int64Counter {
	c, err := f.meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	f.record(name, err)
	return c
}

func (f *instrumentFactory) upDownCounter(name, desc, unit string) metric.Int64UpDownCounter {
	c, err := f.meter.Int64UpDownCounter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	f.record(name, err)
	return c
}

func (f *instrumentFactory) histogram(name, desc, unit string, bounds ...float64) metric.Float64Histogram {
	h, err := f.meter.Float64Histogram(name,
		metric.WithDescription(desc),
		metric.WithUnit(unit),
		metric.WithExplicitBucketBoundaries(bounds...),
	)
	f.record(name, err)
	return h
}

func (f *instrumentFactory) intHistogram(name, desc, unit string, bounds ...float64) metric.Int64Histogram {
	h, err := f.meter.Int64Histogram(name,
		metric.WithDescription(desc),
		metric.WithUnit(unit),
		metric.WithExplicitBucketBoundaries(bounds...),
	)
	f.record(name, err)
	return h
}

func (f *instrumentFactory) record(name string, err error) {
	if err != nil && f.err == nil {
		f.err = fmt.Errorf("failed to create instrument %s: %w", name, err)
	}
}

// NewMetrics creates all instruments on the given meter. detailedLabels
// controls whether high-cardinality labels are attached.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	f := &instrumentFactory{meter: meter}

	durationBounds := []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0}

	m := &Metrics{
		detailedLabels: detailedLabels,

		httpRequestsTotal: f.counter("http_requests_total",
			"Total number of HTTP requests", "{request}"),
		httpRequestDuration: f.histogram("http_request_duration_seconds",
			"HTTP request duration in seconds", "s",
			0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
		activeSessions: f.upDownCounter("active_sessions",
			"Number of active user sessions", "{session}"),

		calendarAPIOperationsTotal: f.counter("calendar_api_operations_total",
			"Total number of Google Calendar API operations", "{operation}"),
		calendarAPIOperationDuration: f.histogram("calendar_api_operation_duration_seconds",
			"Google Calendar API operation duration in seconds", "s", durationBounds...),
		calendarAPIErrorsTotal: f.counter("calendar_api_errors_total",
			"Total number of Google Calendar API failures by kind", "{error}"),

		availabilityRequestsTotal: f.counter("availability_requests_total",
			"Total number of availability queries", "{request}"),
		availabilitySlotsReturned: f.intHistogram("availability_slots_returned",
			"Number of open slots returned per availability query", "{slot}",
			0, 1, 2, 5, 10, 20, 50, 100),
		bookingRequestsTotal: f.counter("booking_requests_total",
			"Total number of booking attempts by outcome", "{request}"),

		toolInvocationsTotal: f.counter("mcp_tool_invocations_total",
			"Total number of MCP tool invocations", "{invocation}"),
		toolDuration: f.histogram("mcp_tool_duration_seconds",
			"MCP tool execution duration in seconds", "s", durationBounds...),
	}

	if f.err != nil {
		return nil, f.err
	}
	return m, nil
}

// RecordHTTPRequest records one HTTP request against the health or MCP
// endpoints.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m.httpRequestsTotal == nil || m.httpRequestDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	)
	m.httpRequestsTotal.Add(ctx, 1, attrs)
	m.httpRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordCalendarAPIOperation records one Google Calendar API call.
// Operation is "list" or "insert"; status is "success" or "error".
func (m *Metrics) RecordCalendarAPIOperation(ctx context.Context, operation, status string, duration time.Duration) {
	if m.calendarAPIOperationsTotal == nil || m.calendarAPIOperationDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	)
	m.calendarAPIOperationsTotal.Add(ctx, 1, attrs)
	m.calendarAPIOperationDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordCalendarAPIError records a classified Google Calendar API failure.
// Kind is one of "auth_expired", "rate_limited", "unavailable".
func (m *Metrics) RecordCalendarAPIError(ctx context.Context, operation, kind string) {
	if m.calendarAPIErrorsTotal == nil {
		return
	}

	m.calendarAPIErrorsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrOperation, operation),
		attribute.String(attrKind, kind),
	))
}

// RecordAvailabilityRequest records one availability query and, on success,
// the number of open slots it returned.
func (m *Metrics) RecordAvailabilityRequest(ctx context.Context, status string, slotCount int) {
	if m.availabilityRequestsTotal == nil || m.availabilitySlotsReturned == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String(attrStatus, status))
	m.availabilityRequestsTotal.Add(ctx, 1, attrs)
	if status == StatusSuccess {
		m.availabilitySlotsReturned.Record(ctx, int64(slotCount), attrs)
	}
}

// RecordBookingRequest records one booking attempt with its terminal
// outcome ("booked", "rejected" or "failed").
func (m *Metrics) RecordBookingRequest(ctx context.Context, result string) {
	if m.bookingRequestsTotal == nil {
		return
	}

	m.bookingRequestsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrResult, result),
	))
}

// RecordToolInvocation records one MCP tool invocation. Status is
// "success" or "error".
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	)
	m.toolInvocationsTotal.Add(ctx, 1, attrs)
	m.toolDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordToolInvocationWithTenant is RecordToolInvocation plus a tenant
// label. Tenant counts are unbounded, so the label is attached only when
// detailed labels are enabled.
func (m *Metrics) RecordToolInvocationWithTenant(ctx context.Context, toolName, status, tenant string, duration time.Duration) {
	if m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}
	if m.detailedLabels && tenant != "" {
		attrs = append(attrs, attribute.String(attrTenant, tenant))
	}

	set := metric.WithAttributes(attrs...)
	m.toolInvocationsTotal.Add(ctx, 1, set)
	m.toolDuration.Record(ctx, duration.Seconds(), set)
}

// IncrementActiveSessions bumps the active session gauge.
func (m *Metrics) IncrementActiveSessions(ctx context.Context) {
	if m.activeSessions != nil {
		m.activeSessions.Add(ctx, 1)
	}
}

// DecrementActiveSessions drops the active session gauge.
func (m *Metrics) DecrementActiveSessions(ctx context.Context) {
	if m.activeSessions != nil {
		m.activeSessions.Add(ctx, -1)
	}
}
