package instrumentation

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T, detailed bool) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp.Meter("test"), detailed)
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	byName := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			byName[m.Name] = m
		}
	}
	return byName
}

func TestMetrics_RecordsAllInstruments(t *testing.T) {
	ctx := context.Background()
	m, reader := newTestMetrics(t, false)

	m.RecordHTTPRequest(ctx, "GET", "/mcp", 200, 100*time.Millisecond)
	m.RecordCalendarAPIOperation(ctx, OperationList, StatusSuccess, 200*time.Millisecond)
	m.RecordCalendarAPIError(ctx, OperationInsert, ErrorKindRateLimited)
	m.RecordAvailabilityRequest(ctx, StatusSuccess, 12)
	m.RecordBookingRequest(ctx, OutcomeBooked)
	m.RecordToolInvocation(ctx, "scheduling_get_available_slots", StatusSuccess, 100*time.Millisecond)
	m.IncrementActiveSessions(ctx)
	m.DecrementActiveSessions(ctx)

	got := collect(t, reader)
	for _, name := range []string{
		"http_requests_total",
		"http_request_duration_seconds",
		"calendar_api_operations_total",
		"calendar_api_operation_duration_seconds",
		"calendar_api_errors_total",
		"availability_requests_total",
		"availability_slots_returned",
		"booking_requests_total",
		"mcp_tool_invocations_total",
		"mcp_tool_duration_seconds",
		"active_sessions",
	} {
		if _, ok := got[name]; !ok {
			t.Errorf("instrument %s recorded no data", name)
		}
	}
}

func TestMetrics_AvailabilityErrorSkipsSlotHistogram(t *testing.T) {
	ctx := context.Background()
	m, reader := newTestMetrics(t, false)

	m.RecordAvailabilityRequest(ctx, StatusError, 5)

	got := collect(t, reader)
	if _, ok := got["availability_requests_total"]; !ok {
		t.Error("availability_requests_total should be recorded for errors")
	}
	if _, ok := got["availability_slots_returned"]; ok {
		t.Error("availability_slots_returned should not be recorded for errors")
	}
}

// tenantAttr digs the tenant attribute out of the tool invocation counter.
func tenantAttr(t *testing.T, byName map[string]metricdata.Metrics) (string, bool) {
	t.Helper()
	m, ok := byName["mcp_tool_invocations_total"]
	if !ok {
		t.Fatal("mcp_tool_invocations_total recorded no data")
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok || len(sum.DataPoints) == 0 {
		t.Fatalf("unexpected data shape for mcp_tool_invocations_total: %T", m.Data)
	}
	val, ok := sum.DataPoints[0].Attributes.Value(attribute.Key(attrTenant))
	return val.AsString(), ok
}

func TestMetrics_TenantLabelRequiresDetailedLabels(t *testing.T) {
	ctx := context.Background()

	m, reader := newTestMetrics(t, false)
	m.RecordToolInvocationWithTenant(ctx, "scheduling_book_slot", StatusSuccess, "acme", 100*time.Millisecond)
	if _, ok := tenantAttr(t, collect(t, reader)); ok {
		t.Error("tenant label should be dropped without detailed labels")
	}

	m, reader = newTestMetrics(t, true)
	m.RecordToolInvocationWithTenant(ctx, "scheduling_book_slot", StatusSuccess, "acme", 100*time.Millisecond)
	if tenant, ok := tenantAttr(t, collect(t, reader)); !ok || tenant != "acme" {
		t.Errorf("tenant label = %q (present=%v), want %q", tenant, ok, "acme")
	}
}

func TestMetrics_ZeroValueIsNoOp(t *testing.T) {
	ctx := context.Background()
	var m Metrics

	// A disabled provider hands out a zero-value recorder; every method
	// must tolerate it.
	m.RecordHTTPRequest(ctx, "GET", "/mcp", 200, 100*time.Millisecond)
	m.RecordCalendarAPIOperation(ctx, OperationList, StatusSuccess, 200*time.Millisecond)
	m.RecordCalendarAPIError(ctx, OperationList, ErrorKindUnavailable)
	m.RecordAvailabilityRequest(ctx, StatusSuccess, 3)
	m.RecordBookingRequest(ctx, OutcomeBooked)
	m.RecordToolInvocation(ctx, "test_tool", StatusSuccess, 100*time.Millisecond)
	m.RecordToolInvocationWithTenant(ctx, "test_tool", StatusSuccess, "acme", 100*time.Millisecond)
	m.IncrementActiveSessions(ctx)
	m.DecrementActiveSessions(ctx)
}
