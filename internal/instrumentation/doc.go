// Package instrumentation wires OpenTelemetry metrics and tracing into the
// scheduling server.
//
// Provider owns the meter and tracer providers and selects exporters from
// Config (prometheus, otlp or stdout for metrics; otlp, stdout or none for
// traces). Metrics is the recorder built on the meter; its instruments
// cover HTTP traffic, Google Calendar API calls, availability queries,
// booking outcomes and MCP tool invocations. ToolInvocation and
// AuditLogger produce the per-call audit records, with attendee emails
// reduced to their domain unless PII logging is switched on.
//
// Configuration comes from the environment, see DefaultConfig:
//
//   - INSTRUMENTATION_ENABLED: enable or disable all of it (default true)
//   - METRICS_EXPORTER: prometheus, otlp or stdout (default prometheus)
//   - TRACING_EXPORTER: otlp, stdout or none (default none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: endpoint for the otlp exporters
//   - OTEL_TRACES_SAMPLER_ARG: trace sampling rate 0.0 to 1.0 (default 0.1)
//   - OTEL_SERVICE_NAME: service name (default slotbooker)
//
// Typical setup:
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordToolInvocation(ctx, "scheduling_book_slot", "success", time.Since(start))
package instrumentation
