package instrumentation

import (
	"context"
	"log/slog"
	"time"
)

// ToolInvocation is the audit record for one MCP tool call. It is built up
// with the With* setters while the call runs and sealed by Complete.
//
// AttendeeEmail is PII. General operational logs should carry only the
// domain (see LogAttrs); the full address belongs in dedicated audit
// streams with access controls (see LogAuditAttrs).
type ToolInvocation struct {
	Tool          string
	AttendeeEmail string

	// Tenant account whose calendar was addressed and the scheduling
	// operation performed against it (availability, book).
	Tenant    string
	Operation string

	SlotStart string // requested slot start in RFC 3339, empty for reads
	Outcome   string // terminal booking outcome (booked, rejected, failed)

	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	TraceID string
	SpanID  string
}

// NewToolInvocation starts an audit record with the clock running.
func NewToolInvocation(tool string) *ToolInvocation {
	return &ToolInvocation{Tool: tool, StartTime: time.Now()}
}

// AttendeeDomain returns only the domain of the attendee's email.
func (ti *ToolInvocation) AttendeeDomain() string {
	return ExtractUserDomain(ti.AttendeeEmail)
}

// Status maps the Success flag onto the shared status label values.
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

// attrs assembles the log fields. With full set, the attendee email appears
// verbatim and slot start plus span ID are added; otherwise the attendee
// collapses to its domain and the default tenant is elided.
func (ti *ToolInvocation) attrs(full bool) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("tool", ti.Tool),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
	}
	switch {
	case ti.AttendeeEmail == "":
	case full:
		attrs = append(attrs, slog.String("attendee", ti.AttendeeEmail))
	default:
		attrs = append(attrs, slog.String("attendee_domain", ti.AttendeeDomain()))
	}
	if ti.Tenant != "" && (full || ti.Tenant != "default") {
		attrs = append(attrs, slog.String("tenant", ti.Tenant))
	}
	if ti.Operation != "" {
		attrs = append(attrs, slog.String("operation", ti.Operation))
	}
	if full && ti.SlotStart != "" {
		attrs = append(attrs, slog.String("slot_start", ti.SlotStart))
	}
	if ti.Outcome != "" {
		attrs = append(attrs, slog.String("outcome", ti.Outcome))
	}
	if ti.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ti.TraceID))
	}
	if full && ti.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", ti.SpanID))
	}
	if ti.Error != "" {
		attrs = append(attrs, slog.String("error", ti.Error))
	}
	return attrs
}

// LogAttrs returns cardinality-controlled fields for operational logging.
func (ti *ToolInvocation) LogAttrs() []slog.Attr {
	return ti.attrs(false)
}

// LogAuditAttrs returns the complete field set including PII. Route these
// only to audit log streams.
func (ti *ToolInvocation) LogAuditAttrs() []slog.Attr {
	return ti.attrs(true)
}

// WithAttendee sets the primary attendee of the booking request.
func (ti *ToolInvocation) WithAttendee(email string) *ToolInvocation {
	ti.AttendeeEmail = email
	return ti
}

// WithTenant sets the tenant account.
func (ti *ToolInvocation) WithTenant(tenant string) *ToolInvocation {
	ti.Tenant = tenant
	return ti
}

// WithOperation sets the scheduling operation type.
func (ti *ToolInvocation) WithOperation(operation string) *ToolInvocation {
	ti.Operation = operation
	return ti
}

// WithSlot sets the requested slot start for booking operations.
func (ti *ToolInvocation) WithSlot(slotStart string) *ToolInvocation {
	ti.SlotStart = slotStart
	return ti
}

// WithOutcome sets the terminal booking outcome.
func (ti *ToolInvocation) WithOutcome(outcome string) *ToolInvocation {
	ti.Outcome = outcome
	return ti
}

// WithSpanContext copies the active trace and span IDs from ctx so audit
// records correlate with traces.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	ti.TraceID = GetTraceID(ctx)
	ti.SpanID = GetSpanID(ctx)
	return ti
}

// Complete seals the record: it stops the clock and stores the result.
func (ti *ToolInvocation) Complete(success bool, err error) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = success
	if err != nil {
		ti.Error = err.Error()
	}
	return ti
}

// CompleteWithError seals the record as failed.
func (ti *ToolInvocation) CompleteWithError(err error) *ToolInvocation {
	return ti.Complete(false, err)
}

// CompleteSuccess seals the record as successful.
func (ti *ToolInvocation) CompleteSuccess() *ToolInvocation {
	return ti.Complete(true, nil)
}

// AuditLogger emits ToolInvocation records through slog. Unless IncludePII
// is configured, attendee emails are reduced to their domain.
type AuditLogger struct {
	logger     *slog.Logger
	includePII bool
	enabled    bool
}

// NewAuditLogger returns an enabled AuditLogger that never logs PII.
// A nil logger falls back to slog.Default.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: true})
}

// NewAuditLoggerWithConfig returns an AuditLogger honoring config.
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:     logger,
		includePII: config.IncludePII,
		enabled:    config.Enabled,
	}
}

// LogToolInvocation logs one sealed invocation record. Success logs at info
// as "tool_executed", failure at warn as "tool_failed".
func (al *AuditLogger) LogToolInvocation(ti *ToolInvocation) {
	if !al.enabled {
		return
	}
	attrs := ti.attrs(al.includePII)
	if ti.Success {
		al.logger.LogAttrs(context.Background(), slog.LevelInfo, "tool_executed", attrs...)
	} else {
		al.logger.LogAttrs(context.Background(), slog.LevelWarn, "tool_failed", attrs...)
	}
}

// LogToolAudit logs the full record including PII, regardless of the
// IncludePII setting. Only the enabled flag is honored.
func (al *AuditLogger) LogToolAudit(ti *ToolInvocation) {
	if !al.enabled {
		return
	}
	al.logger.LogAttrs(context.Background(), slog.LevelInfo, "tool_audit", ti.LogAuditAttrs()...)
}
