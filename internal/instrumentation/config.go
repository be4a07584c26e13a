package instrumentation

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the OpenTelemetry instrumentation configuration for the
// scheduling server.
type Config struct {
	// ServiceName identifies this service in exported telemetry
	// (default: slotbooker).
	ServiceName string

	// ServiceVersion is the running build version.
	ServiceVersion string

	// ServiceInstanceID distinguishes instances of the service. Defaults
	// to the hostname, which under Kubernetes is the pod name.
	ServiceInstanceID string

	// K8sNamespace and K8sPodName annotate telemetry with Kubernetes
	// metadata when set.
	K8sNamespace string
	K8sPodName   string

	// Enabled turns all metrics and tracing on or off
	// (INSTRUMENTATION_ENABLED, default: true).
	Enabled bool

	// MetricsExporter selects "prometheus", "otlp" or "stdout"
	// (default: "prometheus").
	MetricsExporter string

	// TracingExporter selects "otlp", "stdout" or "none"
	// (default: "none").
	TracingExporter string

	// OTLPEndpoint is the OTLP collector host:port, without a protocol
	// prefix, e.g. "localhost:4318".
	OTLPEndpoint string

	// OTLPInsecure disables TLS for OTLP export. Spans carry tenant
	// metadata, so plain HTTP is only acceptable for local development.
	OTLPInsecure bool

	// TraceSamplingRate is the head sampling rate, 0.0 to 1.0
	// (default: 0.1).
	TraceSamplingRate float64

	// DetailedLabels permits high-cardinality labels such as tenant
	// accounts on metrics. Keep disabled in production unless the tenant
	// count is known to be small.
	DetailedLabels bool

	// AuditLogging configures the tool invocation audit trail.
	AuditLogging AuditLoggingConfig
}

// AuditLoggingConfig controls what the audit trail records.
type AuditLoggingConfig struct {
	// Enabled turns audit logging on or off (default: true).
	Enabled bool

	// IncludePII includes full attendee email addresses in audit records.
	// When false only anonymized domain identifiers are logged. Route
	// PII-bearing audit logs to access-controlled storage.
	IncludePII bool

	// LogLevel is the slog level for audit messages (default: "info").
	LogLevel string
}

// DefaultConfig builds a Config from environment variables, falling back
// to production-safe defaults.
func DefaultConfig() Config {
	return Config{
		ServiceName:       envOr("OTEL_SERVICE_NAME", "slotbooker"),
		ServiceVersion:    "unknown",
		ServiceInstanceID: envOr("OTEL_SERVICE_INSTANCE_ID", ""),
		K8sNamespace:      envOr("K8S_NAMESPACE", envOr("POD_NAMESPACE", "")),
		K8sPodName:        envOr("K8S_POD_NAME", envOr("HOSTNAME", "")),
		Enabled:           envBoolOr("INSTRUMENTATION_ENABLED", true),
		MetricsExporter:   envOr("METRICS_EXPORTER", ExporterPrometheus),
		TracingExporter:   envOr("TRACING_EXPORTER", ExporterNone),
		OTLPEndpoint:      envOr("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTLPInsecure:      envBoolOr("OTEL_EXPORTER_OTLP_INSECURE", false),
		TraceSamplingRate: envFloatOr("OTEL_TRACES_SAMPLER_ARG", 0.1),
		DetailedLabels:    envBoolOr("METRICS_DETAILED_LABELS", false),
		AuditLogging: AuditLoggingConfig{
			Enabled:    envBoolOr("AUDIT_LOGGING_ENABLED", true),
			IncludePII: envBoolOr("AUDIT_LOGGING_INCLUDE_PII", false),
			LogLevel:   envOr("AUDIT_LOGGING_LEVEL", "info"),
		},
	}
}

// Validate reports configuration errors before the provider is built.
func (c *Config) Validate() error {
	if c.TraceSamplingRate < 0 || c.TraceSamplingRate > 1 {
		return fmt.Errorf("trace sampling rate must be between 0.0 and 1.0, got %f", c.TraceSamplingRate)
	}

	switch c.MetricsExporter {
	case "", ExporterPrometheus, ExporterOTLP, ExporterStdout:
	default:
		return fmt.Errorf("invalid metrics exporter %q, must be one of: prometheus, otlp, stdout", c.MetricsExporter)
	}

	switch c.TracingExporter {
	case "", ExporterOTLP, ExporterStdout, ExporterNone:
	default:
		return fmt.Errorf("invalid tracing exporter %q, must be one of: otlp, stdout, none", c.TracingExporter)
	}

	if c.TracingExporter == ExporterOTLP && c.OTLPEndpoint == "" {
		return fmt.Errorf("OTLP endpoint is required when using OTLP tracing exporter")
	}
	if c.MetricsExporter == ExporterOTLP && c.OTLPEndpoint == "" {
		return fmt.Errorf("OTLP endpoint is required when using OTLP metrics exporter")
	}

	return nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

// Label values shared across metrics and audit records.
const (
	StatusSuccess = "success"
	StatusError   = "error"

	// Terminal booking outcomes
	OutcomeBooked   = "booked"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"

	// Calendar API error kinds
	ErrorKindAuthExpired = "auth_expired"
	ErrorKindRateLimited = "rate_limited"
	ErrorKindUnavailable = "unavailable"

	// Exporter types
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"
)
