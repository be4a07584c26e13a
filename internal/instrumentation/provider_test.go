package instrumentation

import (
	"context"
	"testing"
	"time"
)

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Enabled:        false,
	})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}

	if provider.Enabled() {
		t.Error("expected provider to be disabled")
	}
	if provider.Metrics() == nil {
		t.Error("Metrics() must be non-nil even when disabled")
	}
	if provider.Tracer("test") == nil {
		t.Error("Tracer() must return a no-op tracer when disabled")
	}
	if err := provider.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestNewProvider_PrometheusExporter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: "prometheus",
		TracingExporter: "none",
	})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	defer func() { _ = provider.Shutdown(ctx) }()

	if !provider.Enabled() {
		t.Error("expected provider to be enabled")
	}
	if provider.Metrics() == nil {
		t.Error("expected metrics recorder to be non-nil")
	}
	if provider.Tracer("test") == nil {
		t.Error("expected tracer to be non-nil")
	}
}

func TestNewProvider_StdoutExporter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: "stdout",
		TracingExporter: "stdout",
	})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	defer func() { _ = provider.Shutdown(ctx) }()

	if !provider.Enabled() {
		t.Error("expected provider to be enabled")
	}
}

func TestNewProvider_ConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{
			name: "invalid metrics exporter",
			config: Config{
				Enabled:         true,
				MetricsExporter: "invalid",
				TracingExporter: "none",
			},
		},
		{
			name: "invalid tracing exporter",
			config: Config{
				Enabled:         true,
				MetricsExporter: "prometheus",
				TracingExporter: "invalid",
			},
		},
		{
			name: "otlp tracing without endpoint",
			config: Config{
				Enabled:         true,
				MetricsExporter: "prometheus",
				TracingExporter: "otlp",
			},
		},
		{
			name: "otlp metrics without endpoint",
			config: Config{
				Enabled:         true,
				MetricsExporter: "otlp",
				TracingExporter: "none",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			tt.config.ServiceName = "test-service"
			tt.config.ServiceVersion = "1.0.0"
			if _, err := NewProvider(ctx, tt.config); err == nil {
				t.Error("NewProvider() expected error, got nil")
			}
		})
	}
}

func TestProvider_Shutdown(t *testing.T) {
	ctx := context.Background()
	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: "prometheus",
		TracingExporter: "none",
	})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}

	if err := provider.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}
