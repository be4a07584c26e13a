package server

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/deskflow/slotbooker/internal/instrumentation"
)

func newTestProvider(t *testing.T) *instrumentation.Provider {
	t.Helper()
	ctx := context.Background()
	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: "prometheus",
		TracingExporter: "none",
	})
	if err != nil {
		t.Fatalf("failed to create test provider: %v", err)
	}
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })
	return provider
}

func newDisabledProvider(t *testing.T) *instrumentation.Provider {
	t.Helper()
	provider, err := instrumentation.NewProvider(context.Background(), instrumentation.Config{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Enabled:        false,
	})
	if err != nil {
		t.Fatalf("failed to create disabled provider: %v", err)
	}
	return provider
}

func TestNewMetricsServer(t *testing.T) {
	tests := []struct {
		name        string
		config      func(t *testing.T) MetricsServerConfig
		wantAddr    string
		errContains string
	}{
		{
			name: "explicit addr",
			config: func(t *testing.T) MetricsServerConfig {
				return MetricsServerConfig{Addr: ":9091", Enabled: true, InstrumentationProvider: newTestProvider(t)}
			},
			wantAddr: ":9091",
		},
		{
			name: "empty addr falls back to default",
			config: func(t *testing.T) MetricsServerConfig {
				return MetricsServerConfig{Enabled: true, InstrumentationProvider: newTestProvider(t)}
			},
			wantAddr: DefaultMetricsAddr,
		},
		{
			name: "nil provider",
			config: func(t *testing.T) MetricsServerConfig {
				return MetricsServerConfig{Addr: ":9090", Enabled: true}
			},
			errContains: "instrumentation provider is required",
		},
		{
			name: "disabled provider",
			config: func(t *testing.T) MetricsServerConfig {
				return MetricsServerConfig{Addr: ":9090", Enabled: true, InstrumentationProvider: newDisabledProvider(t)}
			},
			errContains: "not enabled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, err := NewMetricsServer(tt.config(t))
			if tt.errContains != "" {
				if err == nil {
					t.Fatalf("NewMetricsServer() expected error containing %q, got nil", tt.errContains)
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("NewMetricsServer() error = %v, want containing %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewMetricsServer() unexpected error: %v", err)
			}
			if server.Addr() != tt.wantAddr {
				t.Errorf("Addr() = %q, want %q", server.Addr(), tt.wantAddr)
			}
		})
	}
}

func TestMetricsServer_StartWithReadySignal(t *testing.T) {
	server, err := NewMetricsServer(MetricsServerConfig{
		Addr:                    ":0",
		Enabled:                 true,
		InstrumentationProvider: newTestProvider(t),
	})
	if err != nil {
		t.Fatalf("NewMetricsServer() error = %v", err)
	}

	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- server.StartWithReadySignal(ready)
	}()

	select {
	case <-ready:
	case err := <-done:
		t.Fatalf("server exited before becoming ready: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for ready signal")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}

	select {
	case err := <-done:
		if err != nil && err != http.ErrServerClosed {
			t.Errorf("serve returned %v, want %v", err, http.ErrServerClosed)
		}
	case <-time.After(2 * time.Second):
		t.Error("server did not exit after Shutdown")
	}
}

func TestMetricsServer_Start(t *testing.T) {
	server, err := NewMetricsServer(MetricsServerConfig{
		Addr:                    ":0",
		Enabled:                 true,
		InstrumentationProvider: newTestProvider(t),
	})
	if err != nil {
		t.Fatalf("NewMetricsServer() error = %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- server.Start()
	}()

	// Start exposes no ready signal, so give the listener a moment to bind.
	time.Sleep(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}

	select {
	case err := <-done:
		if err != nil && err != http.ErrServerClosed {
			t.Errorf("Start() returned %v, want %v", err, http.ErrServerClosed)
		}
	case <-time.After(2 * time.Second):
		t.Error("server did not exit after Shutdown")
	}
}

func TestMetricsServer_ShutdownWithoutStart(t *testing.T) {
	server, err := NewMetricsServer(MetricsServerConfig{
		Addr:                    ":9090",
		Enabled:                 true,
		InstrumentationProvider: newTestProvider(t),
	})
	if err != nil {
		t.Fatalf("NewMetricsServer() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() without Start() error = %v", err)
	}
}
