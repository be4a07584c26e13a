package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/deskflow/slotbooker/internal/instrumentation"
)

// Defaults for the standalone metrics listener.
const (
	DefaultMetricsAddr         = ":9090"
	DefaultMetricsReadTimeout  = 10 * time.Second
	DefaultMetricsWriteTimeout = 10 * time.Second
	DefaultMetricsIdleTimeout  = 60 * time.Second

	// DefaultShutdownTimeout bounds graceful shutdown.
	DefaultShutdownTimeout = 30 * time.Second
)

// MetricsServerConfig configures the standalone metrics listener.
type MetricsServerConfig struct {
	Addr    string
	Enabled bool

	// InstrumentationProvider must be enabled; the Prometheus exporter it
	// sets up feeds the registry that /metrics exposes.
	InstrumentationProvider *instrumentation.Provider
}

// MetricsServer exposes /metrics on its own port so operational data never
// shares a listener with tool traffic.
type MetricsServer struct {
	httpServer *http.Server
	addr       string
}

// NewMetricsServer validates config and returns an unstarted server.
func NewMetricsServer(config MetricsServerConfig) (*MetricsServer, error) {
	if config.InstrumentationProvider == nil {
		return nil, fmt.Errorf("instrumentation provider is required for metrics server")
	}
	if !config.InstrumentationProvider.Enabled() {
		return nil, fmt.Errorf("instrumentation provider is not enabled")
	}

	addr := config.Addr
	if addr == "" {
		addr = DefaultMetricsAddr
	}
	return &MetricsServer{addr: addr}, nil
}

// Start binds the listener and serves until Shutdown. It blocks; run it in
// a goroutine for non-blocking operation.
func (s *MetricsServer) Start() error {
	return s.serve(nil)
}

// StartWithReadySignal is Start, except ready is closed once the listener
// is bound. Callers that must confirm the port came up use this form.
func (s *MetricsServer) StartWithReadySignal(ready chan<- struct{}) error {
	return s.serve(ready)
}

func (s *MetricsServer) serve(ready chan<- struct{}) error {
	mux := http.NewServeMux()
	// The OpenTelemetry prometheus exporter writes to the default Prometheus
	// registry, which promhttp.Handler reads.
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: DefaultMetricsReadTimeout,
		WriteTimeout:      DefaultMetricsWriteTimeout,
		IdleTimeout:       DefaultMetricsIdleTimeout,
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	slog.Info("starting metrics server", "addr", s.addr)
	if ready != nil {
		close(ready)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown drains in-flight scrapes and stops the server. Safe to call on
// a server that never started.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	slog.Info("shutting down metrics server")
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the configured listen address.
func (s *MetricsServer) Addr() string {
	return s.addr
}
