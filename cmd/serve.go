package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/deskflow/slotbooker/internal/instrumentation"
	"github.com/deskflow/slotbooker/internal/server"
	"github.com/deskflow/slotbooker/internal/tools/scheduling_tools"
)

// serveOptions collects the serve command's flag values after environment
// fallbacks have been applied.
type serveOptions struct {
	debug          bool
	transport      string
	httpAddr       string
	ledgerPath     string
	metricsEnabled bool
	metricsAddr    string
}

// applyEnv fills in values from the environment for flags the user did not
// set explicitly. Flags always win over env vars.
func (o *serveOptions) applyEnv(cmd *cobra.Command) {
	if !cmd.Flags().Changed("metrics-enabled") && os.Getenv("METRICS_ENABLED") == "false" {
		o.metricsEnabled = false
	}
	if !cmd.Flags().Changed("metrics-addr") {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			o.metricsAddr = addr
		}
	}
	if !cmd.Flags().Changed("ledger-path") {
		if path := os.Getenv("BOOKING_LEDGER_PATH"); path != "" {
			o.ledgerPath = path
		}
	}
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server exposing the scheduling
tools for AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport

Booking Provenance:
  By default, bookings created by this server are identified by a private
  marker on the calendar event. With --ledger-path, a local SQLite booking
  ledger is used instead; this survives manual edits to the events and
  keeps booking quotas accurate.

Google Calendar Credentials:
  GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET env vars configure the OAuth
  client used for tenant calendar access. Tenants authorize once via the
  scheduling_get_auth_url / scheduling_save_auth_code tools.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.applyEnv(cmd)
			return runServe(opts)
		},
	}

	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&opts.transport, "transport", "stdio", "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&opts.httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().StringVar(&opts.ledgerPath, "ledger-path", "", "Path to the SQLite booking ledger. When set, booking quotas are tracked in the ledger instead of calendar event markers. Can also use BOOKING_LEDGER_PATH env var.")
	cmd.Flags().BoolVar(&opts.metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", ":9090", "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(opts serveOptions) error {
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Logs go to stderr so they never corrupt the stdio transport.
	logLevel := slog.LevelInfo
	if opts.debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			slog.Error("instrumentation shutdown failed", "error", err)
		}
	}()

	// The metrics listener only makes sense for network transports.
	var metricsServer *server.MetricsServer
	if opts.transport != "stdio" && opts.metricsEnabled && provider.Enabled() {
		metricsServer, err = startMetricsServer(provider, opts.metricsAddr)
		if err != nil {
			return err
		}
	}

	serverContext, err := server.NewServerContext(shutdownCtx, opts.ledgerPath)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	if provider.Enabled() {
		serverContext.SetInstrumentation(provider.Metrics(),
			instrumentation.NewAuditLoggerWithConfig(nil, instrConfig.AuditLogging))
	}
	defer func() {
		if metricsServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				slog.Error("metrics server shutdown failed", "error", err)
			}
		}
		if err := serverContext.Shutdown(); err != nil {
			slog.Error("server context shutdown failed", "error", err)
		}
	}()

	mcpSrv := mcpserver.NewMCPServer("slotbooker", version,
		mcpserver.WithToolCapabilities(true),
	)
	if err := scheduling_tools.RegisterSchedulingTools(mcpSrv, serverContext); err != nil {
		return fmt.Errorf("failed to register scheduling tools: %w", err)
	}

	if opts.ledgerPath != "" {
		slog.Info("booking ledger enabled", "path", opts.ledgerPath)
	}

	switch opts.transport {
	case "stdio":
		return runStdioServer(mcpSrv)
	case "streamable-http":
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, opts)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", opts.transport)
	}
}

// startMetricsServer brings the dedicated metrics listener up and waits for
// the port to bind before returning.
func startMetricsServer(provider *instrumentation.Provider, addr string) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    addr,
		Enabled:                 true,
		InstrumentationProvider: provider,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	ready := make(chan struct{})
	errc := make(chan error, 1)
	go func() {
		if err := metricsServer.StartWithReadySignal(ready); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
		close(errc)
	}()

	select {
	case <-ready:
		slog.Info("metrics server started", "addr", metricsServer.Addr())
		return metricsServer, nil
	case err := <-errc:
		return nil, fmt.Errorf("metrics server failed to start: %w", err)
	case <-time.After(5 * time.Second):
		return nil, fmt.Errorf("metrics server startup timed out")
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	if err := mcpserver.ServeStdio(mcpSrv); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, serverContext *server.ServerContext, opts serveOptions) error {
	streamableSrv := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithEndpointPath("/mcp"),
	)

	// The MCP endpoint shares its listener with the health endpoints.
	mux := http.NewServeMux()
	mux.Handle("/mcp", streamableSrv)

	healthChecker := server.NewHealthChecker(serverContext)
	healthChecker.RegisterHealthEndpoints(mux)

	httpServer := &http.Server{
		Addr:    opts.httpAddr,
		Handler: server.InstrumentationMiddleware(serverContext.Metrics(), mux),
	}

	slog.Info("streamable HTTP server starting",
		"addr", opts.httpAddr,
		"mcp_endpoint", "/mcp",
		"health_endpoints", "/healthz /readyz",
	)
	if opts.metricsEnabled {
		slog.Info("metrics endpoint available", "addr", opts.metricsAddr, "path", "/metrics")
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		// Flip readiness first so load balancers drain before the listener
		// closes.
		slog.Info("shutdown signal received, stopping HTTP server")
		healthChecker.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	slog.Info("HTTP server stopped")
	return nil
}
