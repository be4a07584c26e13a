// Package server provides the MCP server context and operational HTTP
// endpoints for the slotbooker application.
//
// # Key Components
//
// ServerContext manages per-tenant Google Calendar clients with lazy
// initialization and caching, and assembles the scheduling services each
// tool invocation needs. When a booking ledger is configured it is shared
// by every tenant's quota tracker.
//
// HealthChecker exposes /healthz and /readyz endpoints for Kubernetes
// probes, reporting readiness and shutdown state.
//
// MetricsServer serves Prometheus metrics on a dedicated port, isolating
// operational metrics from the MCP traffic.
package server
