package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/deskflow/slotbooker/internal/gcal"
	"github.com/deskflow/slotbooker/internal/instrumentation"
	"github.com/deskflow/slotbooker/internal/ledger"
	"github.com/deskflow/slotbooker/internal/scheduling"
)

// ServerContext holds the context for the MCP server
type ServerContext struct {
	ctx             context.Context
	cancel          context.CancelFunc
	calendarClients map[string]*gcal.Client // Maps tenant account to calendar client
	bookingLedger   *ledger.Store           // Optional booking ledger, nil when tagging is used
	metrics         *instrumentation.Metrics
	auditLogger     *instrumentation.AuditLogger
	mu              sync.RWMutex
	shutdown        bool
}

// NewServerContext creates a new server context. ledgerPath is optional; when
// non-empty a SQLite booking ledger is opened there and used as the quota
// provenance source instead of calendar event tagging.
func NewServerContext(ctx context.Context, ledgerPath string) (*ServerContext, error) {
	shutdownCtx, cancel := context.WithCancel(ctx)

	var store *ledger.Store
	if ledgerPath != "" {
		var err error
		store, err = ledger.Open(ledgerPath)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to open booking ledger: %w", err)
		}
	}

	// Calendar clients are lazily initialized per tenant on first use.
	return &ServerContext{
		ctx:             shutdownCtx,
		cancel:          cancel,
		calendarClients: make(map[string]*gcal.Client),
		bookingLedger:   store,
		shutdown:        false,
	}, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// CalendarClientForTenant returns the calendar client for a specific tenant
// account. Creates and caches the client if it doesn't exist yet.
// Returns nil if the tenant has no token.
func (sc *ServerContext) CalendarClientForTenant(tenant string) *gcal.Client {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	// Check if client already exists
	if client, ok := sc.calendarClients[tenant]; ok {
		return client
	}

	// Try to create client if token exists
	if !gcal.HasTokenForAccount(tenant) {
		return nil
	}

	client, err := gcal.NewClientForAccount(sc.ctx, tenant)
	if err != nil {
		fmt.Printf("Warning: failed to create calendar client for tenant %s: %v\n", tenant, err)
		return nil
	}
	if sc.metrics != nil {
		client = client.WithMetrics(sc.metrics)
	}

	sc.calendarClients[tenant] = client
	return client
}

// SetCalendarClientForTenant sets the calendar client for a specific tenant
func (sc *ServerContext) SetCalendarClientForTenant(tenant string, client *gcal.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.calendarClients[tenant] = client
}

// BookingLedger returns the configured booking ledger, or nil when quota
// provenance comes from calendar event tagging.
func (sc *ServerContext) BookingLedger() scheduling.BookingLedger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	if sc.bookingLedger == nil {
		return nil
	}
	return sc.bookingLedger
}

// AvailabilityServiceForTenant builds an availability service bound to the
// tenant's calendar. Returns an error if the tenant has no usable client.
func (sc *ServerContext) AvailabilityServiceForTenant(tenant string) (*scheduling.AvailabilityService, error) {
	client := sc.CalendarClientForTenant(tenant)
	if client == nil {
		return nil, fmt.Errorf("no calendar access for tenant %s", tenant)
	}
	return &scheduling.AvailabilityService{
		Source: client,
		Quota:  &scheduling.QuotaTracker{Ledger: sc.BookingLedger()},
	}, nil
}

// BookingServiceForTenant builds a booking service bound to the tenant's
// calendar. Returns an error if the tenant has no usable client.
func (sc *ServerContext) BookingServiceForTenant(tenant string) (*scheduling.BookingService, error) {
	client := sc.CalendarClientForTenant(tenant)
	if client == nil {
		return nil, fmt.Errorf("no calendar access for tenant %s", tenant)
	}
	return &scheduling.BookingService{
		Coordinator: &scheduling.BookingCoordinator{
			Source: client,
			Writer: client,
			Quota:  &scheduling.QuotaTracker{Ledger: sc.BookingLedger()},
		},
	}, nil
}

// SetInstrumentation wires the metrics recorder and audit logger into the
// server context so tool handlers can record invocations.
func (sc *ServerContext) SetInstrumentation(metrics *instrumentation.Metrics, auditLogger *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = metrics
	sc.auditLogger = auditLogger
}

// Metrics returns the metrics recorder, or nil when instrumentation is not configured.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// AuditLogger returns the audit logger, or nil when audit logging is not configured.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()

	if sc.bookingLedger != nil {
		if err := sc.bookingLedger.Close(); err != nil {
			return fmt.Errorf("failed to close booking ledger: %w", err)
		}
	}
	return nil
}
