package server

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/deskflow/slotbooker/internal/gcal"
)

func TestNewServerContext_WithoutLedger(t *testing.T) {
	sc, err := NewServerContext(context.Background(), "")
	if err != nil {
		t.Fatalf("NewServerContext() error = %v", err)
	}
	defer func() { _ = sc.Shutdown() }()

	if sc.BookingLedger() != nil {
		t.Error("BookingLedger() should be nil when no ledger path is configured")
	}
}

func TestNewServerContext_WithLedger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookings.db")

	sc, err := NewServerContext(context.Background(), path)
	if err != nil {
		t.Fatalf("NewServerContext() error = %v", err)
	}
	defer func() { _ = sc.Shutdown() }()

	if sc.BookingLedger() == nil {
		t.Error("BookingLedger() should be set when a ledger path is configured")
	}
}

func TestCalendarClientForTenant_NoToken(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	sc, err := NewServerContext(context.Background(), "")
	if err != nil {
		t.Fatalf("NewServerContext() error = %v", err)
	}
	defer func() { _ = sc.Shutdown() }()

	if client := sc.CalendarClientForTenant("acme"); client != nil {
		t.Error("CalendarClientForTenant() should return nil without a stored token")
	}

	if _, err := sc.AvailabilityServiceForTenant("acme"); err == nil {
		t.Error("AvailabilityServiceForTenant() should fail without calendar access")
	}
	if _, err := sc.BookingServiceForTenant("acme"); err == nil {
		t.Error("BookingServiceForTenant() should fail without calendar access")
	}
}

func TestCalendarClientForTenant_UsesCachedClient(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	sc, err := NewServerContext(context.Background(), "")
	if err != nil {
		t.Fatalf("NewServerContext() error = %v", err)
	}
	defer func() { _ = sc.Shutdown() }()

	client := &gcal.Client{}
	sc.SetCalendarClientForTenant("acme", client)

	if got := sc.CalendarClientForTenant("acme"); got != client {
		t.Error("CalendarClientForTenant() should return the cached client")
	}

	if _, err := sc.AvailabilityServiceForTenant("acme"); err != nil {
		t.Errorf("AvailabilityServiceForTenant() error = %v", err)
	}
	if _, err := sc.BookingServiceForTenant("acme"); err != nil {
		t.Errorf("BookingServiceForTenant() error = %v", err)
	}
}

func TestServerContext_Shutdown(t *testing.T) {
	sc, err := NewServerContext(context.Background(), "")
	if err != nil {
		t.Fatalf("NewServerContext() error = %v", err)
	}

	if sc.IsShutdown() {
		t.Error("IsShutdown() should be false before shutdown")
	}

	if err := sc.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if !sc.IsShutdown() {
		t.Error("IsShutdown() should be true after shutdown")
	}

	// Shutdown is idempotent
	if err := sc.Shutdown(); err != nil {
		t.Fatalf("second Shutdown() error = %v", err)
	}

	select {
	case <-sc.Context().Done():
	default:
		t.Error("server context should be cancelled after shutdown")
	}
}
