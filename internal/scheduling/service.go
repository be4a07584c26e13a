package scheduling

import (
	"context"
	"log/slog"
	"time"

	"github.com/deskflow/slotbooker/internal/logging"
)

// AvailabilityService answers "what slots are free" for one tenant. It
// composes the validated policy, the busy-interval source, the quota tracker
// and the pure slot generator. Requests are independent; nothing is shared
// or cached between them.
type AvailabilityService struct {
	Source BusyIntervalSource
	Quota  *QuotaTracker
	Logger *slog.Logger

	// Now is the time source, replaceable in tests. Defaults to time.Now.
	Now func() time.Time
}

// AvailableSlots computes the bookable slots for the policy horizon. An
// empty result is a normal outcome; a failed busy-interval read propagates
// as an error and is never reported as zero availability.
func (s *AvailabilityService) AvailableSlots(ctx context.Context, tenant string, p *Policy) ([]Slot, error) {
	logger := s.logger().With(
		logging.Tenant(tenant),
		logging.Operation("available_slots"),
	)

	now := s.now()
	from := startOfDay(now, p.Location)
	to := from.AddDate(0, 0, p.DaysAheadHorizon+1)

	// Quota counts cover whole ISO weeks: bookings committed earlier in the
	// current week still count against the week cap even though the horizon
	// starts today.
	usageFrom := startOfISOWeek(from, p.Location)
	usageTo := startOfISOWeek(to.AddDate(0, 0, -1), p.Location).AddDate(0, 0, 7)

	fetchFrom := from.Add(-p.Buffer)
	fetchTo := to.Add(p.Buffer)
	if s.Quota == nil || s.Quota.Ledger == nil {
		// Marker provenance rides on the fetched intervals, so the fetch
		// itself must span the same weeks as the count window.
		if usageFrom.Before(fetchFrom) {
			fetchFrom = usageFrom
		}
		if usageTo.After(fetchTo) {
			fetchTo = usageTo
		}
	}

	busy, err := s.Source.FetchBusy(ctx, tenant, fetchFrom, fetchTo)
	if err != nil {
		logger.Error("busy interval fetch failed", logging.Err(err))
		return nil, err
	}

	usage, err := s.Quota.Usage(ctx, tenant, p.Location, busy, usageFrom, usageTo)
	if err != nil {
		logger.Error("quota usage lookup failed", logging.Err(err))
		return nil, err
	}

	slots := GenerateSlots(p, busy, usage, now)
	logger.Debug("availability computed",
		slog.Int("busy_intervals", len(busy)),
		slog.Int("slots", len(slots)))
	return slots, nil
}

func (s *AvailabilityService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AvailabilityService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// BookingService answers "book this slot" for one tenant by delegating to
// the coordinator. It exists so the transport layer talks to one façade per
// request contract, mirroring AvailabilityService.
type BookingService struct {
	Coordinator *BookingCoordinator
	Logger      *slog.Logger
}

// Book runs a booking attempt to its terminal state. Conflict and quota
// rejections come back as typed errors alongside the outcome; the caller is
// expected to request fresh availability after a conflict.
func (s *BookingService) Book(ctx context.Context, tenant string, p *Policy, req BookingRequest) (*BookingOutcome, error) {
	outcome, err := s.Coordinator.Book(ctx, tenant, p, req)
	if s.Logger != nil {
		s.Logger.Info("booking attempt finished",
			logging.Tenant(tenant),
			slog.String("state", string(outcome.State)),
			logging.Err(err))
	}
	return outcome, err
}
