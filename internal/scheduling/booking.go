package scheduling

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/deskflow/slotbooker/internal/logging"
)

// BookingState is the lifecycle state of one booking attempt.
type BookingState string

const (
	// StateRequested is the initial state: the caller supplied a slot.
	StateRequested BookingState = "requested"
	// StateRevalidating covers the fresh busy re-read and quota gate.
	StateRevalidating BookingState = "revalidating"
	// StateBooked is terminal: the external calendar holds the event.
	StateBooked BookingState = "booked"
	// StateRejected is terminal: conflict or quota, a normal outcome.
	StateRejected BookingState = "rejected"
	// StateFailed is terminal: the external calendar failed.
	StateFailed BookingState = "failed"
)

// BookingOutcome is the terminal result of a booking attempt. Confirmation
// is set only when State is StateBooked.
type BookingOutcome struct {
	State        BookingState
	Confirmation *BookingConfirmation
}

// BookingCoordinator orchestrates a single booking attempt: it re-validates
// slot freshness against the busy-interval source, enforces quotas and
// commits the event on the external calendar.
//
// The coordinator holds no mutable state between attempts; the external
// calendar is the single source of truth for conflict resolution. Every
// attempt performs its own fresh read immediately before committing, which
// closes the race window between "list slots" and "book slot".
type BookingCoordinator struct {
	Source BusyIntervalSource
	Writer BookingWriter
	Quota  *QuotaTracker
	Logger *slog.Logger

	// Now is the time source, replaceable in tests. Defaults to time.Now.
	Now func() time.Time
}

// createRetries bounds how often a transient create failure is retried.
// Each retry is preceded by a full revalidation; conflict and quota
// rejections are never retried.
const createRetries = 1

// Book runs the attempt through requested -> revalidating -> terminal.
// Rejections and failures return the outcome together with the typed error
// describing it.
func (c *BookingCoordinator) Book(ctx context.Context, tenant string, p *Policy, req BookingRequest) (*BookingOutcome, error) {
	logger := c.logger().With(
		logging.Tenant(tenant),
		slog.Time("slot_start", req.Slot.Start),
	)
	if len(req.AttendeeEmails) > 0 {
		logger = logger.With(logging.Domain(req.AttendeeEmails[0]))
	}

	now := c.now()
	if err := validateSlotShape(p, req.Slot, now); err != nil {
		logger.Warn("booking request rejected before revalidation", logging.Err(err))
		return &BookingOutcome{State: StateRejected}, err
	}

	for attempt := 0; ; attempt++ {
		if err := c.revalidate(ctx, tenant, p, req.Slot); err != nil {
			var conflict *ConflictError
			var quota *QuotaExceededError
			if errors.As(err, &conflict) || errors.As(err, &quota) {
				logger.Info("booking rejected during revalidation", logging.Err(err))
				return &BookingOutcome{State: StateRejected}, err
			}
			logger.Error("revalidation read failed", logging.Err(err))
			return &BookingOutcome{State: StateFailed}, err
		}

		confirmation, err := c.Writer.CreateBooking(ctx, tenant, req)
		if err == nil {
			attrs := []any{
				slog.String("event_id", confirmation.EventID),
				logging.Status(logging.StatusSuccess),
			}
			if len(req.AttendeeEmails) > 0 {
				attrs = append(attrs, logging.Attendee(req.AttendeeEmails[0]))
			}
			logger.Info("booking committed", attrs...)
			if c.Quota != nil && c.Quota.Ledger != nil {
				if lerr := c.Quota.Ledger.Record(ctx, tenant, req.Slot, confirmation.EventID); lerr != nil {
					// The booking exists on the calendar; a ledger write
					// failure must not fail the attempt.
					logger.Warn("failed to record booking in ledger", logging.Err(lerr))
				}
			}
			return &BookingOutcome{State: StateBooked, Confirmation: confirmation}, nil
		}

		var calErr *ExternalCalendarError
		if errors.As(err, &calErr) && calErr.Retryable() && attempt < createRetries {
			// Both racers can pass revalidation; the external create is the
			// serialization point. Never retry blindly: loop back through a
			// fresh revalidation first.
			logger.Warn("transient create failure, revalidating before retry", logging.Err(err))
			continue
		}

		logger.Error("booking create failed", logging.Err(err))
		return &BookingOutcome{State: StateFailed}, err
	}
}

// revalidate re-fetches busy intervals around the slot and re-runs the
// overlap and quota checks. The read is always fresh, never reused from a
// prior availability call.
func (c *BookingCoordinator) revalidate(ctx context.Context, tenant string, p *Policy, slot Slot) error {
	dayStart := startOfDay(slot.Start, p.Location)
	dayEnd := dayStart.AddDate(0, 0, 1)

	// Widen the fetch so busy intervals whose buffered range reaches into
	// the slot's day are included.
	fetchFrom := dayStart.Add(-p.Buffer)
	fetchTo := dayEnd.Add(p.Buffer)
	if c.Quota == nil || c.Quota.Ledger == nil {
		// Without a ledger the week count comes from marker-tagged busy
		// intervals, so the fetch must span the slot's whole ISO week or
		// bookings on its other days would escape the count.
		weekStart := startOfISOWeek(slot.Start, p.Location)
		weekEnd := weekStart.AddDate(0, 0, 7)
		if weekStart.Before(fetchFrom) {
			fetchFrom = weekStart
		}
		if weekEnd.After(fetchTo) {
			fetchTo = weekEnd
		}
	}

	busy, err := c.Source.FetchBusy(ctx, tenant, fetchFrom, fetchTo)
	if err != nil {
		return err
	}

	if overlapsAny(busy, slot.Start, slot.End, p.Buffer) {
		return &ConflictError{Start: slot.Start, End: slot.End}
	}

	usage, err := c.Quota.Usage(ctx, tenant, p.Location, busy, dayStart.Add(-weekSpan), dayEnd.Add(weekSpan))
	if err != nil {
		return err
	}
	if p.MaxBookingsPerDay > 0 && usage.DayCount(slot.Start) >= p.MaxBookingsPerDay {
		return &QuotaExceededError{Scope: QuotaScopeDay, Limit: p.MaxBookingsPerDay}
	}
	if p.MaxBookingsPerWeek > 0 && usage.WeekCount(slot.Start) >= p.MaxBookingsPerWeek {
		return &QuotaExceededError{Scope: QuotaScopeWeek, Limit: p.MaxBookingsPerWeek}
	}
	return nil
}

// weekSpan widens ledger lookups so the whole ISO week around the slot is
// covered by the count window.
const weekSpan = 7 * 24 * time.Hour

// validateSlotShape rejects malformed booking requests before any external
// call is made.
func validateSlotShape(p *Policy, slot Slot, now time.Time) error {
	if slot.Start.IsZero() || slot.End.IsZero() {
		return &ValidationError{Field: "slot", Reason: "start and end must be set"}
	}
	if !slot.End.After(slot.Start) {
		return &ValidationError{Field: "slot", Reason: "end must be after start"}
	}
	if got := slot.End.Sub(slot.Start); got != p.SlotDuration {
		return &ValidationError{
			Field:  "slot",
			Reason: "duration does not match the configured slot duration",
		}
	}
	if slot.Start.Before(now) {
		return &ValidationError{Field: "slot", Reason: "start is in the past"}
	}
	return nil
}

func (c *BookingCoordinator) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *BookingCoordinator) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// startOfDay returns midnight of t's calendar day in loc.
func startOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
