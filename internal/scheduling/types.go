package scheduling

import (
	"context"
	"time"
)

// BusyInterval is an externally-sourced commitment on the tenant calendar.
// Start < End, both absolute instants. Booked marks intervals that were
// created by this engine (identified by the provenance marker on the event);
// untagged events are opaque busy time and never count against quotas.
type BusyInterval struct {
	Start  time.Time
	End    time.Time
	Booked bool
}

// Overlaps reports whether the interval, expanded by buffer on both ends,
// overlaps the candidate range [start, end).
func (b BusyInterval) Overlaps(start, end time.Time, buffer time.Duration) bool {
	return start.Before(b.End.Add(buffer)) && end.After(b.Start.Add(-buffer))
}

// Slot is a computed, not-yet-committed bookable time range. End - Start is
// always exactly the policy slot duration.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// BusyIntervalSource reads the existing commitments on a tenant calendar for
// a time range. A fetch failure is inconclusive and must propagate; it is
// never equivalent to an empty result.
type BusyIntervalSource interface {
	FetchBusy(ctx context.Context, tenant string, from, to time.Time) ([]BusyInterval, error)
}

// BookingRequest describes the event to create for a confirmed booking.
type BookingRequest struct {
	Slot              Slot
	Title             string
	Description       string
	AttendeeEmails    []string
	AddConferenceLink bool
}

// BookingConfirmation is the identity of a committed booking on the
// external calendar.
type BookingConfirmation struct {
	EventID        string `json:"eventId"`
	ConferenceLink string `json:"conferenceLink,omitempty"`
}

// BookingWriter commits a booking to the external calendar. The create call
// is the serialization point between concurrent attempts for the same slot.
type BookingWriter interface {
	CreateBooking(ctx context.Context, tenant string, req BookingRequest) (*BookingConfirmation, error)
}

// BookingLedger is an optional dedicated log of bookings created by this
// engine, used for quota provenance when the external calendar cannot
// distinguish our events from others.
type BookingLedger interface {
	Record(ctx context.Context, tenant string, slot Slot, eventID string) error
	Bookings(ctx context.Context, tenant string, from, to time.Time) ([]Slot, error)
}
