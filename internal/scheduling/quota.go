package scheduling

import (
	"context"
	"fmt"
	"time"
)

// QuotaUsage holds the committed booking counts per calendar day and per
// ISO week for one request. It is derived on demand and never cached across
// requests, so it cannot go stale.
type QuotaUsage struct {
	loc  *time.Location
	day  map[string]int
	week map[string]int
}

// NewQuotaUsage returns an empty usage view keyed in the given timezone.
func NewQuotaUsage(loc *time.Location) *QuotaUsage {
	return &QuotaUsage{
		loc:  loc,
		day:  make(map[string]int),
		week: make(map[string]int),
	}
}

func (u *QuotaUsage) add(start time.Time) {
	u.day[dayKey(start, u.loc)]++
	u.week[weekKey(start, u.loc)]++
}

// DayCount returns the number of committed bookings on the calendar day
// containing t, in the policy timezone.
func (u *QuotaUsage) DayCount(t time.Time) int {
	if u == nil {
		return 0
	}
	return u.day[dayKey(t, u.loc)]
}

// WeekCount returns the number of committed bookings in the ISO week
// containing t, in the policy timezone.
func (u *QuotaUsage) WeekCount(t time.Time) int {
	if u == nil {
		return 0
	}
	return u.week[weekKey(t, u.loc)]
}

// QuotaTracker derives booking counts for day/week windows. By default the
// counts come from the busy intervals carrying the provenance marker; when a
// dedicated ledger is configured it becomes the source of truth instead.
type QuotaTracker struct {
	// Ledger, when non-nil, replaces marker-tagged busy intervals as the
	// provenance source. Use it for calendars that cannot surface the
	// event marker on reads.
	Ledger BookingLedger
}

// Usage computes the committed booking counts for the window [from, to)
// against either the tagged busy intervals or the configured ledger. Each
// call recomputes from scratch.
func (t *QuotaTracker) Usage(ctx context.Context, tenant string, loc *time.Location, busy []BusyInterval, from, to time.Time) (*QuotaUsage, error) {
	usage := NewQuotaUsage(loc)

	if t != nil && t.Ledger != nil {
		slots, err := t.Ledger.Bookings(ctx, tenant, from, to)
		if err != nil {
			return nil, fmt.Errorf("failed to read booking ledger: %w", err)
		}
		for _, s := range slots {
			usage.add(s.Start)
		}
		return usage, nil
	}

	for _, b := range busy {
		if b.Booked {
			usage.add(b.Start)
		}
	}
	return usage, nil
}

// dayKey formats the calendar day of t in loc.
func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// weekKey formats the ISO week of t in loc, e.g. "2026-W35".
func weekKey(t time.Time, loc *time.Location) string {
	year, week := t.In(loc).ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// startOfISOWeek returns midnight of the Monday opening the ISO week that
// contains t, in loc.
func startOfISOWeek(t time.Time, loc *time.Location) time.Time {
	day := startOfDay(t, loc)
	return day.AddDate(0, 0, -((int(day.Weekday()) + 6) % 7))
}
