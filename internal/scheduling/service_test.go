package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAvailabilityService(src BusyIntervalSource, now time.Time) *AvailabilityService {
	return &AvailabilityService{
		Source: src,
		Quota:  &QuotaTracker{},
		Now:    func() time.Time { return now },
	}
}

func TestAvailableSlots_ComposesFetchQuotaAndGenerator(t *testing.T) {
	p := weekdayPolicy(t, nil)
	src := &fakeSource{intervals: []BusyInterval{{
		Start: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC),
	}}}
	svc := newAvailabilityService(src, refMonday)

	slots, err := svc.AvailableSlots(context.Background(), "acme", p)

	require.NoError(t, err)
	require.NotEmpty(t, slots)
	assert.Equal(t, time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC), slots[0].Start)
	assert.Equal(t, 1, src.callCount(), "one busy fetch covers the whole horizon")
}

func TestAvailableSlots_FetchFailureIsNotZeroAvailability(t *testing.T) {
	p := weekdayPolicy(t, nil)
	src := &fakeSource{err: &ExternalCalendarError{
		Kind: CalendarRateLimited,
		Op:   "list",
		Err:  errors.New("quota exhausted"),
	}}
	svc := newAvailabilityService(src, refMonday)

	slots, err := svc.AvailableSlots(context.Background(), "acme", p)

	require.Error(t, err)
	assert.Nil(t, slots)
	var calErr *ExternalCalendarError
	require.True(t, errors.As(err, &calErr))
	assert.Equal(t, CalendarRateLimited, calErr.Kind)
}

func TestAvailableSlots_EmptyResultIsNormal(t *testing.T) {
	p := weekdayPolicy(t, func(in *PolicyInput) {
		in.ClosedWeekdays = []string{"monday", "tuesday"}
	})
	svc := newAvailabilityService(&fakeSource{}, refMonday)

	slots, err := svc.AvailableSlots(context.Background(), "acme", p)

	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestAvailableSlots_IdempotentRead(t *testing.T) {
	p := weekdayPolicy(t, func(in *PolicyInput) { in.DaysAheadHorizon = 3 })
	src := &fakeSource{intervals: []BusyInterval{{
		Start: time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 3, 11, 0, 0, 0, time.UTC),
	}}}
	svc := newAvailabilityService(src, refMonday)

	first, err := svc.AvailableSlots(context.Background(), "acme", p)
	require.NoError(t, err)
	second, err := svc.AvailableSlots(context.Background(), "acme", p)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAvailableSlots_PriorBookingConsumesDayQuota(t *testing.T) {
	p := weekdayPolicy(t, func(in *PolicyInput) { in.MaxBookingsPerDay = 1 })
	src := &fakeSource{intervals: []BusyInterval{{
		Start:  time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
		End:    time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC),
		Booked: true,
	}}}
	svc := newAvailabilityService(src, refMonday)

	slots, err := svc.AvailableSlots(context.Background(), "acme", p)

	require.NoError(t, err)
	for _, s := range slots {
		assert.NotEqual(t, 2, s.Start.In(p.Location).Day(), "monday already holds its one booking")
	}
}

func TestAvailableSlots_WeekQuotaSeesEarlierDaysOfCurrentWeek(t *testing.T) {
	p := weekdayPolicy(t, func(in *PolicyInput) {
		in.MaxBookingsPerWeek = 2
		in.DaysAheadHorizon = 1
	})
	// Two committed bookings on Monday and Tuesday; the request arrives on
	// Thursday of the same ISO week, so the week is already at its cap and
	// Thursday and Friday must yield nothing.
	src := &windowedSource{intervals: []BusyInterval{
		{
			Start:  time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
			End:    time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC),
			Booked: true,
		},
		{
			Start:  time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC),
			End:    time.Date(2025, 6, 3, 9, 30, 0, 0, time.UTC),
			Booked: true,
		},
	}}
	thursday := time.Date(2025, 6, 5, 8, 0, 0, 0, time.UTC)
	svc := newAvailabilityService(src, thursday)

	slots, err := svc.AvailableSlots(context.Background(), "acme", p)

	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestBookingService_DelegatesToCoordinator(t *testing.T) {
	p, slot, now := bookingFixture(t)
	src := &fakeSource{}
	w := &fakeWriter{}
	svc := &BookingService{Coordinator: newCoordinator(src, w, now)}

	outcome, err := svc.Book(context.Background(), "acme", p, BookingRequest{
		Slot:           slot,
		Title:          "Demo call",
		AttendeeEmails: []string{"visitor@example.com"},
	})

	require.NoError(t, err)
	assert.Equal(t, StateBooked, outcome.State)
	require.Equal(t, 1, w.createCount())
	assert.Equal(t, []string{"visitor@example.com"}, w.created[0].AttendeeEmails)
}
