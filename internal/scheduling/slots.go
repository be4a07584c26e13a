package scheduling

import (
	"time"
)

// GenerateSlots computes the ordered, bounded list of bookable slots for a
// policy, a set of busy intervals and a usage view, relative to now. It is a
// pure function: identical inputs always yield identical output, and it
// performs no I/O.
//
// Days are scanned from now's calendar date (policy timezone) through
// now + DaysAheadHorizon days. Closed weekdays, holidays and days without a
// business-hours entry contribute nothing; a day fully consumed by buffered
// busy intervals yields zero slots, which is a normal outcome. The result is
// chronologically sorted and truncated to MaxSlotsReturned.
func GenerateSlots(p *Policy, busy []BusyInterval, usage *QuotaUsage, now time.Time) []Slot {
	slots := []Slot{}
	local := now.In(p.Location)
	year, month, day := local.Date()

	for offset := 0; offset <= p.DaysAheadHorizon; offset++ {
		date := time.Date(year, month, day+offset, 0, 0, 0, 0, p.Location)

		if p.ClosedWeekdays[date.Weekday()] {
			continue
		}
		if p.HolidayDates[date.Format("2006-01-02")] {
			continue
		}
		window, open := p.BusinessHours[date.Weekday()]
		if !open {
			continue
		}

		if p.MaxBookingsPerDay > 0 && usage.DayCount(date) >= p.MaxBookingsPerDay {
			continue
		}
		if p.MaxBookingsPerWeek > 0 && usage.WeekCount(date) >= p.MaxBookingsPerWeek {
			continue
		}

		openAt := wallClock(date, window.Open, p.Location)
		closeAt := wallClock(date, window.Close, p.Location)

		start := openAt
		if offset == 0 && p.SkipPastTimeToday && now.After(start) {
			start = now
		}

		for ; !start.Add(p.SlotDuration).After(closeAt); start = start.Add(p.SlotInterval) {
			end := start.Add(p.SlotDuration)
			if overlapsAny(busy, start, end, p.Buffer) {
				continue
			}
			slots = append(slots, Slot{Start: start, End: end})
			if len(slots) == p.MaxSlotsReturned {
				return slots
			}
		}
	}

	return slots
}

// overlapsAny reports whether [start, end) collides with any busy interval
// expanded by buffer on both ends.
func overlapsAny(busy []BusyInterval, start, end time.Time, buffer time.Duration) bool {
	for _, b := range busy {
		if b.Overlaps(start, end, buffer) {
			return true
		}
	}
	return false
}

// wallClock resolves minutes-from-midnight on a calendar day to an absolute
// instant, honoring DST transitions in loc.
func wallClock(date time.Time, minutes int, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), minutes/60, minutes%60, 0, 0, loc)
}
