package scheduling

import (
	"fmt"
	"strings"
	"time"
)

// Policy defaults applied only when the tenant never set the field.
// Invalid explicit values are rejected, never repaired.
const (
	DefaultMaxSlotsReturned = 10
	DefaultBufferMinutes    = 0
)

// HoursInput is a raw open/close pair in "HH:MM" wall-clock notation.
type HoursInput struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// PolicyInput is the raw, per-tenant scheduling configuration as it arrives
// from the upstream layer. It is untrusted until NewPolicy validates it.
type PolicyInput struct {
	Timezone            string                `json:"timezone"`
	DaysAheadHorizon    int                   `json:"daysAheadHorizon"`
	SlotDurationMinutes int                   `json:"slotDurationMinutes"`
	SlotIntervalMinutes int                   `json:"slotIntervalMinutes"`
	MaxSlotsReturned    int                   `json:"maxSlotsReturned,omitempty"`
	SkipPastTimeToday   *bool                 `json:"skipPastTimeToday,omitempty"`
	BusinessHours       map[string]HoursInput `json:"businessHours"`
	ClosedWeekdays      []string              `json:"closedWeekdays,omitempty"`
	HolidayDates        []string              `json:"holidayDates,omitempty"`
	BufferMinutes       *int                  `json:"bufferMinutes,omitempty"`
	MaxBookingsPerDay   int                   `json:"maxBookingsPerDay,omitempty"`
	MaxBookingsPerWeek  int                   `json:"maxBookingsPerWeek,omitempty"`
}

// DayWindow is a validated open/close pair, in minutes from midnight of the
// policy timezone. Open < Close always holds.
type DayWindow struct {
	Open  int
	Close int
}

// Policy is the validated, immutable scheduling configuration for one
// tenant. All wall-clock fields are interpreted in Location.
type Policy struct {
	Timezone          string
	Location          *time.Location
	DaysAheadHorizon  int
	SlotDuration      time.Duration
	SlotInterval      time.Duration
	MaxSlotsReturned  int
	SkipPastTimeToday bool

	// BusinessHours maps weekday to its open window. A weekday absent from
	// the map has zero availability.
	BusinessHours map[time.Weekday]DayWindow

	// ClosedWeekdays and HolidayDates are exclusionary overlays; a business
	// hours entry never re-opens them. Holiday keys are "2006-01-02" in the
	// policy timezone.
	ClosedWeekdays map[time.Weekday]bool
	HolidayDates   map[string]bool

	Buffer time.Duration

	// MaxBookingsPerDay and MaxBookingsPerWeek cap the number of bookings
	// this system creates. Zero means no cap.
	MaxBookingsPerDay  int
	MaxBookingsPerWeek int
}

// NewPolicy validates a raw configuration payload and produces a Policy, or
// fails fast with a ConfigurationError naming the offending field.
func NewPolicy(in PolicyInput) (*Policy, error) {
	if in.Timezone == "" {
		return nil, &ConfigurationError{Field: "timezone", Reason: "must be set"}
	}
	loc, err := time.LoadLocation(in.Timezone)
	if err != nil {
		return nil, &ConfigurationError{Field: "timezone", Reason: fmt.Sprintf("unknown IANA zone %q", in.Timezone)}
	}
	if in.DaysAheadHorizon < 1 {
		return nil, &ConfigurationError{Field: "daysAheadHorizon", Reason: "must be at least 1"}
	}
	if in.SlotDurationMinutes <= 0 {
		return nil, &ConfigurationError{Field: "slotDurationMinutes", Reason: "must be positive"}
	}
	if in.SlotIntervalMinutes <= 0 {
		return nil, &ConfigurationError{Field: "slotIntervalMinutes", Reason: "must be positive"}
	}

	maxSlots := in.MaxSlotsReturned
	if maxSlots == 0 {
		maxSlots = DefaultMaxSlotsReturned
	}
	if maxSlots < 1 {
		return nil, &ConfigurationError{Field: "maxSlotsReturned", Reason: "must be at least 1"}
	}

	buffer := DefaultBufferMinutes
	if in.BufferMinutes != nil {
		buffer = *in.BufferMinutes
	}
	if buffer < 0 {
		return nil, &ConfigurationError{Field: "bufferMinutes", Reason: "must not be negative"}
	}

	if in.MaxBookingsPerDay < 0 {
		return nil, &ConfigurationError{Field: "maxBookingsPerDay", Reason: "must not be negative"}
	}
	if in.MaxBookingsPerWeek < 0 {
		return nil, &ConfigurationError{Field: "maxBookingsPerWeek", Reason: "must not be negative"}
	}

	hours := make(map[time.Weekday]DayWindow, len(in.BusinessHours))
	for day, h := range in.BusinessHours {
		wd, err := ParseWeekday(day)
		if err != nil {
			return nil, &ConfigurationError{Field: "businessHours", Reason: err.Error()}
		}
		open, err := parseWallClock(h.Open)
		if err != nil {
			return nil, &ConfigurationError{
				Field:  "businessHours." + strings.ToLower(day) + ".open",
				Reason: err.Error(),
			}
		}
		close, err := parseWallClock(h.Close)
		if err != nil {
			return nil, &ConfigurationError{
				Field:  "businessHours." + strings.ToLower(day) + ".close",
				Reason: err.Error(),
			}
		}
		if open >= close {
			return nil, &ConfigurationError{
				Field:  "businessHours." + strings.ToLower(day),
				Reason: fmt.Sprintf("open %s must be before close %s", h.Open, h.Close),
			}
		}
		hours[wd] = DayWindow{Open: open, Close: close}
	}

	closed := make(map[time.Weekday]bool, len(in.ClosedWeekdays))
	for _, day := range in.ClosedWeekdays {
		wd, err := ParseWeekday(day)
		if err != nil {
			return nil, &ConfigurationError{Field: "closedWeekdays", Reason: err.Error()}
		}
		closed[wd] = true
	}

	holidays := make(map[string]bool, len(in.HolidayDates))
	for _, d := range in.HolidayDates {
		parsed, err := time.ParseInLocation("2006-01-02", d, loc)
		if err != nil {
			return nil, &ConfigurationError{Field: "holidayDates", Reason: fmt.Sprintf("invalid date %q, want YYYY-MM-DD", d)}
		}
		holidays[parsed.Format("2006-01-02")] = true
	}

	skipPast := true
	if in.SkipPastTimeToday != nil {
		skipPast = *in.SkipPastTimeToday
	}

	return &Policy{
		Timezone:           in.Timezone,
		Location:           loc,
		DaysAheadHorizon:   in.DaysAheadHorizon,
		SlotDuration:       time.Duration(in.SlotDurationMinutes) * time.Minute,
		SlotInterval:       time.Duration(in.SlotIntervalMinutes) * time.Minute,
		MaxSlotsReturned:   maxSlots,
		SkipPastTimeToday:  skipPast,
		BusinessHours:      hours,
		ClosedWeekdays:     closed,
		HolidayDates:       holidays,
		Buffer:             time.Duration(buffer) * time.Minute,
		MaxBookingsPerDay:  in.MaxBookingsPerDay,
		MaxBookingsPerWeek: in.MaxBookingsPerWeek,
	}, nil
}

// weekdayNames accepts full names and common three-letter abbreviations,
// case insensitive.
var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

// ParseWeekday resolves a weekday name such as "Monday" or "mon".
func ParseWeekday(name string) (time.Weekday, error) {
	wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown weekday %q", name)
	}
	return wd, nil
}

// parseWallClock parses "HH:MM" into minutes from midnight.
func parseWallClock(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}
