package gcal

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"

	"github.com/deskflow/slotbooker/internal/scheduling"
)

const (
	// bookingMarkerKey tags events created by this engine in the private
	// extended properties of the calendar event. Events without the marker
	// are opaque busy time and never count against booking quotas.
	bookingMarkerKey   = "slotbookerBooking"
	bookingMarkerValue = "true"
)

// toBusyInterval converts a calendar event into a busy interval, anchoring
// all-day events in loc. Cancelled and transparent ("free") events do not
// block slots and are dropped.
func toBusyInterval(event *calendar.Event, loc *time.Location) (scheduling.BusyInterval, bool) {
	if event == nil || event.Status == "cancelled" || event.Transparency == "transparent" {
		return scheduling.BusyInterval{}, false
	}

	start, okStart := eventTime(event.Start, loc)
	end, okEnd := eventTime(event.End, loc)
	if !okStart || !okEnd || !end.After(start) {
		return scheduling.BusyInterval{}, false
	}

	return scheduling.BusyInterval{
		Start:  start,
		End:    end,
		Booked: isBookingEvent(event),
	}, true
}

// eventTime resolves the start or end of an event. All-day events carry a
// date instead of a timestamp and block the day in the event's own timezone
// when it names one, otherwise in loc.
func eventTime(edt *calendar.EventDateTime, loc *time.Location) (time.Time, bool) {
	if edt == nil {
		return time.Time{}, false
	}
	if edt.DateTime != "" {
		ts, err := time.Parse(time.RFC3339, edt.DateTime)
		if err != nil {
			return time.Time{}, false
		}
		return ts, true
	}
	if edt.Date != "" {
		if edt.TimeZone != "" {
			if l, err := time.LoadLocation(edt.TimeZone); err == nil {
				loc = l
			}
		}
		ts, err := time.ParseInLocation("2006-01-02", edt.Date, loc)
		if err != nil {
			return time.Time{}, false
		}
		return ts, true
	}
	return time.Time{}, false
}

// calendarLocation resolves a calendar timezone name from a listing response,
// falling back to UTC when the name is absent or unknown.
func calendarLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// isBookingEvent reports whether the event carries the provenance marker.
func isBookingEvent(event *calendar.Event) bool {
	if event.ExtendedProperties == nil || event.ExtendedProperties.Private == nil {
		return false
	}
	return event.ExtendedProperties.Private[bookingMarkerKey] == bookingMarkerValue
}

// conferenceLink extracts the video entry point of a created event, falling
// back to the legacy hangout link when conference data is absent.
func conferenceLink(event *calendar.Event) string {
	if event.ConferenceData != nil {
		for _, ep := range event.ConferenceData.EntryPoints {
			if ep.EntryPointType == "video" && ep.Uri != "" {
				return ep.Uri
			}
		}
	}
	return event.HangoutLink
}

// rateLimitReasons are the googleapi 403 reasons that signal throttling
// rather than a permission problem.
var rateLimitReasons = map[string]bool{
	"rateLimitExceeded":     true,
	"userRateLimitExceeded": true,
	"quotaExceeded":         true,
	"dailyLimitExceeded":    true,
}

// mapCalendarError classifies a Google API failure into the engine's
// calendar error taxonomy so callers can decide whether a retry may help.
func mapCalendarError(op string, err error) error {
	if err == nil {
		return nil
	}

	kind := scheduling.CalendarUnavailable

	var gerr *googleapi.Error
	switch {
	case errors.As(err, &gerr):
		switch {
		case gerr.Code == 401:
			kind = scheduling.CalendarAuthExpired
		case gerr.Code == 403:
			kind = scheduling.CalendarAuthExpired
			for _, item := range gerr.Errors {
				if rateLimitReasons[item.Reason] {
					kind = scheduling.CalendarRateLimited
					break
				}
			}
		case gerr.Code == 429:
			kind = scheduling.CalendarRateLimited
		}
	case errors.Is(err, context.DeadlineExceeded):
	case isNetworkError(err):
	case strings.Contains(err.Error(), "oauth2"):
		kind = scheduling.CalendarAuthExpired
	}

	return &scheduling.ExternalCalendarError{Kind: kind, Op: op, Err: err}
}

func isNetworkError(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr)
}
