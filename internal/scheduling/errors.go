package scheduling

import (
	"fmt"
	"time"
)

// CalendarErrorKind classifies failures of the external calendar so callers
// can decide whether a retry is worthwhile.
type CalendarErrorKind string

const (
	// CalendarAuthExpired means the tenant's calendar credentials are no
	// longer valid. Requires out-of-band reauthorization; never retried.
	CalendarAuthExpired CalendarErrorKind = "auth_expired"

	// CalendarRateLimited means the external calendar rejected the call due
	// to quota/rate limits. Retryable with backoff.
	CalendarRateLimited CalendarErrorKind = "rate_limited"

	// CalendarUnavailable covers timeouts, network failures and 5xx
	// responses. Retryable with backoff.
	CalendarUnavailable CalendarErrorKind = "unavailable"
)

// ExternalCalendarError wraps a failed read or write against the external
// calendar. A failed read is inconclusive: it must never be interpreted as
// "no busy intervals" or as a successful booking.
type ExternalCalendarError struct {
	Kind CalendarErrorKind
	Op   string // calendar operation that failed, e.g. "list", "insert"
	Err  error
}

// Error implements the error interface.
func (e *ExternalCalendarError) Error() string {
	return fmt.Sprintf("external calendar %s failed (%s): %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying transport error.
func (e *ExternalCalendarError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure is transient. Auth expiry is fatal
// to the request and requires reauthorization.
func (e *ExternalCalendarError) Retryable() bool {
	return e.Kind == CalendarRateLimited || e.Kind == CalendarUnavailable
}

// ConfigurationError reports an invalid scheduling policy field. It is
// raised before any external call and names the offending field; invalid
// values are never silently clamped.
type ConfigurationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid scheduling configuration: %s: %s", e.Field, e.Reason)
}

// ValidationError reports a malformed booking request (wrong slot duration,
// start in the past, missing fields). Rejected before any external call.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid booking request: %s: %s", e.Field, e.Reason)
}

// ConflictError means the requested slot was no longer free at commit time.
// It is a normal business outcome, not a system failure; the caller should
// request fresh availability.
type ConflictError struct {
	Start time.Time
	End   time.Time
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("slot %s-%s is no longer available",
		e.Start.UTC().Format(time.RFC3339), e.End.UTC().Format(time.RFC3339))
}

// QuotaScope identifies which booking cap was hit.
type QuotaScope string

const (
	// QuotaScopeDay is the per-calendar-day booking cap.
	QuotaScopeDay QuotaScope = "day"
	// QuotaScopeWeek is the per-ISO-week booking cap.
	QuotaScopeWeek QuotaScope = "week"
)

// QuotaExceededError means the day or week already holds the maximum number
// of bookings this system will create. A normal rejection, never retried.
type QuotaExceededError struct {
	Scope QuotaScope
	Limit int
}

// Error implements the error interface.
func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("booking quota exceeded: at most %d booking(s) per %s", e.Limit, e.Scope)
}
