package gcal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/deskflow/slotbooker/internal/google"
	"github.com/deskflow/slotbooker/internal/instrumentation"
	"github.com/deskflow/slotbooker/internal/logging"
	"github.com/deskflow/slotbooker/internal/scheduling"
)

const (
	// callTimeout bounds every external calendar call. A timed-out call is
	// reported as CalendarUnavailable, never as success or "slot free".
	callTimeout = 5 * time.Second

	// fetchMaxTries bounds backoff retries for idempotent reads. Writes are
	// never retried here; the booking coordinator owns the write retry
	// policy because a retry must be preceded by a fresh revalidation.
	fetchMaxTries = 3
)

// Client wraps the Google Calendar service for one tenant account. It
// implements scheduling.BusyIntervalSource and scheduling.BookingWriter.
type Client struct {
	svc        *calendar.Service
	account    string
	calendarID string
	logger     logging.Logger
	metrics    *instrumentation.Metrics
}

// Account returns the tenant account name this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// HasTokenForAccountWithProvider checks if a valid OAuth token exists for the specified account
func HasTokenForAccountWithProvider(account string, provider google.TokenProvider) bool {
	if provider == nil {
		return false
	}
	return provider.HasTokenForAccount(account)
}

// HasTokenForAccount checks if a valid OAuth token exists for the specified account
func HasTokenForAccount(account string) bool {
	provider := google.NewFileTokenProvider()
	return HasTokenForAccountWithProvider(account, provider)
}

// GetAuthURLForAccount returns the OAuth URL for user authorization for a specific account
func GetAuthURLForAccount(account string) string {
	return google.GetAuthURLForAccount(account)
}

// NewClientForAccountWithProvider creates a new Calendar client with OAuth2
// authentication for a specific tenant account. The OAuth token is retrieved
// from the provided token provider; token refresh and storage stay behind
// that interface so the scheduling core never sees credentials.
func NewClientForAccountWithProvider(ctx context.Context, account string, tokenProvider google.TokenProvider) (*Client, error) {
	if tokenProvider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}

	token, err := tokenProvider.GetTokenForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google OAuth token for account %s: %w", account, err)
	}

	conf := google.GetOAuthConfig()
	tokenSource := conf.TokenSource(ctx, token)
	client := oauth2.NewClient(ctx, tokenSource)

	// Force HTTP/1.1 by disabling HTTP/2
	transport := client.Transport.(*oauth2.Transport)
	baseTransport := &http.Transport{
		ForceAttemptHTTP2: false,
	}
	transport.Base = baseTransport

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Client{
		svc:        svc,
		account:    account,
		calendarID: "primary",
	}, nil
}

// NewClientForAccount creates a new Calendar client with OAuth2 authentication
// for a specific tenant account, using the default file-based token provider.
func NewClientForAccount(ctx context.Context, account string) (*Client, error) {
	provider := google.NewFileTokenProvider()
	return NewClientForAccountWithProvider(ctx, account, provider)
}

// WithCalendarID returns a copy of the client bound to a specific calendar
// instead of the account's primary calendar.
func (c *Client) WithCalendarID(calendarID string) *Client {
	clone := *c
	clone.calendarID = calendarID
	return &clone
}

// WithLogger returns a copy of the client that logs retry activity to the
// given logger.
func (c *Client) WithLogger(logger logging.Logger) *Client {
	clone := *c
	clone.logger = logger
	return &clone
}

// WithMetrics returns a copy of the client that records calendar API call
// metrics to the given recorder.
func (c *Client) WithMetrics(metrics *instrumentation.Metrics) *Client {
	clone := *c
	clone.metrics = metrics
	return &clone
}

// recordCall counts one calendar API call. Retried reads count once per
// attempt, so the metric tracks actual API traffic rather than logical
// operations. Classified failures also feed the error-kind breakdown.
func (c *Client) recordCall(ctx context.Context, op string, start time.Time, err error) {
	if c.metrics == nil {
		return
	}
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		var calErr *scheduling.ExternalCalendarError
		if errors.As(err, &calErr) {
			c.metrics.RecordCalendarAPIError(ctx, op, string(calErr.Kind))
		}
	}
	c.metrics.RecordCalendarAPIOperation(ctx, op, status, time.Since(start))
}

// FetchBusy returns the existing commitments on the tenant calendar that
// overlap [from, to). Transient failures are retried with bounded backoff;
// any terminal failure propagates as a scheduling.ExternalCalendarError so
// the caller can never mistake it for an empty calendar.
func (c *Client) FetchBusy(ctx context.Context, tenant string, from, to time.Time) ([]scheduling.BusyInterval, error) {
	operation := func() ([]scheduling.BusyInterval, error) {
		callCtx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		callCtx, span := instrumentation.StartCalendarAPISpan(callCtx, instrumentation.OperationList,
			instrumentation.NewSpanAttributeBuilder().WithTenant(tenant).Build()...)
		defer span.End()

		callStart := time.Now()
		events, err := c.svc.Events.List(c.calendarID).
			TimeMin(from.UTC().Format(time.RFC3339)).
			TimeMax(to.UTC().Format(time.RFC3339)).
			SingleEvents(true).
			OrderBy("startTime").
			Context(callCtx).
			Do()
		if err != nil {
			mapped := mapCalendarError("list", err)
			c.recordCall(ctx, instrumentation.OperationList, callStart, mapped)
			instrumentation.SetSpanError(span, mapped)
			var calErr *scheduling.ExternalCalendarError
			if errors.As(mapped, &calErr) && !calErr.Retryable() {
				return nil, backoff.Permanent(mapped)
			}
			if c.logger != nil {
				c.logger.Warn("transient calendar list failure, retrying",
					"account", c.account, "error", mapped.Error())
			}
			return nil, mapped
		}
		c.recordCall(ctx, instrumentation.OperationList, callStart, nil)
		instrumentation.SetSpanSuccess(span)

		// All-day events are anchored in the calendar's own timezone so the
		// blocked day lines up with the tenant's day, not with UTC.
		loc := calendarLocation(events.TimeZone)

		var busy []scheduling.BusyInterval
		for _, event := range events.Items {
			if interval, ok := toBusyInterval(event, loc); ok {
				busy = append(busy, interval)
			}
		}
		return busy, nil
	}

	busy, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(fetchMaxTries))
	if err != nil {
		return nil, err
	}
	return busy, nil
}

// CreateBooking commits a booking to the tenant calendar. The created event
// carries the provenance marker so quota tracking can recognize bookings
// made by this engine on later reads. The call is not retried here.
func (c *Client) CreateBooking(ctx context.Context, tenant string, req scheduling.BookingRequest) (*scheduling.BookingConfirmation, error) {
	event := &calendar.Event{
		Summary:     req.Title,
		Description: req.Description,
		Start: &calendar.EventDateTime{
			DateTime: req.Slot.Start.UTC().Format(time.RFC3339),
			TimeZone: "UTC",
		},
		End: &calendar.EventDateTime{
			DateTime: req.Slot.End.UTC().Format(time.RFC3339),
			TimeZone: "UTC",
		},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{
				bookingMarkerKey: bookingMarkerValue,
			},
		},
	}

	if len(req.AttendeeEmails) > 0 {
		attendees := make([]*calendar.EventAttendee, 0, len(req.AttendeeEmails))
		for _, email := range req.AttendeeEmails {
			attendees = append(attendees, &calendar.EventAttendee{Email: email})
		}
		event.Attendees = attendees
	}

	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	callCtx, span := instrumentation.StartCalendarAPISpan(callCtx, instrumentation.OperationInsert,
		instrumentation.NewSpanAttributeBuilder().WithTenant(tenant).Build()...)
	defer span.End()

	call := c.svc.Events.Insert(c.calendarID, event).Context(callCtx)
	if req.AddConferenceLink {
		call = call.ConferenceDataVersion(1)
		event.ConferenceData = &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId: uuid.NewString(),
			},
		}
	}

	callStart := time.Now()
	created, err := call.Do()
	if err != nil {
		mapped := mapCalendarError("insert", err)
		c.recordCall(ctx, instrumentation.OperationInsert, callStart, mapped)
		instrumentation.SetSpanError(span, mapped)
		return nil, mapped
	}
	c.recordCall(ctx, instrumentation.OperationInsert, callStart, nil)
	span.SetAttributes(instrumentation.NewSpanAttributeBuilder().WithEventID(created.Id).Build()...)
	instrumentation.SetSpanSuccess(span)

	return &scheduling.BookingConfirmation{
		EventID:        created.Id,
		ConferenceLink: conferenceLink(created),
	}, nil
}
