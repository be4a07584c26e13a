// Package gcal provides a Google Calendar adapter for the scheduling
// engine.
//
// The package implements the engine's BusyIntervalSource and BookingWriter
// interfaces on top of the Google Calendar v3 API. Reads fetch existing
// commitments in a time window and tag intervals created by this engine
// using a private extended property on the event; writes commit bookings
// as calendar events with optional attendees and conference links.
//
// Key features:
//   - OAuth2 authentication with per-account token storage
//   - Busy interval listing with cancelled and transparent events dropped
//   - Provenance marker on created events for quota tracking
//   - Bounded exponential backoff on reads, never on writes
//   - Failure classification into auth, rate limit, and unavailable kinds
//
// All calls carry a short per-call timeout. A failed or timed-out read is
// reported as an error, never as an empty calendar.
package gcal
