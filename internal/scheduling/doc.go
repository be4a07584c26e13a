// Package scheduling implements the calendar availability and booking
// engine: validated per-tenant scheduling policies, deterministic slot
// generation against external busy intervals, per-day and per-ISO-week
// booking quotas, and the booking coordinator state machine that commits a
// slot against the external calendar without double-booking.
//
// The package is transport-agnostic and performs no I/O of its own; all
// calendar reads and writes go through the BusyIntervalSource and
// BookingWriter interfaces.
package scheduling
