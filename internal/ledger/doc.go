// Package ledger persists committed bookings in a local SQLite database.
//
// The ledger is an optional alternative provenance source for quota
// tracking. Without it the engine recognizes its own bookings by a marker
// on the calendar event; with it, quota counts come from the ledger's rows
// and survive tenants editing or re-creating events on their calendars.
package ledger
