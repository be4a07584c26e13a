// Package google provides shared Google OAuth2 authentication for the
// scheduling engine. Tokens are stored per tenant account so one server
// can serve calendars belonging to many tenants.
package google
