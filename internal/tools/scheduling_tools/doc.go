// Package scheduling_tools provides MCP tools for appointment scheduling on
// Google Calendar.
//
// The package registers three groups of tools:
//
//   - scheduling_get_available_slots: computes bookable slots for a tenant
//     from its business hours policy and the live calendar
//   - scheduling_book_slot: revalidates and books a slot, creating the
//     calendar event
//   - scheduling_get_auth_url / scheduling_save_auth_code: Google Calendar
//     OAuth flow for tenant accounts
//
// Both scheduling tools take the full per-tenant policy as arguments, so the
// server stays stateless: the upstream chatbot platform owns tenant
// configuration and passes it with every call. Policy validation happens
// before any Google Calendar request.
//
// Tool failures carry a machine-readable kind prefix (for example
// "conflict:", "quota_exceeded:", "rate_limited:") so agents can
// distinguish normal rejections from calendar outages.
package scheduling_tools
