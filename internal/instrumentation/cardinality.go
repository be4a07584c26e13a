package instrumentation

import "strings"

// Helpers that cap metric label cardinality. Attendee emails are unbounded,
// so metrics only ever see the email domain; full addresses are reserved
// for the audit trail.

// ExtractUserDomain returns the domain part of an email address, or
// "unknown" when the input is not a plain user@domain address.
func ExtractUserDomain(email string) string {
	if _, domain, ok := strings.Cut(email, "@"); ok && domain != "" && !strings.Contains(domain, "@") {
		return domain
	}
	return "unknown"
}

// Operation label values for calendar API metrics. Status and outcome
// constants live in config.go.
const (
	OperationList         = "list"
	OperationInsert       = "insert"
	OperationAvailability = "availability"
	OperationBook         = "book"
)
