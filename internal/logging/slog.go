package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
)

// Attribute keys shared across the scheduling engine so log lines stay
// queryable by a single field name.
const (
	KeyOperation = "operation"
	KeyTenant    = "tenant"
	KeyStatus    = "status"
	KeyError     = "error"
)

// Status values for the KeyStatus attribute. Duplicated from the
// instrumentation package because instrumentation imports logging.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Operation returns a slog attribute for the operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Tenant returns a slog attribute for the tenant account name.
func Tenant(tenant string) slog.Attr {
	return slog.String(KeyTenant, tenant)
}

// Status returns a slog attribute for the operation status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Err returns a slog attribute for an error. A nil error yields an empty
// group that slog omits, so Err(maybeNil) is always safe to pass.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// AnonymizeEmail returns a stable hash of an attendee email. Log entries
// for the same attendee correlate without the address appearing in logs.
func AnonymizeEmail(email string) string {
	if email == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(email))
	return "attendee:" + hex.EncodeToString(hash[:8])
}

// Attendee returns a slog attribute with the anonymized attendee email.
func Attendee(email string) slog.Attr {
	return slog.String("attendee_hash", AnonymizeEmail(email))
}

// ExtractDomain returns the domain part of an email address, or "" when
// the address is malformed.
func ExtractDomain(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || domain == "" || strings.Contains(domain, "@") {
		return ""
	}
	return domain
}

// Domain returns a slog attribute for the attendee's email domain.
func Domain(email string) slog.Attr {
	return slog.String("attendee_domain", ExtractDomain(email))
}
