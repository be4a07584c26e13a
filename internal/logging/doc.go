// Package logging provides structured logging utilities for the slotbooker
// scheduling engine.
//
// This package centralizes logging patterns to ensure consistent, structured
// logging throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - PII sanitization (attendee email anonymization)
//   - Consistent attribute naming across the codebase
//   - Logger adapter interface for flexibility
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "availability.generate")
//	logger.Info("slots computed",
//	    logging.Status("success"))
//
// Sanitize sensitive data before logging:
//
//	logger.Info("booking committed",
//	    logging.Attendee(email))
//
// # Security Considerations
//
// Attendee emails are hashed to prevent PII leakage while still allowing log
// correlation; calendar credentials and tokens are never logged.
package logging
