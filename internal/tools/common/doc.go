// Package common provides shared helpers for MCP tool handlers, including
// tenant resolution and instrumentation wrappers.
package common
