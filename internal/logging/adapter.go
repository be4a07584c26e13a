package logging

import "log/slog"

// Logger is the minimal leveled logging interface handed to components that
// should not depend on slog directly. Args are alternating key-value pairs,
// as slog expects.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter satisfies Logger on top of an slog.Logger.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter wraps logger; nil falls back to slog.Default.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger}
}

func (a *SlogAdapter) Debug(msg string, args ...any) { a.logger.Debug(msg, args...) }
func (a *SlogAdapter) Info(msg string, args ...any)  { a.logger.Info(msg, args...) }
func (a *SlogAdapter) Warn(msg string, args ...any)  { a.logger.Warn(msg, args...) }
func (a *SlogAdapter) Error(msg string, args ...any) { a.logger.Error(msg, args...) }

// Logger exposes the wrapped slog.Logger for call sites that need it.
func (a *SlogAdapter) Logger() *slog.Logger { return a.logger }

// DefaultLogger returns an adapter over the process-wide default logger.
func DefaultLogger() *SlogAdapter {
	return NewSlogAdapter(slog.Default())
}
