package logging

import (
	"log/slog"
)

// Logger is the key/value logging interface used by job runners such as
// robfig/cron. Error carries the failing error as its own argument.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(err error, msg string, keysAndValues ...interface{})
}

// SlogAdapter adapts an slog.Logger to the Logger interface.
type SlogAdapter struct {
	logger *slog.Logger
	// verbose promotes Info calls to info level; otherwise they are logged at debug.
	verbose bool
}

// NewSlogAdapter creates a new SlogAdapter wrapping the given slog.Logger.
// If logger is nil, slog.Default() is used.
func NewSlogAdapter(logger *slog.Logger, verbose bool) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger, verbose: verbose}
}

// Info logs a routine message with key-value pairs.
func (a *SlogAdapter) Info(msg string, keysAndValues ...interface{}) {
	if a.verbose {
		a.logger.Info(msg, keysAndValues...)
		return
	}
	a.logger.Debug(msg, keysAndValues...)
}

// Error logs err together with msg and key-value pairs.
func (a *SlogAdapter) Error(err error, msg string, keysAndValues ...interface{}) {
	args := make([]interface{}, 0, len(keysAndValues)+1)
	args = append(args, Err(err))
	args = append(args, keysAndValues...)
	a.logger.Error(msg, args...)
}

// Logger returns the underlying slog.Logger for direct access when needed.
func (a *SlogAdapter) Logger() *slog.Logger {
	return a.logger
}
