// Package logging provides structured logging utilities for larktask.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Logger construction from level and format settings (Setup)
//   - Consistent attribute naming across the codebase
//   - Anonymization of user identifiers (emails, phone numbers, open_ids)
//   - Logger adapter interface for libraries that expect a simpler API
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "task.create")
//	logger.Info("task created",
//	    logging.TaskID(task.TaskID),
//	    logging.Status(logging.StatusSuccess))
//
// Sanitize sensitive data before logging:
//
//	logger.Info("user lookup",
//	    logging.UserHash(email))
//
// Logs are always written to stderr so that command output on stdout stays
// machine readable.
package logging
