package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyOperation  = "operation"
	KeyService    = "service"
	KeyUserHash   = "user_hash"
	KeyDuration   = "duration"
	KeyStatus     = "status"
	KeyError      = "error"
	KeyTool       = "tool"
	KeyTask       = "task_id"
	KeyTasklist   = "tasklist_id"
	KeyCode       = "code"
	KeyJob        = "job"
	KeyReceiverID = "receive_id"
)

// Status values for consistent logging.
// Note: These are intentionally duplicated from instrumentation package
// to avoid circular dependencies (instrumentation imports logging).
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// WithOperation returns a logger with the operation attribute set.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

// WithTool returns a logger with the tool attribute set.
func WithTool(logger *slog.Logger, tool string) *slog.Logger {
	return logger.With(slog.String(KeyTool, tool))
}

// WithService returns a logger with the service attribute set.
func WithService(logger *slog.Logger, service string) *slog.Logger {
	return logger.With(slog.String(KeyService, service))
}

// Operation returns a slog attribute for the operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Service returns a slog attribute for the service name.
func Service(svc string) slog.Attr {
	return slog.String(KeyService, svc)
}

// Tool returns a slog attribute for the tool name.
func Tool(tool string) slog.Attr {
	return slog.String(KeyTool, tool)
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// TaskID returns a slog attribute for a task identifier.
func TaskID(id string) slog.Attr {
	return slog.String(KeyTask, id)
}

// TasklistID returns a slog attribute for a tasklist identifier.
func TasklistID(id string) slog.Attr {
	return slog.String(KeyTasklist, id)
}

// Code returns a slog attribute for a remote error code.
func Code(code int) slog.Attr {
	return slog.Int(KeyCode, code)
}

// Job returns a slog attribute for a scheduled job name.
func Job(name string) slog.Attr {
	return slog.String(KeyJob, name)
}

// Err returns a slog attribute for an error.
// If err is nil, returns an empty Group attribute that will be omitted from output.
//
// Usage:
//
//	logger.Info("operation", logging.Err(err))  // Safe even if err is nil
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// Anonymize returns a hashed representation of a user identifier (email,
// phone number or open_id) for logging purposes.
func Anonymize(id string) string {
	if id == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(id))
	return "user:" + hex.EncodeToString(hash[:8])
}

// UserHash returns a slog attribute with the anonymized user identifier.
//
// Usage:
//
//	logger.Info("lookup completed", logging.UserHash(email))
func UserHash(id string) slog.Attr {
	return slog.String(KeyUserHash, Anonymize(id))
}

// Receiver returns a slog attribute for a message recipient, anonymized.
func Receiver(id string) slog.Attr {
	return slog.String(KeyReceiverID, Anonymize(id))
}

// SanitizeToken returns a masked version of a token for logging.
// It returns a length indicator without exposing any token content.
func SanitizeToken(token string) string {
	if token == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[token:%d chars]", len(token))
}
