package feishu

import (
	"errors"
	"fmt"
)

// Remote error codes with a known remediation.
const (
	CodePermissionDenied = 99991672
	CodeNotFound         = 99991663
)

// ErrMissingCredentials is returned when the app id or secret is empty.
var ErrMissingCredentials = errors.New("FEISHU_APP_ID and FEISHU_APP_SECRET must be set")

// APIError is a failure reported by the Feishu open platform, either through a
// non-zero envelope code or an HTTP status without a decodable envelope.
type APIError struct {
	// Op is the operation that failed (e.g. "task.create")
	Op string

	// Code is the remote error code; 0 when only an HTTP status is known
	Code int

	// Msg is the remote error message
	Msg string

	// HTTPStatus is the HTTP status code of the response
	HTTPStatus int
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s failed: %d - %s", e.Op, e.Code, e.Msg)
	if e.Code == 0 && e.HTTPStatus != 0 {
		msg = fmt.Sprintf("%s failed: HTTP %d", e.Op, e.HTTPStatus)
		if e.Msg != "" {
			msg += " - " + e.Msg
		}
	}
	if hint := e.Hint(); hint != "" {
		msg += " (" + hint + ")"
	}
	return msg
}

// Hint returns a remediation hint for well-known codes.
func (e *APIError) Hint() string {
	switch e.Code {
	case CodePermissionDenied:
		return "check that the app has the task:task:read and task:task:write permissions"
	case CodeNotFound:
		return "the task does not exist or is not visible to the app"
	default:
		return ""
	}
}

// RemoteCode returns the remote error code.
func (e *APIError) RemoteCode() int {
	return e.Code
}

// RemoteMessage returns the remote error message.
func (e *APIError) RemoteMessage() string {
	if e.Msg == "" && e.HTTPStatus != 0 {
		return fmt.Sprintf("HTTP %d", e.HTTPStatus)
	}
	return e.Msg
}

// IsNotFound reports whether err is a remote not-found error.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == CodeNotFound
}

// IsPermissionDenied reports whether err is a remote permission error.
func IsPermissionDenied(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == CodePermissionDenied
}
