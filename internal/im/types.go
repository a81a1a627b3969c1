package im

import "fmt"

// Message types accepted by the send endpoint.
const (
	MsgTypeText        = "text"
	MsgTypeInteractive = "interactive"
)

// Message is the server's record of a sent message.
type Message struct {
	// MessageID is the id of the sent message (om_...)
	MessageID string `json:"message_id"`

	// ChatID is the chat the message landed in
	ChatID string `json:"chat_id,omitempty"`

	// CreateTime is the send time in milliseconds since the epoch
	CreateTime string `json:"create_time,omitempty"`
}

// MessageError represents a failure to deliver a message.
type MessageError struct {
	// Op is the operation that failed (e.g., "send_card", "send_text")
	Op string

	// ReceiveID is the open_id of the intended recipient
	ReceiveID string

	// Err is the underlying error
	Err error
}

// Error implements the error interface
func (e *MessageError) Error() string {
	if e.ReceiveID != "" {
		return fmt.Sprintf("im %s (receiver: %s): %v", e.Op, e.ReceiveID, e.Err)
	}
	return fmt.Sprintf("im %s: %v", e.Op, e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *MessageError) Unwrap() error {
	return e.Err
}
