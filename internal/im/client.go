package im

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/teemow/larktask/internal/feishu"
	"github.com/teemow/larktask/internal/instrumentation"
	"github.com/teemow/larktask/internal/logging"
)

const messagesPath = "/open-apis/im/v1/messages"

// Client sends direct messages to users through the im v1 API.
type Client struct {
	api    *feishu.Client
	logger *slog.Logger
}

// NewClient creates a messaging client.
func NewClient(api *feishu.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{api: api, logger: logging.WithService(logger, instrumentation.ServiceIM)}
}

// SendCard sends an interactive card to the user with the given open_id.
func (c *Client) SendCard(ctx context.Context, receiveID string, card *Card) (*Message, error) {
	if card == nil {
		return nil, &MessageError{Op: "send_card", ReceiveID: receiveID, Err: fmt.Errorf("card cannot be nil")}
	}
	return c.send(ctx, "send_card", receiveID, MsgTypeInteractive, card)
}

// SendText sends a plain text message to the user with the given open_id.
func (c *Client) SendText(ctx context.Context, receiveID, text string) (*Message, error) {
	if text == "" {
		return nil, &MessageError{Op: "send_text", ReceiveID: receiveID, Err: fmt.Errorf("text cannot be empty")}
	}
	return c.send(ctx, "send_text", receiveID, MsgTypeText, map[string]string{"text": text})
}

func (c *Client) send(ctx context.Context, opName, receiveID, msgType string, content any) (*Message, error) {
	if receiveID == "" {
		return nil, &MessageError{Op: opName, Err: fmt.Errorf("receive_id cannot be empty")}
	}

	// The content field is itself a JSON document encoded as a string.
	encoded, err := json.Marshal(content)
	if err != nil {
		return nil, &MessageError{Op: opName, ReceiveID: receiveID, Err: fmt.Errorf("failed to encode content: %w", err)}
	}

	body := map[string]string{
		"receive_id": receiveID,
		"msg_type":   msgType,
		"content":    string(encoded),
	}
	query := url.Values{"receive_id_type": {"open_id"}}
	op := feishu.Op{Service: instrumentation.ServiceIM, Name: opName}

	var msg Message
	if err := c.api.Post(ctx, op, messagesPath, query, body, &msg); err != nil {
		return nil, &MessageError{Op: opName, ReceiveID: receiveID, Err: err}
	}

	c.logger.Debug("message sent",
		logging.Receiver(receiveID),
		slog.String("msg_type", msgType),
		slog.String("message_id", msg.MessageID))
	return &msg, nil
}
