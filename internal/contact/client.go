// Package contact resolves Feishu users by email or phone number.
package contact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/teemow/larktask/internal/feishu"
	"github.com/teemow/larktask/internal/instrumentation"
	"github.com/teemow/larktask/internal/logging"
)

const batchGetIDPath = "/open-apis/contact/v3/users/batch_get_id"

// ErrUserNotFound is returned when no user matches the lookup key.
var ErrUserNotFound = errors.New("user not found")

// User is one entry of a batch_get_id response.
type User struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Mobile string `json:"mobile,omitempty"`
}

// Client wraps the contact v3 API.
type Client struct {
	api    *feishu.Client
	logger *slog.Logger
}

// NewClient creates a contact client.
func NewClient(api *feishu.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{api: api, logger: logging.WithService(logger, instrumentation.ServiceContact)}
}

// UserIDByEmail returns the open_id of the user with the given email.
func (c *Client) UserIDByEmail(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", fmt.Errorf("email is required")
	}
	return c.lookup(ctx, map[string][]string{"emails": {email}}, email)
}

// UserIDByPhone returns the open_id of the user with the given mobile number.
func (c *Client) UserIDByPhone(ctx context.Context, phone string) (string, error) {
	if phone == "" {
		return "", fmt.Errorf("phone is required")
	}
	return c.lookup(ctx, map[string][]string{"mobiles": {phone}}, phone)
}

func (c *Client) lookup(ctx context.Context, body map[string][]string, key string) (string, error) {
	var out struct {
		UserList []User `json:"user_list"`
	}
	query := url.Values{"user_id_type": {"open_id"}}
	op := feishu.Op{Service: instrumentation.ServiceContact, Name: "batch_get_id"}

	if err := c.api.Post(ctx, op, batchGetIDPath, query, body, &out); err != nil {
		return "", err
	}

	for _, u := range out.UserList {
		if u.UserID != "" {
			c.logger.Debug("user resolved", logging.UserHash(key))
			return u.UserID, nil
		}
	}

	c.logger.Debug("user not found", logging.UserHash(key))
	return "", ErrUserNotFound
}
