package contact

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/larktask/internal/feishu"
	"github.com/teemow/larktask/internal/feishu/feishutest"
)

func newTestClient(t *testing.T, reply feishutest.HandlerFunc) (*Client, *feishutest.Server) {
	t.Helper()
	srv := feishutest.NewServer(t)
	srv.Handle(http.MethodPost, batchGetIDPath, reply)
	api, err := feishu.NewClient(feishu.Config{AppID: "cli_test", AppSecret: "secret", BaseURL: srv.URL})
	require.NoError(t, err)
	return NewClient(api, nil), srv
}

func TestUserIDByEmail(t *testing.T) {
	c, srv := newTestClient(t, func(r feishutest.Request) feishutest.Reply {
		return feishutest.OK(map[string]any{"user_list": []any{
			map[string]any{"user_id": "ou_alice", "email": "alice@example.com"},
		}})
	})

	id, err := c.UserIDByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ou_alice", id)

	req := srv.Requests()[0]
	assert.Equal(t, []string{"open_id"}, req.Query["user_id_type"])
	assert.Equal(t, []any{"alice@example.com"}, req.Body["emails"])
	assert.NotContains(t, req.Body, "mobiles")
}

func TestUserIDByPhone(t *testing.T) {
	c, srv := newTestClient(t, func(r feishutest.Request) feishutest.Reply {
		return feishutest.OK(map[string]any{"user_list": []any{
			map[string]any{"user_id": "ou_bob", "mobile": "+8613800000000"},
		}})
	})

	id, err := c.UserIDByPhone(context.Background(), "+8613800000000")
	require.NoError(t, err)
	assert.Equal(t, "ou_bob", id)
	assert.Equal(t, []any{"+8613800000000"}, srv.Requests()[0].Body["mobiles"])
}

func TestLookup_NotFound(t *testing.T) {
	tests := []struct {
		name string
		data any
	}{
		{"empty list", map[string]any{"user_list": []any{}}},
		{"entry without id", map[string]any{"user_list": []any{map[string]any{"email": "ghost@example.com"}}}},
		{"no data", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(r feishutest.Request) feishutest.Reply {
				return feishutest.OK(tt.data)
			})
			_, err := c.UserIDByEmail(context.Background(), "ghost@example.com")
			assert.ErrorIs(t, err, ErrUserNotFound)
		})
	}
}

func TestLookup_RemoteError(t *testing.T) {
	c, _ := newTestClient(t, func(r feishutest.Request) feishutest.Reply {
		return feishutest.Fail(41050, "no user authority")
	})

	_, err := c.UserIDByEmail(context.Background(), "alice@example.com")
	var apiErr *feishu.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 41050, apiErr.Code)
}

func TestLookup_EmptyKey(t *testing.T) {
	c, srv := newTestClient(t, func(r feishutest.Request) feishutest.Reply { return feishutest.OK(nil) })

	_, err := c.UserIDByEmail(context.Background(), "")
	assert.Error(t, err)
	_, err = c.UserIDByPhone(context.Background(), "")
	assert.Error(t, err)
	assert.Empty(t, srv.Requests())
}
