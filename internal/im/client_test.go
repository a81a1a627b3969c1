package im

import (
	"context"
	"encoding/json"
	"errors"
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
	srv.Handle(http.MethodPost, messagesPath, reply)
	api, err := feishu.NewClient(feishu.Config{AppID: "cli_test", AppSecret: "secret", BaseURL: srv.URL})
	require.NoError(t, err)
	return NewClient(api, nil), srv
}

func sent(r feishutest.Request) feishutest.Reply {
	return feishutest.OK(map[string]any{"message_id": "om_1", "chat_id": "oc_1"})
}

func TestSendCard(t *testing.T) {
	c, srv := newTestClient(t, sent)

	card := NewCard("Tasks due soon", TemplateOrange).
		Markdown("**Write report**").
		Button("Open", "https://applink.feishu.cn/task/1")

	msg, err := c.SendCard(context.Background(), "ou_alice", card)
	require.NoError(t, err)
	assert.Equal(t, "om_1", msg.MessageID)

	req := srv.Requests()[0]
	assert.Equal(t, []string{"open_id"}, req.Query["receive_id_type"])
	assert.Equal(t, "ou_alice", req.Body["receive_id"])
	assert.Equal(t, MsgTypeInteractive, req.Body["msg_type"])

	content, ok := req.Body["content"].(string)
	require.True(t, ok, "content is sent as a JSON string")

	var decoded Card
	require.NoError(t, json.Unmarshal([]byte(content), &decoded))
	assert.True(t, decoded.Config.WideScreenMode)
	assert.Equal(t, "Tasks due soon", decoded.Header.Title.Content)
	assert.Equal(t, "orange", decoded.Header.Template)
	require.Len(t, decoded.Elements, 2)
	assert.Equal(t, "lark_md", decoded.Elements[0].Text.Tag)
	assert.Equal(t, "https://applink.feishu.cn/task/1", decoded.Elements[1].Actions[0].URL)
}

func TestSendText(t *testing.T) {
	c, srv := newTestClient(t, sent)

	_, err := c.SendText(context.Background(), "ou_bob", "hello")
	require.NoError(t, err)

	req := srv.Requests()[0]
	assert.Equal(t, MsgTypeText, req.Body["msg_type"])
	assert.JSONEq(t, `{"text":"hello"}`, req.Body["content"].(string))
}

func TestSend_Validation(t *testing.T) {
	c, srv := newTestClient(t, sent)

	tests := []struct {
		name string
		send func() error
	}{
		{"empty receiver", func() error {
			_, err := c.SendText(context.Background(), "", "hi")
			return err
		}},
		{"empty text", func() error {
			_, err := c.SendText(context.Background(), "ou_x", "")
			return err
		}},
		{"nil card", func() error {
			_, err := c.SendCard(context.Background(), "ou_x", nil)
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.send()
			var msgErr *MessageError
			require.True(t, errors.As(err, &msgErr))
		})
	}
	assert.Empty(t, srv.Requests())
}

func TestSend_RemoteErrorWrapped(t *testing.T) {
	c, _ := newTestClient(t, func(r feishutest.Request) feishutest.Reply {
		return feishutest.Fail(230002, "bot not in chat")
	})

	_, err := c.SendText(context.Background(), "ou_alice", "hi")
	require.Error(t, err)

	var msgErr *MessageError
	require.True(t, errors.As(err, &msgErr))
	assert.Equal(t, "send_text", msgErr.Op)
	assert.Equal(t, "ou_alice", msgErr.ReceiveID)

	var apiErr *feishu.APIError
	require.True(t, errors.As(err, &apiErr), "remote error stays reachable through Unwrap")
	assert.Equal(t, 230002, apiErr.Code)
}

func TestCard_ButtonWithoutURL(t *testing.T) {
	card := NewCard("t", TemplateBlue).Button("Open", "")
	assert.Empty(t, card.Elements)
}

func TestCard_Divider(t *testing.T) {
	card := NewCard("t", TemplateGreen).Markdown("a").Divider().Markdown("b")
	require.Len(t, card.Elements, 3)
	assert.Equal(t, "hr", card.Elements[1].Tag)
	assert.Nil(t, card.Elements[1].Text)
}

func TestMessageError_Format(t *testing.T) {
	err := &MessageError{Op: "send_card", ReceiveID: "ou_1", Err: errors.New("boom")}
	assert.Equal(t, "im send_card (receiver: ou_1): boom", err.Error())

	err = &MessageError{Op: "send_card", Err: errors.New("boom")}
	assert.Equal(t, "im send_card: boom", err.Error())
}
