package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestWithOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	WithOperation(logger, "task.create").Info("done")
	if !strings.Contains(buf.String(), "operation=task.create") {
		t.Errorf("output %q missing operation attribute", buf.String())
	}
}

func TestWithTool(t *testing.T) {
	result := WithTool(slog.Default(), "tasks_list")
	if result == nil {
		t.Error("WithTool returned nil")
	}
}

func TestWithService(t *testing.T) {
	result := WithService(slog.Default(), "task")
	if result == nil {
		t.Error("WithService returned nil")
	}
}

func TestAttributes(t *testing.T) {
	tests := []struct {
		name    string
		attr    slog.Attr
		wantKey string
		wantVal string
	}{
		{"operation", Operation("task.get"), KeyOperation, "task.get"},
		{"service", Service("im"), KeyService, "im"},
		{"tool", Tool("tasks_get"), KeyTool, "tasks_get"},
		{"status", Status(StatusSuccess), KeyStatus, "success"},
		{"task", TaskID("t-1"), KeyTask, "t-1"},
		{"tasklist", TasklistID("l-1"), KeyTasklist, "l-1"},
		{"code", Code(99991663), KeyCode, "99991663"},
		{"job", Job("daily"), KeyJob, "daily"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.attr.Key != tt.wantKey {
				t.Errorf("key = %q, want %q", tt.attr.Key, tt.wantKey)
			}
			if tt.attr.Value.String() != tt.wantVal {
				t.Errorf("value = %q, want %q", tt.attr.Value.String(), tt.wantVal)
			}
		})
	}
}

func TestErrAttr(t *testing.T) {
	attr := Err(errors.New("test error"))
	if attr.Key != KeyError {
		t.Errorf("Err key = %q, want %q", attr.Key, KeyError)
	}
	if attr.Value.String() != "test error" {
		t.Errorf("Err value = %q, want %q", attr.Value.String(), "test error")
	}
}

func TestErrAttr_Nil(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	logger.Info("ok", Err(nil))
	if strings.Contains(buf.String(), KeyError) {
		t.Errorf("nil error should be omitted, got %q", buf.String())
	}
}

func TestAnonymize(t *testing.T) {
	if got := Anonymize(""); got != "" {
		t.Errorf("Anonymize(\"\") = %q, want empty", got)
	}

	a := Anonymize("alice@example.com")
	b := Anonymize("alice@example.com")
	c := Anonymize("bob@example.com")

	if !strings.HasPrefix(a, "user:") {
		t.Errorf("Anonymize should prefix with user:, got %q", a)
	}
	if a != b {
		t.Error("Anonymize should be deterministic")
	}
	if a == c {
		t.Error("different inputs should hash differently")
	}
	if strings.Contains(a, "alice") {
		t.Error("Anonymize leaked the input")
	}
}

func TestReceiver(t *testing.T) {
	attr := Receiver("ou_123")
	if attr.Key != KeyReceiverID {
		t.Errorf("Receiver key = %q, want %q", attr.Key, KeyReceiverID)
	}
	if attr.Value.String() == "ou_123" {
		t.Error("Receiver should anonymize the id")
	}
}

func TestSanitizeToken(t *testing.T) {
	if got := SanitizeToken(""); got != "<empty>" {
		t.Errorf("SanitizeToken(\"\") = %q", got)
	}
	if got := SanitizeToken("t-abcdef"); got != "[token:8 chars]" {
		t.Errorf("SanitizeToken = %q, want [token:8 chars]", got)
	}
}
