package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"", slog.LevelInfo, false},
		{"INFO", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSetup(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	t.Run("json format", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := Setup(&buf, "info", FormatJSON)
		if err != nil {
			t.Fatalf("Setup returned error: %v", err)
		}
		logger.Debug("hidden")
		logger.Info("shown", Operation("task.list"))

		out := buf.String()
		if strings.Contains(out, "hidden") {
			t.Error("debug message should be filtered at info level")
		}
		if !strings.Contains(out, `"operation":"task.list"`) {
			t.Errorf("expected JSON output, got %q", out)
		}
	})

	t.Run("text format", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := Setup(&buf, "debug", FormatText)
		if err != nil {
			t.Fatalf("Setup returned error: %v", err)
		}
		logger.Debug("visible")
		if !strings.Contains(buf.String(), "msg=visible") {
			t.Errorf("expected text output, got %q", buf.String())
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		if _, err := Setup(&bytes.Buffer{}, "info", "xml"); err == nil {
			t.Error("expected error for unknown format")
		}
	})
}
