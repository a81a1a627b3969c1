package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/teemow/larktask/internal/instrumentation"
)

func TestNewMetricsServer(t *testing.T) {
	tests := []struct {
		name        string
		config      MetricsServerConfig
		expectError bool
		errContains string
		wantMetrics bool
	}{
		{
			name:        "prometheus provider",
			config:      MetricsServerConfig{Addr: ":9090", InstrumentationProvider: createTestProvider(t, "prometheus")},
			wantMetrics: true,
		},
		{
			name:   "default addr without provider",
			config: MetricsServerConfig{},
		},
		{
			name:   "disabled provider serves health only",
			config: MetricsServerConfig{InstrumentationProvider: createDisabledProvider(t)},
		},
		{
			name:        "non prometheus exporter",
			config:      MetricsServerConfig{InstrumentationProvider: createTestProvider(t, "stdout")},
			expectError: true,
			errContains: "requires the prometheus exporter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, err := NewMetricsServer(tt.config)
			if tt.expectError {
				if err == nil {
					t.Fatalf("NewMetricsServer() expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("NewMetricsServer() error = %v, want error containing %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewMetricsServer() unexpected error: %v", err)
			}

			rec := httptest.NewRecorder()
			server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
			gotMetrics := rec.Code != http.StatusNotFound
			if gotMetrics != tt.wantMetrics {
				t.Errorf("GET /metrics status = %d, want metrics served = %v", rec.Code, tt.wantMetrics)
			}

			rec = httptest.NewRecorder()
			server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			if rec.Code != http.StatusOK {
				t.Errorf("GET /healthz status = %d, want %d", rec.Code, http.StatusOK)
			}
		})
	}
}

func TestMetricsServer_ExposesRecordedMetrics(t *testing.T) {
	provider := createTestProvider(t, "prometheus")
	provider.Metrics().RecordBatchItem(context.Background(), "delete", instrumentation.StatusSuccess)

	server, err := NewMetricsServer(MetricsServerConfig{InstrumentationProvider: provider})
	if err != nil {
		t.Fatalf("NewMetricsServer() error = %v", err)
	}

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "batch_items_total") {
		t.Errorf("GET /metrics body does not contain batch_items_total")
	}
}

func TestMetricsServer_StartAndShutdown(t *testing.T) {
	server, err := NewMetricsServer(MetricsServerConfig{Addr: "127.0.0.1:0"})
	if err != nil {
		t.Fatalf("NewMetricsServer() error = %v", err)
	}
	if err := server.Listen(); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	resp, err := http.Get("http://" + server.Addr() + "/readyz")
	if err != nil {
		t.Fatalf("GET /readyz error = %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /readyz status = %d, want %d (%s)", resp.StatusCode, http.StatusOK, body)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}

	select {
	case err := <-serverErr:
		if err != nil {
			t.Errorf("Start() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("Start() did not return after Shutdown()")
	}
}

func TestMetricsServer_ShutdownWithoutStart(t *testing.T) {
	server, err := NewMetricsServer(MetricsServerConfig{Addr: ":9090"})
	if err != nil {
		t.Fatalf("NewMetricsServer() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() without Start() error = %v", err)
	}
}

func TestMetricsServer_Addr(t *testing.T) {
	server, err := NewMetricsServer(MetricsServerConfig{Addr: ":9091"})
	if err != nil {
		t.Fatalf("NewMetricsServer() error = %v", err)
	}
	if server.Addr() != ":9091" {
		t.Errorf("Addr() = %q, want %q", server.Addr(), ":9091")
	}
}

func createTestProvider(t *testing.T, exporter string) *instrumentation.Provider {
	t.Helper()
	ctx := context.Background()
	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: exporter,
		TracingExporter: "none",
	})
	if err != nil {
		t.Fatalf("failed to create test provider: %v", err)
	}
	t.Cleanup(func() {
		_ = provider.Shutdown(ctx)
	})
	return provider
}

func createDisabledProvider(t *testing.T) *instrumentation.Provider {
	t.Helper()
	provider, err := instrumentation.NewProvider(context.Background(), instrumentation.Config{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Enabled:        false,
	})
	if err != nil {
		t.Fatalf("failed to create disabled provider: %v", err)
	}
	return provider
}
