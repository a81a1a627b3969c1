package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func serve(t *testing.T, h http.Handler, path string) (int, HealthResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode %s response: %v", path, err)
	}
	return rec.Code, resp
}

func TestHealthChecker_Readiness(t *testing.T) {
	var schedulerErr error

	h := NewHealthChecker()
	h.AddCheck("scheduler", func() error { return schedulerErr })
	mux := http.NewServeMux()
	h.RegisterHealthEndpoints(mux)

	tests := []struct {
		name       string
		ready      bool
		checkErr   error
		wantStatus int
		wantChecks map[string]string
	}{
		{
			name:       "ready",
			ready:      true,
			wantStatus: http.StatusOK,
			wantChecks: map[string]string{"ready": "ok", "scheduler": "ok"},
		},
		{
			name:       "failing check",
			ready:      true,
			checkErr:   errors.New("scheduler stopped"),
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]string{"ready": "ok", "scheduler": "scheduler stopped"},
		},
		{
			name:       "not ready",
			ready:      false,
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]string{"ready": "not ready", "scheduler": "ok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h.SetReady(tt.ready)
			schedulerErr = tt.checkErr

			code, resp := serve(t, mux, "/readyz")
			if code != tt.wantStatus {
				t.Errorf("GET /readyz status = %d, want %d", code, tt.wantStatus)
			}
			for name, want := range tt.wantChecks {
				if resp.Checks[name] != want {
					t.Errorf("check %q = %q, want %q", name, resp.Checks[name], want)
				}
			}
		})
	}
}

func TestHealthChecker_LivenessIgnoresReadiness(t *testing.T) {
	h := NewHealthChecker()
	h.SetReady(false)

	code, resp := serve(t, h.LivenessHandler(), "/healthz")
	if code != http.StatusOK || resp.Status != "ok" {
		t.Errorf("GET /healthz = %d %q, want 200 ok", code, resp.Status)
	}
}

func TestHealthChecker_Detailed(t *testing.T) {
	h := NewHealthChecker()
	h.AddCheck("feishu", func() error { return errors.New("token refresh failing") })

	rec := httptest.NewRecorder()
	h.DetailedHealthHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz/detailed", nil))

	var resp DetailedHealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "not ready" {
		t.Errorf("status = %q, want %q", resp.Status, "not ready")
	}
	if resp.Uptime == "" {
		t.Error("uptime is empty")
	}
	if resp.Checks["feishu"] != "token refresh failing" {
		t.Errorf("feishu check = %q", resp.Checks["feishu"])
	}
}
