package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Health status constants for health check responses.
const (
	healthStatusOK       = "ok"
	healthStatusNotReady = "not ready"
)

// CheckFunc reports a dependency problem as a non-nil error.
type CheckFunc func() error

type namedCheck struct {
	name  string
	check CheckFunc
}

// HealthChecker provides health check endpoints for Kubernetes probes.
type HealthChecker struct {
	ready     atomic.Bool
	startTime time.Time

	mu     sync.RWMutex
	checks []namedCheck
}

// NewHealthChecker creates a HealthChecker that starts out ready.
func NewHealthChecker() *HealthChecker {
	h := &HealthChecker{startTime: time.Now()}
	h.ready.Store(true)
	return h
}

// SetReady sets the readiness state of the server.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady returns whether the server is ready to receive traffic.
func (h *HealthChecker) IsReady() bool {
	return h.ready.Load()
}

// AddCheck registers a readiness check reported under name.
func (h *HealthChecker) AddCheck(name string, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks = append(h.checks, namedCheck{name: name, check: check})
}

// HealthResponse represents the JSON response for health endpoints.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// DetailedHealthResponse provides comprehensive health information.
type DetailedHealthResponse struct {
	Status string            `json:"status"`
	Uptime string            `json:"uptime"`
	Checks map[string]string `json:"checks,omitempty"`
}

// evaluate runs every check and reports whether all passed.
func (h *HealthChecker) evaluate() (map[string]string, bool) {
	results := map[string]string{"ready": healthStatusOK}
	ok := true
	if !h.ready.Load() {
		results["ready"] = healthStatusNotReady
		ok = false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.checks {
		if err := c.check(); err != nil {
			results[c.name] = err.Error()
			ok = false
			continue
		}
		results[c.name] = healthStatusOK
	}
	return results, ok
}

// LivenessHandler returns an HTTP handler for the /healthz endpoint.
// Liveness only reflects that the process is serving.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{Status: healthStatusOK})
	})
}

// ReadinessHandler returns an HTTP handler for the /readyz endpoint.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		checks, ok := h.evaluate()
		if !ok {
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: healthStatusNotReady, Checks: checks})
			return
		}
		writeJSON(w, http.StatusOK, HealthResponse{Status: healthStatusOK, Checks: checks})
	})
}

// DetailedHealthHandler returns an HTTP handler for /healthz/detailed.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		checks, ok := h.evaluate()
		status := healthStatusOK
		if !ok {
			status = healthStatusNotReady
		}
		writeJSON(w, http.StatusOK, DetailedHealthResponse{
			Status: status,
			Uptime: time.Since(h.startTime).Truncate(time.Second).String(),
			Checks: checks,
		})
	})
}

// RegisterHealthEndpoints registers health check endpoints on the given mux.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle("/healthz", h.LivenessHandler())
	mux.Handle("/readyz", h.ReadinessHandler())
	mux.Handle("/healthz/detailed", h.DetailedHealthHandler())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
