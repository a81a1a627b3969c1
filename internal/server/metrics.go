package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teemow/larktask/internal/instrumentation"
)

const (
	// DefaultMetricsAddr is the default address for the metrics server.
	DefaultMetricsAddr = ":9090"

	// DefaultMetricsReadTimeout is the default read timeout for the metrics server.
	DefaultMetricsReadTimeout = 10 * time.Second

	// DefaultMetricsWriteTimeout is the default write timeout for the metrics server.
	DefaultMetricsWriteTimeout = 10 * time.Second

	// DefaultMetricsIdleTimeout is the default idle timeout for the metrics server.
	DefaultMetricsIdleTimeout = 60 * time.Second

	// DefaultShutdownTimeout is the default timeout for graceful server shutdown.
	DefaultShutdownTimeout = 30 * time.Second
)

// MetricsServerConfig holds configuration for the metrics server.
type MetricsServerConfig struct {
	// Addr is the address to bind to (e.g., ":9090").
	Addr string

	// InstrumentationProvider decides whether /metrics is served. It may be
	// nil or disabled, in which case only the health endpoints are exposed.
	InstrumentationProvider *instrumentation.Provider

	// Health backs /healthz and /readyz. A new checker is created when nil.
	Health *HealthChecker

	Logger *slog.Logger
}

// MetricsServer serves Prometheus metrics and health probes for the
// scheduler daemon on a dedicated port.
type MetricsServer struct {
	addr       string
	handler    http.Handler
	health     *HealthChecker
	logger     *slog.Logger
	mu         sync.Mutex
	listener   net.Listener
	httpServer *http.Server
}

// NewMetricsServer creates a metrics server with the given configuration.
func NewMetricsServer(config MetricsServerConfig) (*MetricsServer, error) {
	if config.Addr == "" {
		config.Addr = DefaultMetricsAddr
	}
	if config.Health == nil {
		config.Health = NewHealthChecker()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	mux := http.NewServeMux()
	config.Health.RegisterHealthEndpoints(mux)

	p := config.InstrumentationProvider
	if p != nil && p.Enabled() {
		if !p.PrometheusEnabled() {
			return nil, fmt.Errorf("metrics server requires the prometheus exporter, got %q", p.Config().MetricsExporter)
		}
		// The OpenTelemetry prometheus exporter registers with the default
		// registry, which promhttp.Handler exposes.
		mux.Handle("/metrics", promhttp.Handler())
	}

	return &MetricsServer{
		addr:    config.Addr,
		handler: mux,
		health:  config.Health,
		logger:  config.Logger,
	}, nil
}

// Handler returns the server's HTTP handler.
func (s *MetricsServer) Handler() http.Handler {
	return s.handler
}

// Listen binds the configured address. It is called by Start and may be
// called earlier to learn the bound address before serving.
func (s *MetricsServer) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return nil
	}
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: DefaultMetricsReadTimeout,
		WriteTimeout:      DefaultMetricsWriteTimeout,
		IdleTimeout:       DefaultMetricsIdleTimeout,
	}
	return nil
}

// Start serves until Shutdown is called. It blocks; http.ErrServerClosed is
// not reported as an error.
func (s *MetricsServer) Start() error {
	if err := s.Listen(); err != nil {
		return err
	}
	s.mu.Lock()
	srv, ln := s.httpServer, s.listener
	s.mu.Unlock()

	s.logger.Info("starting metrics server", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown marks the server not ready and stops it gracefully.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)

	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	s.logger.Info("shutting down metrics server")
	return srv.Shutdown(ctx)
}

// Addr returns the bound address once listening, else the configured one.
func (s *MetricsServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}
