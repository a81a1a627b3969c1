package cmd

import (
	"context"
	"fmt"

	"github.com/teemow/larktask/internal/logging"
	"github.com/teemow/larktask/internal/server"
)

// startMetricsServer binds addr and serves the health probes, plus /metrics
// when instrumentation is enabled, in the background. The returned function
// stops the server.
func startMetricsServer(a *app, addr string, health *server.HealthChecker) (func(), error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    addr,
		InstrumentationProvider: a.provider,
		Health:                  health,
		Logger:                  a.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}
	if err := metricsServer.Listen(); err != nil {
		return nil, fmt.Errorf("metrics server failed to start: %w", err)
	}

	go func() {
		if err := metricsServer.Start(); err != nil {
			a.logger.Error("metrics server stopped", logging.Err(err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := metricsServer.Shutdown(ctx); err != nil {
			a.logger.Warn("error during metrics server shutdown", logging.Err(err))
		}
	}, nil
}
