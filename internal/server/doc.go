// Package server exposes the HTTP side of the scheduler daemon: Prometheus
// metrics on /metrics and Kubernetes style probes on /healthz, /readyz and
// /healthz/detailed.
//
// MetricsServer serves /metrics only when the instrumentation provider is
// enabled with the prometheus exporter. Readiness combines a ready flag,
// cleared on shutdown, with checks registered through HealthChecker.AddCheck.
package server
