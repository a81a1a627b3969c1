// Package instrumentation provides OpenTelemetry metrics and tracing for larktask.
//
// # Metrics
//
// Feishu API metrics:
//   - feishu_api_operations_total: Counter of API calls by service, operation, status
//   - feishu_api_operation_duration_seconds: Histogram of API call durations
//
// Bulk and notification metrics:
//   - batch_items_total: Counter of bulk operation items by operation and status
//   - notifications_total: Counter of notification cards by kind and status
//
// Scheduler metrics:
//   - scheduler_job_runs_total: Counter of job runs by job and status
//   - scheduler_job_duration_seconds: Histogram of job run durations
//
// MCP tool metrics:
//   - mcp_tool_invocations_total: Counter of tool invocations by tool and status
//   - mcp_tool_duration_seconds: Histogram of tool execution durations
//
// # Tracing
//
// Spans are created for Feishu API calls (feishu.<service>.<operation>),
// MCP tool invocations (tool.<name>) and scheduled jobs (job.<name>).
//
// # Configuration
//
// Instrumentation is configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: false for
//     one-shot commands, true for schedule and serve)
//   - METRICS_EXPORTER: prometheus, otlp or stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout or none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: larktask)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DaemonConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordAPIOperation(ctx, "task", "list", "success", time.Since(start))
package instrumentation
