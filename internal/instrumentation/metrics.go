package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys.
const (
	attrStatus    = "status"
	attrOperation = "operation"
	attrService   = "service"
	attrTool      = "tool"
	attrKind      = "kind"
	attrJob       = "job"
)

var durationBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0}

// Metrics records larktask metrics. A nil or zero Metrics is a valid no-op recorder.
type Metrics struct {
	apiOperationsTotal   metric.Int64Counter
	apiOperationDuration metric.Float64Histogram

	batchItemsTotal metric.Int64Counter

	notificationsTotal metric.Int64Counter

	jobRunsTotal metric.Int64Counter
	jobDuration  metric.Float64Histogram

	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram
}

// NewMetrics creates all instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.apiOperationsTotal, err = meter.Int64Counter(
		"feishu_api_operations_total",
		metric.WithDescription("Total number of Feishu open API calls"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create feishu_api_operations_total counter: %w", err)
	}

	m.apiOperationDuration, err = meter.Float64Histogram(
		"feishu_api_operation_duration_seconds",
		metric.WithDescription("Feishu open API call duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create feishu_api_operation_duration_seconds histogram: %w", err)
	}

	m.batchItemsTotal, err = meter.Int64Counter(
		"batch_items_total",
		metric.WithDescription("Total number of items processed by bulk operations"),
		metric.WithUnit("{item}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create batch_items_total counter: %w", err)
	}

	m.notificationsTotal, err = meter.Int64Counter(
		"notifications_total",
		metric.WithDescription("Total number of notification cards sent"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create notifications_total counter: %w", err)
	}

	m.jobRunsTotal, err = meter.Int64Counter(
		"scheduler_job_runs_total",
		metric.WithDescription("Total number of scheduled job runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler_job_runs_total counter: %w", err)
	}

	m.jobDuration, err = meter.Float64Histogram(
		"scheduler_job_duration_seconds",
		metric.WithDescription("Scheduled job run duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler_job_duration_seconds histogram: %w", err)
	}

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordAPIOperation records one Feishu API call.
//
// Parameters:
//   - service: Feishu service name (auth, task, contact, im)
//   - operation: operation within the service (create, get, list, send, ...)
//   - status: "success" or "error"
//   - duration: round-trip time including token acquisition
func (m *Metrics) RecordAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m == nil || m.apiOperationsTotal == nil || m.apiOperationDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	)
	m.apiOperationsTotal.Add(ctx, 1, attrs)
	m.apiOperationDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordBatchItem records the outcome of one item of a bulk operation.
func (m *Metrics) RecordBatchItem(ctx context.Context, operation, status string) {
	if m == nil || m.batchItemsTotal == nil {
		return
	}

	m.batchItemsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	))
}

// RecordNotification records one notification card delivery attempt.
// kind is one of due_soon, daily, weekly, assigned, completed.
func (m *Metrics) RecordNotification(ctx context.Context, kind, status string) {
	if m == nil || m.notificationsTotal == nil {
		return
	}

	m.notificationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrKind, kind),
		attribute.String(attrStatus, status),
	))
}

// RecordJobRun records one run of a scheduled job.
func (m *Metrics) RecordJobRun(ctx context.Context, job, status string, duration time.Duration) {
	if m == nil || m.jobRunsTotal == nil || m.jobDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrJob, job),
		attribute.String(attrStatus, status),
	)
	m.jobRunsTotal.Add(ctx, 1, attrs)
	m.jobDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordToolInvocation records an MCP tool invocation with tool name, status, and duration.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m == nil || m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	)
	m.toolInvocationsTotal.Add(ctx, 1, attrs)
	m.toolDuration.Record(ctx, duration.Seconds(), attrs)
}

// StatusFor maps an error to the status label value.
func StatusFor(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}
