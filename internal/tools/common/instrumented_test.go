package common

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/teemow/larktask/internal/instrumentation"
)

func newTestMetrics(t *testing.T) (*instrumentation.Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	metrics, err := instrumentation.NewMetrics(provider.Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	return metrics, reader
}

// invocations returns the mcp_tool_invocations_total count per status.
func invocations(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	out := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "mcp_tool_invocations_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("unexpected data type %T", m.Data)
			}
			for _, dp := range sum.DataPoints {
				status, _ := dp.Attributes.Value("status")
				out[status.AsString()] += dp.Value
			}
		}
	}
	return out
}

func TestInstrumentedToolHandler_Success(t *testing.T) {
	metrics, reader := newTestMetrics(t)

	called := false
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		return mcp.NewToolResultText("success"), nil
	}

	result, err := InstrumentedToolHandler("test_tool", metrics, nil, handler)(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if !called {
		t.Error("expected handler to be called")
	}
	if result == nil {
		t.Fatal("expected result, got nil")
	}

	if got := invocations(t, reader); got[instrumentation.StatusSuccess] != 1 {
		t.Errorf("success invocations = %v, want 1", got)
	}
}

func TestInstrumentedToolHandler_Error(t *testing.T) {
	metrics, reader := newTestMetrics(t)

	expectedErr := errors.New("test error")
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, expectedErr
	}

	_, err := InstrumentedToolHandler("test_tool", metrics, nil, handler)(context.Background(), mcp.CallToolRequest{})
	if err != expectedErr {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
	if got := invocations(t, reader); got[instrumentation.StatusError] != 1 {
		t.Errorf("error invocations = %v, want 1", got)
	}
}

func TestInstrumentedToolHandler_ErrorResult(t *testing.T) {
	metrics, reader := newTestMetrics(t)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError("task not found"), nil
	}

	result, err := InstrumentedToolHandler("test_tool", metrics, nil, handler)(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result == nil || !result.IsError {
		t.Error("expected error result to be passed through")
	}
	if got := invocations(t, reader); got[instrumentation.StatusError] != 1 {
		t.Errorf("error invocations = %v, want 1", got)
	}
}

func TestInstrumentedToolHandler_NilMetrics(t *testing.T) {
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("ok"), nil
	}

	if _, err := InstrumentedToolHandler("test_tool", nil, nil, handler)(context.Background(), mcp.CallToolRequest{}); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}
