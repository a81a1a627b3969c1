package common

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/larktask/internal/instrumentation"
	"github.com/teemow/larktask/internal/logging"
)

var errToolResult = errors.New("tool returned an error result")

// InstrumentedToolHandler wraps a tool handler with a span, invocation
// metrics and a log line. A result with IsError set counts as a failure.
// metrics and logger may be nil.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", metrics, logger, handler))
func InstrumentedToolHandler(
	toolName string,
	metrics *instrumentation.Metrics,
	logger *slog.Logger,
	handler mcpserver.ToolHandlerFunc,
) mcpserver.ToolHandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logging.WithTool(logger, toolName)

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx, span := instrumentation.StartToolSpan(ctx, toolName)
		defer span.End()

		start := time.Now()
		result, err := handler(ctx, request)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		switch {
		case err != nil:
			status = instrumentation.StatusError
			instrumentation.SetSpanError(span, err)
		case result != nil && result.IsError:
			status = instrumentation.StatusError
			instrumentation.SetSpanError(span, errToolResult)
		default:
			instrumentation.SetSpanSuccess(span)
		}

		metrics.RecordToolInvocation(ctx, toolName, status, duration)
		logger.Debug("tool invoked",
			logging.Status(status),
			slog.Duration(logging.KeyDuration, duration),
			logging.Err(err))

		return result, err
	}
}
