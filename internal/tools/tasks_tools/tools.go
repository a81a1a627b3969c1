package tasks_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/larktask/internal/instrumentation"
	"github.com/teemow/larktask/internal/tasks"
	"github.com/teemow/larktask/internal/tools/batch"
	"github.com/teemow/larktask/internal/tools/common"
)

// TaskService is the task API used by the tools. *tasks.Client satisfies it.
type TaskService interface {
	GetTask(ctx context.Context, taskID string) (*tasks.Task, error)
	CreateTask(ctx context.Context, input tasks.TaskInput) (*tasks.Task, error)
	UpdateTask(ctx context.Context, taskID string, update tasks.TaskUpdate) (*tasks.Task, error)
	CompleteTask(ctx context.Context, taskID string) (*tasks.Task, error)
	DeleteTask(ctx context.Context, taskID string) error
	ListTasks(ctx context.Context, opts tasks.ListOptions) (*tasks.TaskPage, error)
	ListAllTasks(ctx context.Context, opts tasks.ListOptions) ([]tasks.Task, error)
	ListTasklists(ctx context.Context, pageSize int) ([]tasks.TaskList, error)
	ListTasklistTasks(ctx context.Context, tasklistID string, pageSize int) ([]tasks.Task, error)
	AttachToTasklist(ctx context.Context, tasklistID, taskID string) tasks.AttachResult
}

// Config holds the dependencies of the task tools.
type Config struct {
	Tasks   TaskService
	Metrics *instrumentation.Metrics
	Logger  *slog.Logger
	// Policy paces multi-ID tools.
	Policy batch.Policy
	// ReadOnly leaves out the tools that change tasks.
	ReadOnly bool
	Now      func() time.Time
}

type toolSet struct {
	cfg Config
}

// RegisterTasksTools registers the task tools with the MCP server.
func RegisterTasksTools(s *mcpserver.MCPServer, cfg Config) error {
	if cfg.Tasks == nil {
		return fmt.Errorf("task service is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	ts := &toolSet{cfg: cfg}
	for _, t := range ts.tools() {
		s.AddTool(t.tool, common.InstrumentedToolHandler(t.tool.Name, cfg.Metrics, cfg.Logger, t.handler))
	}
	return nil
}

type registration struct {
	tool    mcp.Tool
	handler mcpserver.ToolHandlerFunc
}

// tools returns the tools to register, honoring ReadOnly.
func (ts *toolSet) tools() []registration {
	regs := []registration{
		{listTasksTool(), ts.handleListTasks},
		{getTasksTool(), ts.handleGetTasks},
		{reportTool(), ts.handleReport},
		{listTasklistsTool(), ts.handleListTasklists},
	}
	if ts.cfg.ReadOnly {
		return regs
	}
	return append(regs,
		registration{createTasksTool(), ts.handleCreateTasks},
		registration{updateTaskTool(), ts.handleUpdateTask},
		registration{completeTasksTool(), ts.handleCompleteTasks},
		registration{deleteTasksTool(), ts.handleDeleteTasks},
	)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// batchOutput is the result of a multi-ID tool.
type batchOutput[R any] struct {
	batch.Summary
	Results []R `json:"results"`
}

func ledgerResult[R any](ledger *batch.Ledger[string, R]) (*mcp.CallToolResult, error) {
	return jsonResult(batchOutput[R]{
		Summary: ledger.Summary(func(id string) string { return id }),
		Results: ledger.Successes,
	})
}

// parseDue accepts YYYY-MM-DD or RFC 3339.
func parseDue(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	if len(s) == len("2006-01-02") {
		return tasks.DueTimeFromDate(s)
	}
	if _, err := time.Parse(time.RFC3339, s); err != nil {
		return "", fmt.Errorf("due must be YYYY-MM-DD or RFC 3339, got %q", s)
	}
	return s, nil
}

func parseStatuses(v interface{}) ([]string, error) {
	if v == nil {
		return nil, nil
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return nil, nil
	}
	statuses, err := batch.ParseStringOrArray(v, "statuses")
	if err != nil {
		return nil, err
	}
	for _, s := range statuses {
		if !isStatus(s) {
			return nil, fmt.Errorf("invalid status %q, must be one of %s", s, strings.Join(tasks.Statuses, ", "))
		}
	}
	return statuses, nil
}

func isStatus(s string) bool {
	for _, st := range tasks.Statuses {
		if s == st {
			return true
		}
	}
	return false
}
