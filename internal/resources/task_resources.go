package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/larktask/internal/report"
	"github.com/teemow/larktask/internal/tasks"
)

// Resource URIs.
const (
	TasklistsURI = "larktask://tasklists"
	ReportURI    = "larktask://report"
)

// TaskSource is the part of the task API read by the resources.
// *tasks.Client satisfies it.
type TaskSource interface {
	ListTasklists(ctx context.Context, pageSize int) ([]tasks.TaskList, error)
	ListAllTasks(ctx context.Context, opts tasks.ListOptions) ([]tasks.Task, error)
}

type handlers struct {
	src TaskSource
	now func() time.Time
}

// RegisterTaskResources registers read-only resources describing the
// tasklists visible to the app and the status of the caller's tasks.
func RegisterTaskResources(s *mcpserver.MCPServer, src TaskSource, now func() time.Time) error {
	if src == nil {
		return fmt.Errorf("task source is required")
	}
	if now == nil {
		now = time.Now
	}
	h := &handlers{src: src, now: now}

	tasklistsResource := mcp.NewResource(
		TasklistsURI,
		"Tasklists",
		mcp.WithResourceDescription("Tasklists visible to the app"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(tasklistsResource, h.handleTasklists)

	reportResource := mcp.NewResource(
		ReportURI,
		"Task Report",
		mcp.WithResourceDescription("Status counts and overdue tasks of the tasks assigned to the app's user"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(reportResource, h.handleReport)

	return nil
}

func (h *handlers) handleTasklists(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	lists, err := h.src.ListTasklists(ctx, tasks.MaxPageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasklists: %w", err)
	}
	return jsonContents(request.Params.URI, lists)
}

func (h *handlers) handleReport(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	items, err := h.src.ListAllTasks(ctx, tasks.ListOptions{AssignedToMe: true, PageSize: tasks.MaxPageSize})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	r := report.Partition(items, h.now())
	return jsonContents(request.Params.URI, map[string]interface{}{
		"total":       r.Total,
		"todo":        len(r.Todo),
		"in_progress": len(r.InProgress),
		"completed":   len(r.Completed),
		"overdue":     r.Overdue,
		"generatedAt": h.now().Format(time.RFC3339),
	})
}

func jsonContents(uri string, v interface{}) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource data: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
