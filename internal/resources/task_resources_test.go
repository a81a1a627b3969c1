package resources

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/larktask/internal/tasks"
)

type fakeSource struct {
	lists []tasks.TaskList
	items []tasks.Task
	err   error
}

func (f *fakeSource) ListTasklists(context.Context, int) ([]tasks.TaskList, error) {
	return f.lists, f.err
}

func (f *fakeSource) ListAllTasks(_ context.Context, opts tasks.ListOptions) ([]tasks.Task, error) {
	if !opts.AssignedToMe {
		return nil, errors.New("expected the caller's tasks")
	}
	return f.items, f.err
}

func read(t *testing.T, fn func(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error), uri string) map[string]any {
	t.Helper()
	req := mcp.ReadResourceRequest{}
	req.Params.URI = uri
	contents, err := fn(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, contents, 1)
	text, ok := contents[0].(*mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, uri, text.URI)
	assert.Equal(t, "application/json", text.MIMEType)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out
}

func TestHandleReport(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	h := &handlers{
		src: &fakeSource{items: []tasks.Task{
			{TaskID: "a", Status: tasks.StatusTodo, DueTime: "2024-03-01T00:00:00Z"},
			{TaskID: "b", Status: tasks.StatusInProgress},
			{TaskID: "c", Status: tasks.StatusCompleted, DueTime: "2024-03-01T00:00:00Z"},
		}},
		now: func() time.Time { return now },
	}

	out := read(t, h.handleReport, ReportURI)
	assert.EqualValues(t, 3, out["total"])
	assert.EqualValues(t, 1, out["todo"])
	assert.EqualValues(t, 1, out["in_progress"])
	assert.EqualValues(t, 1, out["completed"])
	assert.Len(t, out["overdue"], 1)
	assert.Equal(t, "2024-03-15T12:00:00Z", out["generatedAt"])
}

func TestHandleTasklists(t *testing.T) {
	h := &handlers{src: &fakeSource{lists: []tasks.TaskList{{TasklistID: "tl_1", Name: "Sprint"}}}, now: time.Now}

	req := mcp.ReadResourceRequest{}
	req.Params.URI = TasklistsURI
	contents, err := h.handleTasklists(context.Background(), req)
	require.NoError(t, err)

	var lists []tasks.TaskList
	require.NoError(t, json.Unmarshal([]byte(contents[0].(*mcp.TextResourceContents).Text), &lists))
	assert.Equal(t, []tasks.TaskList{{TasklistID: "tl_1", Name: "Sprint"}}, lists)
}

func TestHandlers_Error(t *testing.T) {
	h := &handlers{src: &fakeSource{err: errors.New("boom")}, now: time.Now}

	_, err := h.handleTasklists(context.Background(), mcp.ReadResourceRequest{})
	assert.ErrorContains(t, err, "boom")
	_, err = h.handleReport(context.Background(), mcp.ReadResourceRequest{})
	assert.ErrorContains(t, err, "boom")
}

func TestRegisterTaskResources(t *testing.T) {
	s := mcpserver.NewMCPServer("test", "0.0.0", mcpserver.WithResourceCapabilities(false, false))
	assert.Error(t, RegisterTaskResources(s, nil, nil))
	assert.NoError(t, RegisterTaskResources(s, &fakeSource{}, nil))
}
