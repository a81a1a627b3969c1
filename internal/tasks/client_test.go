package tasks

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/larktask/internal/feishu"
	"github.com/teemow/larktask/internal/feishu/feishutest"
)

func newTestClient(t *testing.T) (*Client, *feishutest.Server) {
	t.Helper()
	srv := feishutest.NewServer(t)
	api, err := feishu.NewClient(feishu.Config{AppID: "cli_test", AppSecret: "secret", BaseURL: srv.URL})
	require.NoError(t, err)
	return NewClient(api, nil), srv
}

func TestCreateTask(t *testing.T) {
	c, srv := newTestClient(t)
	srv.Handle(http.MethodPost, "/open-apis/task/v2/tasks", func(r feishutest.Request) feishutest.Reply {
		return feishutest.OK(map[string]any{"task": map[string]any{
			"task_id": "t-100",
			"summary": r.Body["summary"],
			"status":  "todo",
		}})
	})

	task, err := c.CreateTask(context.Background(), TaskInput{
		Summary:  "Write quarterly report",
		Assignee: "ou_alice",
		DueTime:  "2024-03-31T23:59:59+08:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "t-100", task.TaskID)
	assert.Equal(t, "Write quarterly report", task.Summary)

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "ou_alice", reqs[0].Body["assignee"])
	assert.Equal(t, "2024-03-31T23:59:59+08:00", reqs[0].Body["due_time"])
	assert.NotEmpty(t, reqs[0].Body["client_token"], "creation carries an idempotency token")
}

func TestCreateTask_ClientTokenPreserved(t *testing.T) {
	c, srv := newTestClient(t)
	srv.Handle(http.MethodPost, "/open-apis/task/v2/tasks", func(r feishutest.Request) feishutest.Reply {
		return feishutest.OK(map[string]any{"task": map[string]any{"task_id": "t-1"}})
	})

	_, err := c.CreateTask(context.Background(), TaskInput{Summary: "x", ClientToken: "fixed-token"})
	require.NoError(t, err)
	assert.Equal(t, "fixed-token", srv.Requests()[0].Body["client_token"])
}

func TestCreateTask_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input TaskInput
	}{
		{"missing summary", TaskInput{}},
		{"bad due time", TaskInput{Summary: "x", DueTime: "2024-03-31"}},
		{"bad status", TaskInput{Summary: "x", Status: "done"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, srv := newTestClient(t)
			_, err := c.CreateTask(context.Background(), tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Empty(t, srv.Requests(), "invalid input never reaches the API")
		})
	}
}

func TestGetTask_NotFound(t *testing.T) {
	c, srv := newTestClient(t)
	srv.Handle(http.MethodGet, "/open-apis/task/v2/tasks/missing", func(r feishutest.Request) feishutest.Reply {
		return feishutest.Fail(feishu.CodeNotFound, "task not found")
	})

	_, err := c.GetTask(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, feishu.IsNotFound(err))
	assert.Contains(t, err.Error(), "99991663")
}

func TestUpdateTask_SendsOnlySetFields(t *testing.T) {
	c, srv := newTestClient(t)
	srv.Handle(http.MethodPatch, "/open-apis/task/v2/tasks/t-1", func(r feishutest.Request) feishutest.Reply {
		return feishutest.OK(map[string]any{"task": map[string]any{"task_id": "t-1", "status": "in_progress"}})
	})

	task, err := c.UpdateTask(context.Background(), "t-1", TaskUpdate{Status: StatusInProgress, Assignee: "ou_bob"})
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, task.Status)

	body := srv.Requests()[0].Body
	assert.Equal(t, []any{"status", "assignee"}, body["update_fields"])
	patch, ok := body["task"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ou_bob", patch["assignee"])
	assert.NotContains(t, patch, "summary")
}

func TestUpdateTask_Empty(t *testing.T) {
	c, srv := newTestClient(t)
	_, err := c.UpdateTask(context.Background(), "t-1", TaskUpdate{})
	assert.ErrorIs(t, err, ErrEmptyUpdate)
	assert.Empty(t, srv.Requests())
}

func TestCompleteTask(t *testing.T) {
	c, srv := newTestClient(t)
	srv.Handle(http.MethodPatch, "/open-apis/task/v2/tasks/t-9", func(r feishutest.Request) feishutest.Reply {
		return feishutest.OK(map[string]any{"task": map[string]any{"task_id": "t-9", "status": "completed"}})
	})

	task, err := c.CompleteTask(context.Background(), "t-9")
	require.NoError(t, err)
	assert.True(t, task.IsTerminal())
	assert.Equal(t, []any{"status"}, srv.Requests()[0].Body["update_fields"])
}

func TestDeleteTask(t *testing.T) {
	c, srv := newTestClient(t)
	srv.Handle(http.MethodDelete, "/open-apis/task/v2/tasks/t-2", func(r feishutest.Request) feishutest.Reply {
		return feishutest.OK(nil)
	})

	require.NoError(t, c.DeleteTask(context.Background(), "t-2"))
	assert.ErrorIs(t, c.DeleteTask(context.Background(), ""), ErrInvalidInput)
}

func TestListTasks_Query(t *testing.T) {
	c, srv := newTestClient(t)
	srv.Handle(http.MethodGet, "/open-apis/task/v2/tasks", func(r feishutest.Request) feishutest.Reply {
		return feishutest.OK(map[string]any{
			"items":      []any{map[string]any{"task_id": "a"}, map[string]any{"task_id": "b"}},
			"has_more":   true,
			"page_token": "next",
		})
	})

	due := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	page, err := c.ListTasks(context.Background(), ListOptions{
		AssignedToMe: true,
		Statuses:     []string{StatusTodo, StatusInProgress},
		DueBefore:    due,
		PageSize:     500,
	})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, "next", page.PageToken)

	q := srv.Requests()[0].Query
	assert.Equal(t, []string{"true"}, q["assigned_to_me"])
	assert.Equal(t, []string{"todo", "in_progress"}, q["statuses"])
	assert.Equal(t, []string{"2024-03-10T12:00:00Z"}, q["due_before"])
	assert.Equal(t, []string{"100"}, q["page_size"], "page size is capped")
}

func TestListTasks_UnknownStatus(t *testing.T) {
	c, srv := newTestClient(t)
	_, err := c.ListTasks(context.Background(), ListOptions{Statuses: []string{"done"}})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, srv.Requests())
}

func TestListAllTasks_FollowsPages(t *testing.T) {
	c, srv := newTestClient(t)
	srv.Handle(http.MethodGet, "/open-apis/task/v2/tasks", func(r feishutest.Request) feishutest.Reply {
		if len(r.Query["page_token"]) == 0 {
			return feishutest.OK(map[string]any{
				"items":      []any{map[string]any{"task_id": "a"}},
				"has_more":   true,
				"page_token": "p2",
			})
		}
		return feishutest.OK(map[string]any{
			"items":    []any{map[string]any{"task_id": "b"}},
			"has_more": false,
		})
	})

	all, err := c.ListAllTasks(context.Background(), ListOptions{CreatedByMe: true})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[1].TaskID)
	assert.Len(t, srv.Requests(), 2)
}

func TestListDueSoon(t *testing.T) {
	c, srv := newTestClient(t)
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	srv.Handle(http.MethodGet, "/open-apis/task/v2/tasks", func(r feishutest.Request) feishutest.Reply {
		return feishutest.OK(map[string]any{"items": []any{}})
	})

	_, err := c.ListDueSoon(context.Background(), "ou_carol", 3*24*time.Hour, 50)
	require.NoError(t, err)

	q := srv.Requests()[0].Query
	assert.Equal(t, []string{"ou_carol"}, q["assignee"])
	assert.Empty(t, q["assigned_to_me"])
	assert.Equal(t, []string{"2024-03-04T09:00:00Z"}, q["due_before"])
	assert.Equal(t, []string{"todo", "in_progress"}, q["statuses"])
}

func TestTaskTimes(t *testing.T) {
	now := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name        string
		task        Task
		wantOverdue bool
	}{
		{"past due todo", Task{Status: StatusTodo, DueTime: "2024-03-09T23:59:59+08:00"}, true},
		{"past due in progress", Task{Status: StatusInProgress, DueTime: "2024-03-01T00:00:00Z"}, true},
		{"past due completed", Task{Status: StatusCompleted, DueTime: "2024-03-01T00:00:00Z"}, false},
		{"future due", Task{Status: StatusTodo, DueTime: "2024-03-11T00:00:00Z"}, false},
		{"no due", Task{Status: StatusTodo}, false},
		{"unparseable due", Task{Status: StatusTodo, DueTime: "tomorrow"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantOverdue, tt.task.IsOverdue(now))
		})
	}
}

func TestDueTimeFromDate(t *testing.T) {
	got, err := DueTimeFromDate("2024-03-31")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-31T23:59:59+08:00", got)

	_, err = DueTimeFromDate("31/03/2024")
	assert.True(t, errors.Is(err, ErrInvalidInput))
}
