package tasks

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/teemow/larktask/internal/feishu"
	"github.com/teemow/larktask/internal/logging"
)

type tasklistPage struct {
	Items     []TaskList `json:"items"`
	PageToken string     `json:"page_token,omitempty"`
	HasMore   bool       `json:"has_more"`
}

// CreateTasklist creates a tasklist.
func (c *Client) CreateTasklist(ctx context.Context, name, description string) (*TaskList, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: tasklist name is required", ErrInvalidInput)
	}

	body := map[string]string{"name": name}
	if description != "" {
		body["description"] = description
	}

	var out tasklistEnvelope
	if err := c.api.Post(ctx, op("tasklist_create"), tasklistsPath, nil, body, &out); err != nil {
		return nil, err
	}

	c.logger.Debug("tasklist created", logging.TasklistID(out.Tasklist.TasklistID))
	return &out.Tasklist, nil
}

// GetTasklist returns a tasklist by id.
func (c *Client) GetTasklist(ctx context.Context, tasklistID string) (*TaskList, error) {
	if tasklistID == "" {
		return nil, fmt.Errorf("%w: tasklist id is required", ErrInvalidInput)
	}

	var out tasklistEnvelope
	if err := c.api.Get(ctx, op("tasklist_get"), tasklistPath(tasklistID), nil, &out); err != nil {
		return nil, err
	}
	return &out.Tasklist, nil
}

// UpdateTasklist renames a tasklist or changes its description.
func (c *Client) UpdateTasklist(ctx context.Context, tasklistID, name, description string) (*TaskList, error) {
	if tasklistID == "" {
		return nil, fmt.Errorf("%w: tasklist id is required", ErrInvalidInput)
	}

	fields := []string{}
	patch := map[string]string{}
	if name != "" {
		patch["name"] = name
		fields = append(fields, "name")
	}
	if description != "" {
		patch["description"] = description
		fields = append(fields, "description")
	}
	if len(fields) == 0 {
		return nil, ErrEmptyUpdate
	}

	body := map[string]any{"tasklist": patch, "update_fields": fields}

	var out tasklistEnvelope
	if err := c.api.Patch(ctx, op("tasklist_update"), tasklistPath(tasklistID), body, &out); err != nil {
		return nil, err
	}
	return &out.Tasklist, nil
}

// DeleteTasklist deletes a tasklist. Its tasks are not deleted.
func (c *Client) DeleteTasklist(ctx context.Context, tasklistID string) error {
	if tasklistID == "" {
		return fmt.Errorf("%w: tasklist id is required", ErrInvalidInput)
	}
	return c.api.Delete(ctx, op("tasklist_delete"), tasklistPath(tasklistID))
}

// ListTasklists returns up to pageSize tasklists visible to the app.
func (c *Client) ListTasklists(ctx context.Context, pageSize int) ([]TaskList, error) {
	var page tasklistPage
	if err := c.api.Get(ctx, op("tasklist_list"), tasklistsPath, pageQuery(pageSize), &page); err != nil {
		return nil, err
	}
	if page.Items == nil {
		page.Items = []TaskList{}
	}
	return page.Items, nil
}

// ListTasklistTasks returns up to pageSize tasks of a tasklist.
func (c *Client) ListTasklistTasks(ctx context.Context, tasklistID string, pageSize int) ([]Task, error) {
	if tasklistID == "" {
		return nil, fmt.Errorf("%w: tasklist id is required", ErrInvalidInput)
	}

	var page TaskPage
	if err := c.api.Get(ctx, op("tasklist_tasks"), tasklistPath(tasklistID)+"/tasks", pageQuery(pageSize), &page); err != nil {
		return nil, err
	}
	if page.Items == nil {
		page.Items = []Task{}
	}
	return page.Items, nil
}

// AddToTasklist links an existing task to a tasklist.
func (c *Client) AddToTasklist(ctx context.Context, tasklistID, taskID string) error {
	if tasklistID == "" || taskID == "" {
		return fmt.Errorf("%w: tasklist id and task id are required", ErrInvalidInput)
	}

	body := map[string]string{"tasklist_guid": tasklistID}
	if err := c.api.Post(ctx, op("add_tasklist"), taskPath(taskID)+"/add_tasklist", nil, body, nil); err != nil {
		return err
	}

	c.logger.Debug("task added to tasklist", logging.TaskID(taskID), logging.TasklistID(tasklistID))
	return nil
}

// AttachToTasklist links a freshly created task to a tasklist. A failure is
// logged and returned in the result; the task itself stays created.
func (c *Client) AttachToTasklist(ctx context.Context, tasklistID, taskID string) AttachResult {
	res := AttachResult{TasklistID: tasklistID, TaskID: taskID}
	if err := c.AddToTasklist(ctx, tasklistID, taskID); err != nil {
		res.Err = err
		c.logger.Warn("task created but not added to tasklist",
			logging.TaskID(taskID),
			logging.TasklistID(tasklistID),
			logging.Err(err))
	}
	return res
}

func tasklistPath(tasklistID string) string {
	return tasklistsPath + "/" + feishu.PathEscape(tasklistID)
}

func pageQuery(pageSize int) url.Values {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return url.Values{"page_size": {strconv.Itoa(pageSize)}}
}
