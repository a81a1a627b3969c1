package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/teemow/larktask/internal/feishu"
	"github.com/teemow/larktask/internal/instrumentation"
	"github.com/teemow/larktask/internal/logging"
)

const (
	tasksPath     = "/open-apis/task/v2/tasks"
	tasklistsPath = "/open-apis/task/v2/tasklists"

	// DefaultPageSize is used when ListOptions.PageSize is zero.
	DefaultPageSize = 50
	// MaxPageSize is the largest page the API accepts.
	MaxPageSize = 100
)

// ErrInvalidInput wraps local validation failures detected before any call.
var ErrInvalidInput = errors.New("invalid input")

// ErrEmptyUpdate is returned by UpdateTask when no field is set.
var ErrEmptyUpdate = fmt.Errorf("%w: no fields to update", ErrInvalidInput)

var validate = validator.New()

// Client wraps the Feishu task v2 API.
type Client struct {
	api    *feishu.Client
	logger *slog.Logger
	now    func() time.Time
}

// NewClient creates a task client on top of an authenticated API client.
func NewClient(api *feishu.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		api:    api,
		logger: logging.WithService(logger, instrumentation.ServiceTask),
		now:    time.Now,
	}
}

func op(name string) feishu.Op {
	return feishu.Op{Service: instrumentation.ServiceTask, Name: name}
}

type taskEnvelope struct {
	Task Task `json:"task"`
}

type tasklistEnvelope struct {
	Tasklist TaskList `json:"tasklist"`
}

// CreateTask creates a task. A client token is generated when input has none,
// so a retried request does not create a duplicate.
func (c *Client) CreateTask(ctx context.Context, input TaskInput) (*Task, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if input.ClientToken == "" {
		input.ClientToken = uuid.NewString()
	}

	var out taskEnvelope
	if err := c.api.Post(ctx, op("create"), tasksPath, nil, input, &out); err != nil {
		return nil, err
	}

	c.logger.Debug("task created", logging.TaskID(out.Task.TaskID))
	return &out.Task, nil
}

// GetTask returns a task by id.
func (c *Client) GetTask(ctx context.Context, taskID string) (*Task, error) {
	if taskID == "" {
		return nil, fmt.Errorf("%w: task id is required", ErrInvalidInput)
	}

	var out taskEnvelope
	if err := c.api.Get(ctx, op("get"), taskPath(taskID), nil, &out); err != nil {
		return nil, err
	}
	return &out.Task, nil
}

// UpdateTask changes the non-empty fields of update.
func (c *Client) UpdateTask(ctx context.Context, taskID string, update TaskUpdate) (*Task, error) {
	if taskID == "" {
		return nil, fmt.Errorf("%w: task id is required", ErrInvalidInput)
	}
	fields := update.fields()
	if len(fields) == 0 {
		return nil, ErrEmptyUpdate
	}
	if err := validateStruct(update); err != nil {
		return nil, err
	}

	body := struct {
		Task         TaskUpdate `json:"task"`
		UpdateFields []string   `json:"update_fields"`
	}{Task: update, UpdateFields: fields}

	var out taskEnvelope
	if err := c.api.Patch(ctx, op("update"), taskPath(taskID), body, &out); err != nil {
		return nil, err
	}

	c.logger.Debug("task updated", logging.TaskID(taskID), slog.Any("fields", fields))
	return &out.Task, nil
}

// CompleteTask marks a task completed.
func (c *Client) CompleteTask(ctx context.Context, taskID string) (*Task, error) {
	return c.UpdateTask(ctx, taskID, TaskUpdate{Status: StatusCompleted})
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	if taskID == "" {
		return fmt.Errorf("%w: task id is required", ErrInvalidInput)
	}
	if err := c.api.Delete(ctx, op("delete"), taskPath(taskID)); err != nil {
		return err
	}
	c.logger.Debug("task deleted", logging.TaskID(taskID))
	return nil
}

// ListTasks returns one page of tasks matching opts.
func (c *Client) ListTasks(ctx context.Context, opts ListOptions) (*TaskPage, error) {
	query, err := opts.query()
	if err != nil {
		return nil, err
	}

	var page TaskPage
	if err := c.api.Get(ctx, op("list"), tasksPath, query, &page); err != nil {
		return nil, err
	}
	if page.Items == nil {
		page.Items = []Task{}
	}
	return &page, nil
}

// ListAllTasks follows page tokens until the listing is exhausted.
func (c *Client) ListAllTasks(ctx context.Context, opts ListOptions) ([]Task, error) {
	var all []Task
	for {
		page, err := c.ListTasks(ctx, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
		if !page.HasMore || page.PageToken == "" {
			return all, nil
		}
		opts.PageToken = page.PageToken
	}
}

// ListDueSoon returns unfinished tasks due within the window from now.
// An empty assignee lists the tasks assigned to the caller.
func (c *Client) ListDueSoon(ctx context.Context, assignee string, within time.Duration, pageSize int) ([]Task, error) {
	opts := ListOptions{
		Statuses:  []string{StatusTodo, StatusInProgress},
		DueBefore: c.now().Add(within),
		PageSize:  pageSize,
	}
	if assignee != "" {
		opts.Assignee = assignee
	} else {
		opts.AssignedToMe = true
	}

	page, err := c.ListTasks(ctx, opts)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (o ListOptions) query() (url.Values, error) {
	q := url.Values{}
	if o.AssignedToMe {
		q.Set("assigned_to_me", "true")
	}
	if o.CreatedByMe {
		q.Set("created_by_me", "true")
	}
	if o.Assignee != "" {
		q.Set("assignee", o.Assignee)
	}
	for _, s := range o.Statuses {
		if !validStatus(s) {
			return nil, fmt.Errorf("%w: unknown status %q (want one of %s)", ErrInvalidInput, s, strings.Join(Statuses, ", "))
		}
		q.Add("statuses", s)
	}
	if !o.DueBefore.IsZero() {
		q.Set("due_before", o.DueBefore.Format(time.RFC3339))
	}

	size := o.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	q.Set("page_size", strconv.Itoa(size))

	if o.PageToken != "" {
		q.Set("page_token", o.PageToken)
	}
	return q, nil
}

func validStatus(s string) bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

func taskPath(taskID string) string {
	return tasksPath + "/" + feishu.PathEscape(taskID)
}

// validateStruct runs struct validation and reports the first failing field.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("%w: %s failed %q validation (value %v)", ErrInvalidInput, strings.ToLower(fe.Field()), fe.Tag(), fe.Value())
	}
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}
