package tasks

import (
	"fmt"
	"time"
)

// Task status values.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Statuses lists every valid task status.
var Statuses = []string{StatusTodo, StatusInProgress, StatusCompleted}

// Task is a Feishu task as returned by the task v2 API.
// Timestamps are RFC 3339 strings as delivered by the server.
type Task struct {
	TaskID        string   `json:"task_id"`
	Summary       string   `json:"summary"`
	Description   string   `json:"description,omitempty"`
	Status        string   `json:"status"`
	Assignee      string   `json:"assignee,omitempty"`
	DueTime       string   `json:"due_time,omitempty"`
	CreatedTime   string   `json:"created_time,omitempty"`
	CompletedTime string   `json:"completed_time,omitempty"`
	URL           string   `json:"url,omitempty"`
	Followers     []string `json:"followers,omitempty"`
	ParentTaskID  string   `json:"parent_task_id,omitempty"`
}

// Due returns the parsed due time and whether the task has a valid one.
func (t Task) Due() (time.Time, bool) {
	return parseTime(t.DueTime)
}

// Created returns the parsed creation time.
func (t Task) Created() (time.Time, bool) {
	return parseTime(t.CreatedTime)
}

// Completed returns the parsed completion time.
func (t Task) Completed() (time.Time, bool) {
	return parseTime(t.CompletedTime)
}

// IsTerminal reports whether the task is finished.
func (t Task) IsTerminal() bool {
	return t.Status == StatusCompleted
}

// IsOverdue reports whether an unfinished task's due time lies before now.
func (t Task) IsOverdue(now time.Time) bool {
	if t.IsTerminal() {
		return false
	}
	due, ok := t.Due()
	return ok && due.Before(now)
}

func parseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// TaskList is a named collection of tasks.
type TaskList struct {
	TasklistID  string `json:"tasklist_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	CreatedTime string `json:"created_time,omitempty"`
}

// TaskInput is the payload for creating a task.
type TaskInput struct {
	Summary      string   `json:"summary" validate:"required"`
	Description  string   `json:"description,omitempty"`
	Assignee     string   `json:"assignee,omitempty"`
	DueTime      string   `json:"due_time,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Status       string   `json:"status,omitempty" validate:"omitempty,oneof=todo in_progress completed"`
	Followers    []string `json:"followers,omitempty"`
	ParentTaskID string   `json:"parent_task_id,omitempty"`
	// ClientToken makes creation idempotent; NewClient fills it when empty.
	ClientToken string `json:"client_token,omitempty"`
}

// TaskUpdate lists the fields to change. Empty fields are left untouched.
type TaskUpdate struct {
	Summary     string `json:"summary,omitempty"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty" validate:"omitempty,oneof=todo in_progress completed"`
	Assignee    string `json:"assignee,omitempty"`
	DueTime     string `json:"due_time,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// fields returns the API names of the fields set on u, in a stable order.
func (u TaskUpdate) fields() []string {
	var fields []string
	if u.Summary != "" {
		fields = append(fields, "summary")
	}
	if u.Description != "" {
		fields = append(fields, "description")
	}
	if u.Status != "" {
		fields = append(fields, "status")
	}
	if u.Assignee != "" {
		fields = append(fields, "assignee")
	}
	if u.DueTime != "" {
		fields = append(fields, "due_time")
	}
	return fields
}

// ListOptions filters a task listing.
type ListOptions struct {
	AssignedToMe bool
	CreatedByMe  bool
	Assignee     string
	Statuses     []string
	DueBefore    time.Time
	PageSize     int
	PageToken    string
}

// TaskPage is one page of a task listing.
type TaskPage struct {
	Items     []Task `json:"items"`
	PageToken string `json:"page_token,omitempty"`
	HasMore   bool   `json:"has_more"`
}

// AttachResult reports the outcome of linking a task to a tasklist after it
// was created. A failed attachment does not undo the creation.
type AttachResult struct {
	TasklistID string
	TaskID     string
	Err        error
}

// OK reports whether the attachment succeeded.
func (r AttachResult) OK() bool {
	return r.Err == nil
}

// dueDateSuffix pins a bare date to the end of that day in UTC+8.
const dueDateSuffix = "T23:59:59+08:00"

// DueTimeFromDate converts a YYYY-MM-DD date into the end-of-day due time
// used by bulk operations and the CLI.
func DueTimeFromDate(date string) (string, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return "", fmt.Errorf("%w: due date %q must be YYYY-MM-DD", ErrInvalidInput, date)
	}
	return date + dueDateSuffix, nil
}
