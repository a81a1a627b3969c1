package tasks_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/larktask/internal/tasks"
	"github.com/teemow/larktask/internal/tools/batch"
	"github.com/teemow/larktask/internal/tools/common"
)

func createTasksTool() mcp.Tool {
	return mcp.NewTool("tasks_create",
		mcp.WithDescription("Create one or more tasks. Use title with the optional fields for a single task, or titles for several tasks that share assignee, due and tasklist."),
		mcp.WithString("title",
			mcp.Description("Task title (for single task creation)"),
		),
		mcp.WithString("titles",
			mcp.Description("Array of task titles (for batch task creation)"),
		),
		mcp.WithString("description",
			mcp.Description("Task description (single task only)"),
		),
		mcp.WithString("assignee",
			mcp.Description("Assignee open_id"),
		),
		mcp.WithString("due",
			mcp.Description("Due date, YYYY-MM-DD (end of day, UTC+8) or RFC3339"),
		),
		mcp.WithString("followers",
			mcp.Description("Follower open_id (string) or array of open_ids"),
		),
		mcp.WithString("tasklistId",
			mcp.Description("Also add the created tasks to this tasklist"),
		),
	)
}

// createdTask is one created task plus the outcome of adding it to a tasklist.
type createdTask struct {
	*tasks.Task
	TasklistError string `json:"tasklist_error,omitempty"`
}

func (ts *toolSet) handleCreateTasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	var titles []string
	if raw, ok := args["titles"]; ok && raw != nil {
		parsed, err := batch.ParseStringOrArray(raw, "titles")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		titles = parsed
	} else if title := common.StringArg(args, "title"); title != "" {
		titles = []string{title}
	} else {
		return mcp.NewToolResultError("either 'title' or 'titles' is required"), nil
	}

	due, err := parseDue(common.StringArg(args, "due"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var followers []string
	if raw, ok := args["followers"]; ok && raw != nil {
		if followers, err = batch.ParseStringOrArray(raw, "followers"); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	base := tasks.TaskInput{
		Assignee:  common.StringArg(args, "assignee"),
		DueTime:   due,
		Followers: followers,
	}
	if len(titles) == 1 {
		base.Description = common.StringArg(args, "description")
	}
	tasklistID := common.StringArg(args, "tasklistId")

	ledger := batch.Run(ctx, titles, func(ctx context.Context, title string) (createdTask, error) {
		input := base
		input.Summary = title
		task, err := ts.cfg.Tasks.CreateTask(ctx, input)
		if err != nil {
			return createdTask{}, err
		}
		out := createdTask{Task: task}
		if tasklistID != "" {
			if res := ts.cfg.Tasks.AttachToTasklist(ctx, tasklistID, task.TaskID); !res.OK() {
				out.TasklistError = res.Err.Error()
			}
		}
		return out, nil
	}, ts.cfg.Policy)
	return ledgerResult(ledger)
}

func updateTaskTool() mcp.Tool {
	return mcp.NewTool("tasks_update",
		mcp.WithDescription("Update fields of an existing task. Only the given fields change."),
		mcp.WithString("taskId",
			mcp.Required(),
			mcp.Description("The ID of the task to update"),
		),
		mcp.WithString("title",
			mcp.Description("New title"),
		),
		mcp.WithString("description",
			mcp.Description("New description"),
		),
		mcp.WithString("status",
			mcp.Description("New status: todo, in_progress or completed"),
		),
		mcp.WithString("assignee",
			mcp.Description("New assignee open_id"),
		),
		mcp.WithString("due",
			mcp.Description("New due date, YYYY-MM-DD or RFC3339"),
		),
	)
}

func (ts *toolSet) handleUpdateTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	taskID, err := common.RequiredString(args, "taskId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	due, err := parseDue(common.StringArg(args, "due"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	status := common.StringArg(args, "status")
	if status != "" && !isStatus(status) {
		return mcp.NewToolResultError(fmt.Sprintf("invalid status %q", status)), nil
	}

	task, err := ts.cfg.Tasks.UpdateTask(ctx, taskID, tasks.TaskUpdate{
		Summary:     common.StringArg(args, "title"),
		Description: common.StringArg(args, "description"),
		Status:      status,
		Assignee:    common.StringArg(args, "assignee"),
		DueTime:     due,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update task: %v", err)), nil
	}
	return jsonResult(task)
}

func completeTasksTool() mcp.Tool {
	return mcp.NewTool("tasks_complete",
		mcp.WithDescription("Mark one or more tasks as completed"),
		mcp.WithString("taskIds",
			mcp.Required(),
			mcp.Description("Task ID (string) or array of task IDs to complete"),
		),
	)
}

func (ts *toolSet) handleCompleteTasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskIDs, err := batch.ParseStringOrArray(request.GetArguments()["taskIds"], "taskIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ledger := batch.Run(ctx, taskIDs, func(ctx context.Context, id string) (string, error) {
		if _, err := ts.cfg.Tasks.CompleteTask(ctx, id); err != nil {
			return "", err
		}
		return id, nil
	}, ts.cfg.Policy)
	return ledgerResult(ledger)
}

func deleteTasksTool() mcp.Tool {
	return mcp.NewTool("tasks_delete",
		mcp.WithDescription("Delete one or more tasks"),
		mcp.WithString("taskIds",
			mcp.Required(),
			mcp.Description("Task ID (string) or array of task IDs to delete"),
		),
	)
}

func (ts *toolSet) handleDeleteTasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskIDs, err := batch.ParseStringOrArray(request.GetArguments()["taskIds"], "taskIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ledger := batch.Run(ctx, taskIDs, func(ctx context.Context, id string) (string, error) {
		return id, ts.cfg.Tasks.DeleteTask(ctx, id)
	}, ts.cfg.Policy)
	return ledgerResult(ledger)
}
