package tasks_tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/larktask/internal/report"
	"github.com/teemow/larktask/internal/tasks"
	"github.com/teemow/larktask/internal/tools/batch"
	"github.com/teemow/larktask/internal/tools/common"
)

func listTasksTool() mcp.Tool {
	return mcp.NewTool("tasks_list",
		mcp.WithDescription("List Feishu tasks. Without filters, lists the tasks assigned to the app's user. With tasklistId, lists the tasks of that tasklist and ignores the other filters."),
		mcp.WithBoolean("assignedToMe",
			mcp.Description("Only tasks assigned to the current user"),
		),
		mcp.WithBoolean("createdByMe",
			mcp.Description("Only tasks created by the current user"),
		),
		mcp.WithString("assignee",
			mcp.Description("Only tasks assigned to this open_id"),
		),
		mcp.WithString("statuses",
			mcp.Description("Status (string) or array of statuses: todo, in_progress, completed"),
		),
		mcp.WithString("dueBefore",
			mcp.Description("Only tasks due before this time (RFC3339)"),
		),
		mcp.WithNumber("dueWithinDays",
			mcp.Description("Only tasks due within this many days from now"),
		),
		mcp.WithString("tasklistId",
			mcp.Description("List the tasks of this tasklist instead"),
		),
		mcp.WithNumber("pageSize",
			mcp.Description("Page size (default 50, max 100)"),
		),
		mcp.WithString("pageToken",
			mcp.Description("Token of the page to fetch, from a previous call"),
		),
	)
}

func (ts *toolSet) handleListTasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	pageSize, err := common.IntArg(args, "pageSize", tasks.DefaultPageSize)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if tasklistID := common.StringArg(args, "tasklistId"); tasklistID != "" {
		items, err := ts.cfg.Tasks.ListTasklistTasks(ctx, tasklistID, pageSize)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list tasklist tasks: %v", err)), nil
		}
		return jsonResult(tasks.TaskPage{Items: items})
	}

	opts := tasks.ListOptions{
		AssignedToMe: common.BoolArg(args, "assignedToMe"),
		CreatedByMe:  common.BoolArg(args, "createdByMe"),
		Assignee:     common.StringArg(args, "assignee"),
		PageSize:     pageSize,
		PageToken:    common.StringArg(args, "pageToken"),
	}
	if opts.Statuses, err = parseStatuses(args["statuses"]); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if s := common.StringArg(args, "dueBefore"); s != "" {
		if opts.DueBefore, err = time.Parse(time.RFC3339, s); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("dueBefore must be RFC3339: %v", err)), nil
		}
	}
	days, err := common.IntArg(args, "dueWithinDays", 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if days > 0 {
		opts.DueBefore = ts.cfg.Now().Add(time.Duration(days) * 24 * time.Hour)
	}
	if !opts.AssignedToMe && !opts.CreatedByMe && opts.Assignee == "" {
		opts.AssignedToMe = true
	}

	page, err := ts.cfg.Tasks.ListTasks(ctx, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list tasks: %v", err)), nil
	}
	return jsonResult(page)
}

func getTasksTool() mcp.Tool {
	return mcp.NewTool("tasks_get",
		mcp.WithDescription("Get details of one or more tasks"),
		mcp.WithString("taskIds",
			mcp.Required(),
			mcp.Description("Task ID (string) or array of task IDs to retrieve"),
		),
	)
}

func (ts *toolSet) handleGetTasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskIDs, err := batch.ParseStringOrArray(request.GetArguments()["taskIds"], "taskIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ledger := batch.Run(ctx, taskIDs, func(ctx context.Context, id string) (*tasks.Task, error) {
		return ts.cfg.Tasks.GetTask(ctx, id)
	}, ts.cfg.Policy)
	return ledgerResult(ledger)
}

func reportTool() mcp.Tool {
	return mcp.NewTool("tasks_report",
		mcp.WithDescription("Summarize tasks by status and list overdue ones. Covers the current user's tasks, or a tasklist when tasklistId is set."),
		mcp.WithString("tasklistId",
			mcp.Description("Report on this tasklist instead of the current user's tasks"),
		),
	)
}

func (ts *toolSet) handleReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var (
		items []tasks.Task
		err   error
	)
	if tasklistID := common.StringArg(request.GetArguments(), "tasklistId"); tasklistID != "" {
		items, err = ts.cfg.Tasks.ListTasklistTasks(ctx, tasklistID, tasks.MaxPageSize)
	} else {
		items, err = ts.cfg.Tasks.ListAllTasks(ctx, tasks.ListOptions{AssignedToMe: true, PageSize: tasks.MaxPageSize})
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list tasks: %v", err)), nil
	}

	r := report.Partition(items, ts.cfg.Now())
	return jsonResult(struct {
		Total      int          `json:"total"`
		Todo       int          `json:"todo"`
		InProgress int          `json:"in_progress"`
		Completed  int          `json:"completed"`
		Overdue    []tasks.Task `json:"overdue"`
	}{
		Total:      r.Total,
		Todo:       len(r.Todo),
		InProgress: len(r.InProgress),
		Completed:  len(r.Completed),
		Overdue:    r.Overdue,
	})
}

func listTasklistsTool() mcp.Tool {
	return mcp.NewTool("tasklists_list",
		mcp.WithDescription("List the tasklists visible to the app"),
		mcp.WithNumber("pageSize",
			mcp.Description("Page size (default 50, max 100)"),
		),
	)
}

func (ts *toolSet) handleListTasklists(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageSize, err := common.IntArg(request.GetArguments(), "pageSize", tasks.DefaultPageSize)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	lists, err := ts.cfg.Tasks.ListTasklists(ctx, pageSize)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list tasklists: %v", err)), nil
	}
	return jsonResult(lists)
}
