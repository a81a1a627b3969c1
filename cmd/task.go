package cmd

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/larktask/internal/report"
	"github.com/teemow/larktask/internal/tasks"
)

func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Create, inspect and change single tasks",
	}
	cmd.AddCommand(
		newTaskListCmd(),
		newTaskCreateCmd(),
		newTaskGetCmd(),
		newTaskUpdateCmd(),
		newTaskCompleteCmd(),
		newTaskDeleteCmd(),
		newTaskReportCmd(),
	)
	return cmd
}

// validateStatuses rejects anything but todo, in_progress and completed.
func validateStatuses(statuses ...string) error {
	for _, s := range statuses {
		if !slices.Contains(tasks.Statuses, s) {
			return fmt.Errorf("invalid status %q, must be one of %s", s, strings.Join(tasks.Statuses, ", "))
		}
	}
	return nil
}

// dueFlag converts a --due value to the API due time. Empty stays empty.
func dueFlag(date string) (string, error) {
	if date == "" {
		return "", nil
	}
	return tasks.DueTimeFromDate(date)
}

func newTaskListCmd() *cobra.Command {
	var (
		opts    tasks.ListOptions
		dueSoon int
		all     bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Long: `List tasks assigned to you (the default), created by you, or assigned to
a given user. --due-soon lists your unfinished tasks due within N days.`,
		Args: cobra.NoArgs,
		RunE: runE(func(ctx context.Context, a *app, _ []string) error {
			if err := validateStatuses(opts.Statuses...); err != nil {
				return err
			}

			if dueSoon > 0 {
				ts, err := a.tasks.ListDueSoon(ctx, opts.Assignee, time.Duration(dueSoon)*24*time.Hour, tasks.MaxPageSize)
				if err != nil {
					return err
				}
				return a.printTasks("Found", ts)
			}

			if !opts.CreatedByMe && opts.Assignee == "" {
				opts.AssignedToMe = true
			}
			if all {
				ts, err := a.tasks.ListAllTasks(ctx, opts)
				if err != nil {
					return err
				}
				return a.printTasks("Found", ts)
			}

			page, err := a.tasks.ListTasks(ctx, opts)
			if err != nil {
				return err
			}
			if a.json {
				return writeJSON(a.out, page)
			}
			if err := a.printTasks("Found", page.Items); err != nil {
				return err
			}
			if page.HasMore {
				fmt.Fprintf(a.out, "\nMore tasks available: --page-token %s\n", page.PageToken)
			}
			return nil
		}),
	}

	cmd.Flags().BoolVar(&opts.AssignedToMe, "assigned-to-me", false, "Tasks assigned to me")
	cmd.Flags().BoolVar(&opts.CreatedByMe, "created-by-me", false, "Tasks created by me")
	cmd.Flags().StringVar(&opts.Assignee, "assignee", "", "Filter by assignee open_id")
	cmd.Flags().StringSliceVar(&opts.Statuses, "status", nil, "Filter by status (todo, in_progress, completed); repeatable")
	cmd.Flags().IntVar(&dueSoon, "due-soon", 0, "Unfinished tasks due within N days")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", tasks.DefaultPageSize, "Page size (max 100)")
	cmd.Flags().StringVar(&opts.PageToken, "page-token", "", "Token of the page to fetch")
	cmd.Flags().BoolVar(&all, "all", false, "Follow page tokens and list every matching task")
	cmd.MarkFlagsMutuallyExclusive("assigned-to-me", "created-by-me", "assignee")
	return cmd
}

func newTaskCreateCmd() *cobra.Command {
	var (
		input      tasks.TaskInput
		due        string
		tasklistID string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: runE(func(ctx context.Context, a *app, _ []string) error {
			var err error
			if input.DueTime, err = dueFlag(due); err != nil {
				return err
			}

			task, err := a.tasks.CreateTask(ctx, input)
			if err != nil {
				return err
			}

			if tasklistID != "" {
				if res := a.tasks.AttachToTasklist(ctx, tasklistID, task.TaskID); !res.OK() {
					fmt.Fprintf(a.errOut, "⚠️  Not added to tasklist %s: %v\n", tasklistID, res.Err)
				}
			}

			if a.json {
				return writeJSON(a.out, task)
			}
			fmt.Fprintf(a.out, "✅ Task created: %s\n", task.TaskID)
			if task.URL != "" {
				fmt.Fprintf(a.out, "   URL: %s\n", task.URL)
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&input.Summary, "title", "", "Task title")
	cmd.Flags().StringVar(&input.Description, "description", "", "Task description")
	cmd.Flags().StringVar(&input.Assignee, "assignee", "", "Assignee open_id")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD), end of day UTC+8")
	cmd.Flags().StringSliceVar(&input.Followers, "followers", nil, "Follower open_ids")
	cmd.Flags().StringVar(&input.ParentTaskID, "parent", "", "Parent task ID")
	cmd.Flags().StringVar(&tasklistID, "tasklist", "", "Also add the task to this tasklist")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newTaskGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get TASK_ID",
		Short: "Show task details",
		Args:  cobra.ExactArgs(1),
		RunE: runE(func(ctx context.Context, a *app, args []string) error {
			task, err := a.tasks.GetTask(ctx, args[0])
			if err != nil {
				return err
			}
			return a.printTask(task)
		}),
	}
}

func newTaskUpdateCmd() *cobra.Command {
	var (
		update tasks.TaskUpdate
		due    string
	)

	cmd := &cobra.Command{
		Use:   "update TASK_ID",
		Short: "Update fields of a task",
		Long:  "Update the given fields of a task. Fields without a flag are left unchanged.",
		Args:  cobra.ExactArgs(1),
		RunE: runE(func(ctx context.Context, a *app, args []string) error {
			if update.Status != "" {
				if err := validateStatuses(update.Status); err != nil {
					return err
				}
			}
			var err error
			if update.DueTime, err = dueFlag(due); err != nil {
				return err
			}

			task, err := a.tasks.UpdateTask(ctx, args[0], update)
			if err != nil {
				return err
			}
			return a.done(task, "Task updated: %s", args[0])
		}),
	}

	cmd.Flags().StringVar(&update.Summary, "title", "", "New title")
	cmd.Flags().StringVar(&update.Description, "description", "", "New description")
	cmd.Flags().StringVar(&update.Status, "status", "", "New status (todo, in_progress, completed)")
	cmd.Flags().StringVar(&update.Assignee, "assignee", "", "New assignee open_id")
	cmd.Flags().StringVar(&due, "due", "", "New due date (YYYY-MM-DD)")
	return cmd
}

func newTaskCompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete TASK_ID",
		Short: "Mark a task as completed",
		Args:  cobra.ExactArgs(1),
		RunE: runE(func(ctx context.Context, a *app, args []string) error {
			task, err := a.tasks.CompleteTask(ctx, args[0])
			if err != nil {
				return err
			}
			return a.done(task, "Task %s marked as completed", args[0])
		}),
	}
}

func newTaskDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete TASK_ID",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: runE(func(ctx context.Context, a *app, args []string) error {
			if err := a.tasks.DeleteTask(ctx, args[0]); err != nil {
				return err
			}
			return a.done(map[string]string{"task_id": args[0], "result": "deleted"}, "Task %s deleted", args[0])
		}),
	}
}

func newTaskReportCmd() *cobra.Command {
	var tasklistID string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize tasks by status and list overdue ones",
		Long: `Count your tasks by status and list the overdue ones. With --tasklist,
report on the tasks of that tasklist instead.`,
		Args: cobra.NoArgs,
		RunE: runE(func(ctx context.Context, a *app, _ []string) error {
			var (
				ts  []tasks.Task
				err error
			)
			if tasklistID != "" {
				ts, err = a.tasks.ListTasklistTasks(ctx, tasklistID, tasks.MaxPageSize)
			} else {
				ts, err = a.tasks.ListAllTasks(ctx, tasks.ListOptions{AssignedToMe: true, PageSize: tasks.MaxPageSize})
			}
			if err != nil {
				return err
			}

			r := report.Partition(ts, time.Now())
			if a.json {
				return writeJSON(a.out, r)
			}
			return report.WriteReport(a.out, r)
		}),
	}

	cmd.Flags().StringVar(&tasklistID, "tasklist", "", "Tasklist ID (optional)")
	return cmd
}
