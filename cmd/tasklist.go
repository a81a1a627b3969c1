package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/teemow/larktask/internal/tasks"
)

func newTasklistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasklist",
		Short: "Manage tasklists",
	}
	cmd.AddCommand(
		newTasklistCreateCmd(),
		newTasklistGetCmd(),
		newTasklistUpdateCmd(),
		newTasklistDeleteCmd(),
		newTasklistListCmd(),
		newTasklistListTasksCmd(),
		newTasklistAddTaskCmd(),
	)
	return cmd
}

func newTasklistCreateCmd() *cobra.Command {
	var name, description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a tasklist",
		Args:  cobra.NoArgs,
		RunE: runE(func(ctx context.Context, a *app, _ []string) error {
			tl, err := a.tasks.CreateTasklist(ctx, name, description)
			if err != nil {
				return err
			}
			return a.done(tl, "Tasklist created: %s", tl.TasklistID)
		}),
	}

	cmd.Flags().StringVar(&name, "name", "", "Tasklist name")
	cmd.Flags().StringVar(&description, "description", "", "Tasklist description")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newTasklistGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get TASKLIST_ID",
		Short: "Show a tasklist",
		Args:  cobra.ExactArgs(1),
		RunE: runE(func(ctx context.Context, a *app, args []string) error {
			tl, err := a.tasks.GetTasklist(ctx, args[0])
			if err != nil {
				return err
			}
			return a.printTasklists([]tasks.TaskList{*tl})
		}),
	}
}

func newTasklistUpdateCmd() *cobra.Command {
	var name, description string

	cmd := &cobra.Command{
		Use:   "update TASKLIST_ID",
		Short: "Rename a tasklist or change its description",
		Args:  cobra.ExactArgs(1),
		RunE: runE(func(ctx context.Context, a *app, args []string) error {
			tl, err := a.tasks.UpdateTasklist(ctx, args[0], name, description)
			if err != nil {
				return err
			}
			return a.done(tl, "Tasklist updated: %s", args[0])
		}),
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.MarkFlagsOneRequired("name", "description")
	return cmd
}

func newTasklistDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete TASKLIST_ID",
		Short: "Delete a tasklist",
		Args:  cobra.ExactArgs(1),
		RunE: runE(func(ctx context.Context, a *app, args []string) error {
			if err := a.tasks.DeleteTasklist(ctx, args[0]); err != nil {
				return err
			}
			return a.done(map[string]string{"tasklist_id": args[0], "result": "deleted"}, "Tasklist %s deleted", args[0])
		}),
	}
}

func newTasklistListCmd() *cobra.Command {
	var pageSize int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasklists",
		Args:  cobra.NoArgs,
		RunE: runE(func(ctx context.Context, a *app, _ []string) error {
			lists, err := a.tasks.ListTasklists(ctx, pageSize)
			if err != nil {
				return err
			}
			return a.printTasklists(lists)
		}),
	}

	cmd.Flags().IntVar(&pageSize, "page-size", tasks.DefaultPageSize, "Page size (max 100)")
	return cmd
}

func newTasklistListTasksCmd() *cobra.Command {
	var pageSize int

	cmd := &cobra.Command{
		Use:   "list-tasks TASKLIST_ID",
		Short: "List the tasks of a tasklist",
		Args:  cobra.ExactArgs(1),
		RunE: runE(func(ctx context.Context, a *app, args []string) error {
			ts, err := a.tasks.ListTasklistTasks(ctx, args[0], pageSize)
			if err != nil {
				return err
			}
			return a.printTasks("Found", ts)
		}),
	}

	cmd.Flags().IntVar(&pageSize, "page-size", tasks.DefaultPageSize, "Page size (max 100)")
	return cmd
}

func newTasklistAddTaskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-task TASKLIST_ID TASK_ID",
		Short: "Add a task to a tasklist",
		Args:  cobra.ExactArgs(2),
		RunE: runE(func(ctx context.Context, a *app, args []string) error {
			if err := a.tasks.AddToTasklist(ctx, args[0], args[1]); err != nil {
				return err
			}
			return a.done(map[string]string{"tasklist_id": args[0], "task_id": args[1]}, "Task added to tasklist")
		}),
	}
}
