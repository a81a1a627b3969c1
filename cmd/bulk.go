package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/teemow/larktask/internal/bulk"
)

func newBulkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bulk",
		Short: "Import, update, delete and export many tasks at once",
		Long: `Bulk operations run one API call per item, pausing --delay between calls.
A failing item is reported and the batch continues with the next one.`,
	}
	cmd.AddCommand(
		newImportCSVCmd(),
		newImportJSONCmd(),
		newBulkAssignCmd(),
		newBulkStatusCmd(),
		newBulkDueCmd(),
		newBulkDeleteCmd(),
		newExportCmd(),
	)
	return cmd
}

func newImportCSVCmd() *cobra.Command {
	var file, tasklistID, defaultAssignee string

	cmd := &cobra.Command{
		Use:   "import-csv",
		Short: "Create tasks from a CSV file",
		Long: `Create one task per row of a CSV file with the header
title,description,assignee,due_date,status. due_date is YYYY-MM-DD.`,
		Args: cobra.NoArgs,
		RunE: runE(func(ctx context.Context, a *app, _ []string) error {
			ledger, err := a.bulkRunner().ImportCSV(ctx, file, tasklistID, defaultAssignee)
			if err != nil {
				return err
			}
			return a.printSummary(ctx, "created", ledger.Summary(bulk.Row.Label))
		}),
	}

	cmd.Flags().StringVar(&file, "file", "", "CSV file path")
	cmd.Flags().StringVar(&tasklistID, "tasklist", "", "Add the created tasks to this tasklist")
	cmd.Flags().StringVar(&defaultAssignee, "default-assignee", "", "Assignee for rows without one")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newImportJSONCmd() *cobra.Command {
	var file, tasklistID string

	cmd := &cobra.Command{
		Use:   "import-json",
		Short: "Create tasks from a JSON file",
		Long: `Create one task per element of a JSON array of objects with the fields
title, description, assignee, due_time (RFC 3339) and status.`,
		Args: cobra.NoArgs,
		RunE: runE(func(ctx context.Context, a *app, _ []string) error {
			ledger, err := a.bulkRunner().ImportJSON(ctx, file, tasklistID)
			if err != nil {
				return err
			}
			return a.printSummary(ctx, "created", ledger.Summary(bulk.Row.Label))
		}),
	}

	cmd.Flags().StringVar(&file, "file", "", "JSON file path")
	cmd.Flags().StringVar(&tasklistID, "tasklist", "", "Add the created tasks to this tasklist")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// taskIDsFlag registers the --tasks flag shared by the bulk update commands.
func taskIDsFlag(cmd *cobra.Command, ids *[]string) {
	cmd.Flags().StringSliceVar(ids, "tasks", nil, "Task IDs, comma separated or repeated")
	_ = cmd.MarkFlagRequired("tasks")
}

func identity(id string) string { return id }

func newBulkAssignCmd() *cobra.Command {
	var (
		ids      []string
		assignee string
	)

	cmd := &cobra.Command{
		Use:   "bulk-assign",
		Short: "Assign tasks to a user",
		Args:  cobra.NoArgs,
		RunE: runE(func(ctx context.Context, a *app, _ []string) error {
			ledger, err := a.bulkRunner().BulkAssign(ctx, ids, assignee)
			if err != nil {
				return err
			}
			return a.printSummary(ctx, "updated", ledger.Summary(identity))
		}),
	}

	taskIDsFlag(cmd, &ids)
	cmd.Flags().StringVar(&assignee, "assignee", "", "Assignee open_id")
	_ = cmd.MarkFlagRequired("assignee")
	return cmd
}

func newBulkStatusCmd() *cobra.Command {
	var (
		ids    []string
		status string
	)

	cmd := &cobra.Command{
		Use:   "bulk-status",
		Short: "Set the status of tasks",
		Args:  cobra.NoArgs,
		RunE: runE(func(ctx context.Context, a *app, _ []string) error {
			ledger, err := a.bulkRunner().BulkStatus(ctx, ids, status)
			if err != nil {
				return err
			}
			return a.printSummary(ctx, "updated", ledger.Summary(identity))
		}),
	}

	taskIDsFlag(cmd, &ids)
	cmd.Flags().StringVar(&status, "status", "", "New status (todo, in_progress, completed)")
	_ = cmd.MarkFlagRequired("status")
	return cmd
}

func newBulkDueCmd() *cobra.Command {
	var (
		ids  []string
		date string
	)

	cmd := &cobra.Command{
		Use:   "bulk-due",
		Short: "Set the due date of tasks",
		Args:  cobra.NoArgs,
		RunE: runE(func(ctx context.Context, a *app, _ []string) error {
			ledger, err := a.bulkRunner().BulkDue(ctx, ids, date)
			if err != nil {
				return err
			}
			return a.printSummary(ctx, "updated", ledger.Summary(identity))
		}),
	}

	taskIDsFlag(cmd, &ids)
	cmd.Flags().StringVar(&date, "date", "", "Due date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func newBulkDeleteCmd() *cobra.Command {
	var ids []string

	cmd := &cobra.Command{
		Use:   "bulk-delete",
		Short: "Delete tasks",
		Args:  cobra.NoArgs,
		RunE: runE(func(ctx context.Context, a *app, _ []string) error {
			ledger := a.bulkRunner().BulkDelete(ctx, ids)
			return a.printSummary(ctx, "deleted", ledger.Summary(identity))
		}),
	}

	taskIDsFlag(cmd, &ids)
	return cmd
}

func newExportCmd() *cobra.Command {
	var tasklistID, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tasks to a CSV file",
		Long: `Export your tasks, or the tasks of a tasklist, to CSV. Without --output the
file is named tasks_export_YYYYMMDD_HHMMSS.csv.`,
		Args: cobra.NoArgs,
		RunE: runE(func(ctx context.Context, a *app, _ []string) error {
			// The runner reports the written file itself.
			path, n, err := a.bulkRunner().Export(ctx, tasklistID, output)
			if err != nil {
				return err
			}
			if a.json {
				return writeJSON(a.out, map[string]any{"path": path, "count": n})
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&tasklistID, "tasklist", "", "Tasklist ID (optional)")
	cmd.Flags().StringVar(&output, "output", "", "Output file path")
	return cmd
}
