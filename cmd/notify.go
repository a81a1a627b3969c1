package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newNotifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Send task reminders, digests and notifications",
		Long: `Send task notifications as interactive cards. Without --assignee the
recipient is FEISHU_USER_ID (or user_id in the config file).`,
	}
	cmd.AddCommand(
		newDueSoonCmd(),
		newDailyCmd(),
		newWeeklyCmd(),
		newNotifyAssignedCmd(),
		newNotifyCompletedCmd(),
	)
	return cmd
}

func newDueSoonCmd() *cobra.Command {
	var (
		assignee string
		days     int
	)

	cmd := &cobra.Command{
		Use:   "due-soon",
		Short: "Remind a user of unfinished tasks due soon",
		Args:  cobra.NoArgs,
		RunE: runE(func(ctx context.Context, a *app, _ []string) error {
			ids, err := a.notifier().RemindDueSoon(ctx, assignee, days)
			if err != nil {
				return err
			}
			if a.json {
				return writeJSON(a.out, map[string]any{"reminded": ids})
			}
			if len(ids) == 0 {
				fmt.Fprintf(a.out, "No tasks due within %d day(s)\n", max(days, 1))
				return nil
			}
			fmt.Fprintf(a.out, "✅ Reminder sent for %d tasks\n", len(ids))
			return nil
		}),
	}

	cmd.Flags().StringVar(&assignee, "assignee", "", "Assignee open_id")
	cmd.Flags().IntVar(&days, "days", 1, "Days until due")
	return cmd
}

func newDailyCmd() *cobra.Command {
	var (
		assignee         string
		includeCompleted bool
	)

	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Send the daily task digest",
		Args:  cobra.NoArgs,
		RunE: runE(func(ctx context.Context, a *app, _ []string) error {
			r, err := a.notifier().DailyDigest(ctx, assignee, includeCompleted)
			if err != nil {
				return err
			}
			return a.done(r, "Daily digest sent (%d tasks, %d overdue)", r.Total, len(r.Overdue))
		}),
	}

	cmd.Flags().StringVar(&assignee, "assignee", "", "Assignee open_id")
	cmd.Flags().BoolVar(&includeCompleted, "include-completed", false, "Count completed tasks too")
	return cmd
}

func newWeeklyCmd() *cobra.Command {
	var assignee, tasklistID string

	cmd := &cobra.Command{
		Use:   "weekly",
		Short: "Send the weekly task report",
		Args:  cobra.NoArgs,
		RunE: runE(func(ctx context.Context, a *app, _ []string) error {
			s, err := a.notifier().WeeklyReport(ctx, assignee, tasklistID)
			if err != nil {
				return err
			}
			return a.done(s, "Weekly report sent (%d created, %d completed)", len(s.Created), len(s.Completed))
		}),
	}

	cmd.Flags().StringVar(&assignee, "assignee", "", "Assignee open_id")
	cmd.Flags().StringVar(&tasklistID, "tasklist", "", "Report on this tasklist")
	return cmd
}

func newNotifyAssignedCmd() *cobra.Command {
	var taskID, assignee, assigner string

	cmd := &cobra.Command{
		Use:   "notify-assigned",
		Short: "Tell a user about a task assigned to them",
		Args:  cobra.NoArgs,
		RunE: runE(func(ctx context.Context, a *app, _ []string) error {
			if err := a.notifier().NotifyAssigned(ctx, taskID, assignee, assigner); err != nil {
				return err
			}
			return a.done(map[string]string{"task_id": taskID, "receiver": assignee}, "Notification sent")
		}),
	}

	cmd.Flags().StringVar(&taskID, "task", "", "Task ID")
	cmd.Flags().StringVar(&assignee, "assignee", "", "Assignee open_id")
	cmd.Flags().StringVar(&assigner, "assigner", "", "Assigner name")
	_ = cmd.MarkFlagRequired("task")
	_ = cmd.MarkFlagRequired("assignee")
	return cmd
}

func newNotifyCompletedCmd() *cobra.Command {
	var taskID string

	cmd := &cobra.Command{
		Use:   "notify-completed",
		Short: "Tell the followers of a task that it is completed",
		Args:  cobra.NoArgs,
		RunE: runE(func(ctx context.Context, a *app, _ []string) error {
			if err := a.notifier().NotifyCompleted(ctx, taskID); err != nil {
				return err
			}
			return a.done(map[string]string{"task_id": taskID}, "Followers notified")
		}),
	}

	cmd.Flags().StringVar(&taskID, "task", "", "Task ID")
	_ = cmd.MarkFlagRequired("task")
	return cmd
}
