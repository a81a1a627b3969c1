package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/larktask/internal/logging"
	"github.com/teemow/larktask/internal/scheduler"
	"github.com/teemow/larktask/internal/server"
)

// scheduleOptions holds the flags of the schedule command.
type scheduleOptions struct {
	jobs        scheduler.NotificationSchedules
	metricsAddr string
	jobTimeout  time.Duration
	timezone    string
	runOnce     string
}

func newScheduleCmd() *cobra.Command {
	var opts scheduleOptions

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Send notifications on cron schedules",
		Long: `Run the daily digest, weekly report and due-soon reminder on cron
schedules until interrupted.

Schedules take five fields (minute hour day-of-month month day-of-week) or a
descriptor such as @daily or @every 1h. An empty schedule disables that job.
A failing run is logged and the job stays scheduled.

Health probes (/healthz, /readyz, /health) and Prometheus metrics
(/metrics) are served on --metrics-addr.`,
		Example: `  larktask schedule --daily "0 9 * * 1-5" --weekly "0 17 * * 5" --due-soon "0 * * * *"
  larktask schedule --run daily`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedule(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.jobs.Daily, "daily", "0 9 * * 1-5", "Schedule of the daily digest")
	cmd.Flags().StringVar(&opts.jobs.Weekly, "weekly", "0 17 * * 5", "Schedule of the weekly report")
	cmd.Flags().StringVar(&opts.jobs.DueSoon, "due-soon", "", "Schedule of the due-soon reminder")
	cmd.Flags().StringVar(&opts.jobs.Assignee, "assignee", "", "Recipient open_id (default: FEISHU_USER_ID)")
	cmd.Flags().StringVar(&opts.jobs.TasklistID, "tasklist", "", "Weekly report on this tasklist")
	cmd.Flags().IntVar(&opts.jobs.DueSoonDays, "days", 1, "Days ahead covered by the due-soon reminder")
	cmd.Flags().BoolVar(&opts.jobs.IncludeCompleted, "include-completed", false, "Count completed tasks in the daily digest")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Address of the metrics and health endpoints")
	cmd.Flags().DurationVar(&opts.jobTimeout, "job-timeout", 5*time.Minute, "Upper bound of a single job run (0 for none)")
	cmd.Flags().StringVar(&opts.timezone, "timezone", "", "IANA time zone of the schedules (default: local)")
	cmd.Flags().StringVar(&opts.runOnce, "run", "", "Run the named job (daily, weekly, due-soon) once and exit")
	return cmd
}

func runSchedule(cmd *cobra.Command, opts scheduleOptions) error {
	loc := time.Local
	if opts.timezone != "" {
		var err error
		if loc, err = time.LoadLocation(opts.timezone); err != nil {
			return fmt.Errorf("invalid timezone: %w", err)
		}
	}

	a, err := newApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.close()

	s := scheduler.New(scheduler.Config{
		Logger:   a.logger,
		Metrics:  a.metrics(),
		Location: loc,
		Timeout:  opts.jobTimeout,
	})
	if err := s.AddAll(scheduler.NotificationJobs(a.notifier(), opts.jobs)); err != nil {
		return err
	}

	if opts.runOnce != "" {
		return s.RunJob(cmd.Context(), opts.runOnce)
	}

	health := server.NewHealthChecker()
	health.AddCheck("scheduler", s.Check)
	stop, err := startMetricsServer(a, opts.metricsAddr, health)
	if err != nil {
		return err
	}
	defer stop()

	s.Start()
	health.SetReady(true)

	names := s.Jobs()
	sort.Strings(names)
	for _, name := range names {
		a.logger.Info("next run", logging.Job(name), slog.Time("at", s.Next(name)))
	}

	<-cmd.Context().Done()
	a.logger.Info("shutdown signal received, stopping scheduler")
	health.SetReady(false)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Stop(ctx)
}
