package scheduler

import (
	"context"
	"errors"

	"github.com/teemow/larktask/internal/notifier"
	"github.com/teemow/larktask/internal/report"
)

// Job names of the notification jobs.
const (
	JobDaily   = "daily"
	JobWeekly  = "weekly"
	JobDueSoon = "due-soon"
)

// Notifier is the subset of *notifier.Notifier driven by the scheduler.
type Notifier interface {
	RemindDueSoon(ctx context.Context, assignee string, days int) ([]string, error)
	DailyDigest(ctx context.Context, assignee string, includeCompleted bool) (*report.Report, error)
	WeeklyReport(ctx context.Context, assignee, tasklistID string) (*report.WeeklySummary, error)
}

// NotificationSchedules selects which notification jobs run and for whom.
// An empty schedule disables that job.
type NotificationSchedules struct {
	Daily   string
	Weekly  string
	DueSoon string

	Assignee         string
	TasklistID       string
	DueSoonDays      int
	IncludeCompleted bool
}

// NotificationJobs builds the jobs for the non-empty schedules in cfg.
func NotificationJobs(n Notifier, cfg NotificationSchedules) []Job {
	var jobs []Job
	if cfg.Daily != "" {
		jobs = append(jobs, Job{Name: JobDaily, Schedule: cfg.Daily, Run: func(ctx context.Context) error {
			_, err := n.DailyDigest(ctx, cfg.Assignee, cfg.IncludeCompleted)
			return err
		}})
	}
	if cfg.Weekly != "" {
		jobs = append(jobs, Job{Name: JobWeekly, Schedule: cfg.Weekly, Run: func(ctx context.Context) error {
			_, err := n.WeeklyReport(ctx, cfg.Assignee, cfg.TasklistID)
			return err
		}})
	}
	if cfg.DueSoon != "" {
		jobs = append(jobs, Job{Name: JobDueSoon, Schedule: cfg.DueSoon, Run: func(ctx context.Context) error {
			_, err := n.RemindDueSoon(ctx, cfg.Assignee, cfg.DueSoonDays)
			return err
		}})
	}
	return jobs
}

// AddAll registers jobs, stopping at the first invalid one.
func (s *Scheduler) AddAll(jobs []Job) error {
	if len(jobs) == 0 {
		return errors.New("no jobs to schedule")
	}
	for _, job := range jobs {
		if err := s.Add(job); err != nil {
			return err
		}
	}
	return nil
}

var _ Notifier = (*notifier.Notifier)(nil)
