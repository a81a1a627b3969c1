// Package scheduler runs notification jobs on cron schedules with
// robfig/cron.
//
// Each run gets its own span, a scheduler_job_runs_total sample and a log
// line. Failures do not unschedule a job and overlapping runs of the same job
// are skipped.
//
//	s := scheduler.New(scheduler.Config{Logger: logger, Metrics: metrics})
//	jobs := scheduler.NotificationJobs(n, scheduler.NotificationSchedules{
//	    Daily:  "0 9 * * 1-5",
//	    Weekly: "0 17 * * 5",
//	})
//	if err := s.AddAll(jobs); err != nil { ... }
//	s.Start()
//	defer s.Stop(ctx)
package scheduler
