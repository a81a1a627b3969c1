package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/teemow/larktask/internal/instrumentation"
	"github.com/teemow/larktask/internal/logging"
)

// ErrNotRunning is reported by Check before Start and after Stop.
var ErrNotRunning = errors.New("scheduler is not running")

// Job is a named unit of work run on a cron schedule.
type Job struct {
	Name     string
	Schedule string
	Run      func(ctx context.Context) error
}

// Run describes the latest execution of a job.
type Run struct {
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// Config configures a Scheduler.
type Config struct {
	Logger   *slog.Logger
	Metrics  *instrumentation.Metrics
	Location *time.Location
	// Timeout bounds a single job run. Zero means no limit.
	Timeout time.Duration
	// Verbose logs cron's own bookkeeping at info level.
	Verbose bool
}

// Scheduler runs jobs on cron schedules. Runs are independent: a failing
// run is logged and recorded, and the job stays scheduled. A job whose
// previous run is still in progress skips its next tick.
type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	metrics *instrumentation.Metrics
	timeout time.Duration

	mu      sync.Mutex
	jobs    map[string]Job
	entries map[string]cron.EntryID
	last    map[string]Run
	running bool
}

// New creates a Scheduler.
func New(cfg Config) *Scheduler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	adapter := logging.NewSlogAdapter(cfg.Logger, cfg.Verbose)
	return &Scheduler{
		cron: cron.New(
			cron.WithParser(cronParser),
			cron.WithLocation(cfg.Location),
			cron.WithLogger(adapter),
			cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
		),
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
		timeout: cfg.Timeout,
		jobs:    map[string]Job{},
		entries: map[string]cron.EntryID{},
		last:    map[string]Run{},
	}
}

// Add registers a job. Names must be unique.
func (s *Scheduler) Add(job Job) error {
	if job.Name == "" || job.Run == nil {
		return fmt.Errorf("job needs a name and a run function")
	}
	if err := ValidateSchedule(job.Schedule); err != nil {
		return fmt.Errorf("job %s: %w", job.Name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.Name]; exists {
		return fmt.Errorf("job %s already registered", job.Name)
	}

	name := job.Name
	id, err := s.cron.AddFunc(job.Schedule, func() {
		_ = s.RunJob(context.Background(), name)
	})
	if err != nil {
		return fmt.Errorf("job %s: %w", job.Name, err)
	}
	s.jobs[name] = job
	s.entries[name] = id

	s.logger.Info("job scheduled", logging.Job(name), "schedule", job.Schedule)
	return nil
}

// Jobs returns the registered job names.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	return names
}

// RunJob runs a registered job once, now. A panic in the job is returned as
// an error.
func (s *Scheduler) RunJob(ctx context.Context, name string) (err error) {
	s.mu.Lock()
	job, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown job %s", name)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	ctx, span := instrumentation.StartJobSpan(ctx, name)
	defer span.End()

	logger := s.logger.With(logging.Job(name))
	start := time.Now()
	logger.Info("job started")

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", name, r)
		}

		duration := time.Since(start)
		status := instrumentation.StatusFor(err)
		s.metrics.RecordJobRun(ctx, name, status, duration)

		run := Run{Started: start, Duration: duration}
		if err != nil {
			run.Error = err.Error()
			instrumentation.SetSpanError(span, err)
			logger.Error("job failed", logging.Err(err), slog.Duration(logging.KeyDuration, duration))
		} else {
			instrumentation.SetSpanSuccess(span)
			logger.Info("job finished", slog.Duration(logging.KeyDuration, duration))
		}

		s.mu.Lock()
		s.last[name] = run
		s.mu.Unlock()
	}()

	return job.Run(ctx)
}

// LastRuns returns the latest run of every job that has run.
func (s *Scheduler) LastRuns() map[string]Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Run, len(s.last))
	for k, v := range s.last {
		out[k] = v
	}
	return out
}

// Next returns the next scheduled time of a job, or the zero time when the
// scheduler is not running or the job is unknown.
func (s *Scheduler) Next(name string) time.Time {
	s.mu.Lock()
	id, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.cron.Start()
	s.running = true
	s.logger.Info("scheduler started", "jobs", len(s.jobs))
}

// Stop stops scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for running jobs: %w", ctx.Err())
	}
}

// Check reports ErrNotRunning unless the scheduler is started. It is meant
// as a readiness check.
func (s *Scheduler) Check() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return ErrNotRunning
	}
	return nil
}
