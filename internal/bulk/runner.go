package bulk

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/teemow/larktask/internal/instrumentation"
	"github.com/teemow/larktask/internal/logging"
	"github.com/teemow/larktask/internal/tasks"
	"github.com/teemow/larktask/internal/tools/batch"
)

// TaskService is the subset of the task API used by bulk operations.
// *tasks.Client satisfies it.
type TaskService interface {
	CreateTask(ctx context.Context, input tasks.TaskInput) (*tasks.Task, error)
	UpdateTask(ctx context.Context, taskID string, update tasks.TaskUpdate) (*tasks.Task, error)
	DeleteTask(ctx context.Context, taskID string) error
	AttachToTasklist(ctx context.Context, tasklistID, taskID string) tasks.AttachResult
	ListTasks(ctx context.Context, opts tasks.ListOptions) (*tasks.TaskPage, error)
	ListTasklistTasks(ctx context.Context, tasklistID string, pageSize int) ([]tasks.Task, error)
}

// Runner executes bulk task operations through the batch driver.
type Runner struct {
	svc     TaskService
	policy  batch.Policy
	out     io.Writer
	logger  *slog.Logger
	metrics *instrumentation.Metrics
	now     func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithPolicy sets the pacing between items.
func WithPolicy(p batch.Policy) Option {
	return func(r *Runner) { r.policy = p }
}

// WithOutput sets where per-item progress lines are written.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) { r.out = w }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithMetrics records batch_items_total for every processed item.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithClock overrides the time source used for default export names.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// NewRunner creates a Runner with the default batch policy and no progress
// output.
func NewRunner(svc TaskService, opts ...Option) *Runner {
	r := &Runner{
		svc:    svc,
		policy: batch.DefaultPolicy(),
		out:    io.Discard,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// track wraps fn so every item is counted and logged under operation.
func track[T, R any](r *Runner, operation string, label func(T) string, fn batch.Func[T, R]) batch.Func[T, R] {
	return func(ctx context.Context, item T) (R, error) {
		res, err := fn(ctx, item)
		r.metrics.RecordBatchItem(ctx, operation, instrumentation.StatusFor(err))
		if err != nil {
			r.logger.Debug("batch item failed", logging.Operation(operation), slog.String("item", label(item)), logging.Err(err))
		}
		return res, err
	}
}

func (r *Runner) progress(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format+"\n", args...)
}

// attach links a created task to tasklistID when set. Failures are logged by
// the task client and reported on the progress output only.
func (r *Runner) attach(ctx context.Context, tasklistID string, task *tasks.Task) {
	if tasklistID == "" {
		return
	}
	if res := r.svc.AttachToTasklist(ctx, tasklistID, task.TaskID); !res.OK() {
		r.progress("⚠️  Not added to tasklist: %s - %v", task.TaskID, res.Err)
	}
}

func identity(s string) string { return s }
