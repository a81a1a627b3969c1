package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/teemow/larktask/internal/im"
	"github.com/teemow/larktask/internal/instrumentation"
	"github.com/teemow/larktask/internal/logging"
	"github.com/teemow/larktask/internal/report"
	"github.com/teemow/larktask/internal/tasks"
)

var (
	// ErrNoRecipient is returned when neither an assignee nor a default
	// recipient is configured.
	ErrNoRecipient = errors.New("no assignee specified and no default user_id configured")

	// ErrNoFollowers is returned by NotifyCompleted for a task nobody follows.
	ErrNoFollowers = errors.New("task has no followers")
)

// Notification kinds, used as metric labels.
const (
	KindDueSoon   = "due_soon"
	KindDaily     = "daily"
	KindWeekly    = "weekly"
	KindAssigned  = "assigned"
	KindCompleted = "completed"
)

const (
	reminderLimit  = 10
	highlightLimit = 5
	reminderPage   = 50
	digestPage     = tasks.MaxPageSize
)

// TaskSource reads tasks. *tasks.Client satisfies it.
type TaskSource interface {
	GetTask(ctx context.Context, taskID string) (*tasks.Task, error)
	ListTasks(ctx context.Context, opts tasks.ListOptions) (*tasks.TaskPage, error)
	ListTasklistTasks(ctx context.Context, tasklistID string, pageSize int) ([]tasks.Task, error)
}

// Messenger delivers cards. *im.Client satisfies it.
type Messenger interface {
	SendCard(ctx context.Context, receiveID string, card *im.Card) (*im.Message, error)
}

// Notifier composes task listings into cards and sends them to users.
type Notifier struct {
	tasks            TaskSource
	messenger        Messenger
	defaultRecipient string
	metrics          *instrumentation.Metrics
	logger           *slog.Logger
	now              func() time.Time
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithDefaultRecipient sets the open_id used when a call names no assignee.
func WithDefaultRecipient(openID string) Option {
	return func(n *Notifier) { n.defaultRecipient = openID }
}

// WithMetrics records a notifications_total sample per delivered card.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(n *Notifier) { n.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(n *Notifier) { n.logger = l }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(n *Notifier) { n.now = now }
}

// New creates a Notifier.
func New(source TaskSource, messenger Messenger, opts ...Option) *Notifier {
	n := &Notifier{
		tasks:     source,
		messenger: messenger,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Notifier) recipient(assignee string) (string, error) {
	if assignee != "" {
		return assignee, nil
	}
	if n.defaultRecipient != "" {
		return n.defaultRecipient, nil
	}
	return "", ErrNoRecipient
}

func (n *Notifier) send(ctx context.Context, kind, receiveID string, card *im.Card) error {
	_, err := n.messenger.SendCard(ctx, receiveID, card)
	n.metrics.RecordNotification(ctx, kind, instrumentation.StatusFor(err))
	if err != nil {
		n.logger.Warn("notification not delivered",
			logging.Operation(kind), logging.Receiver(receiveID), logging.Err(err))
		return err
	}
	n.logger.Debug("notification delivered", logging.Operation(kind), logging.Receiver(receiveID))
	return nil
}

// RemindDueSoon sends one reminder listing the unfinished tasks of assignee
// due within the next days. It returns the ids of the tasks it reminded about;
// nothing is sent when no task is due.
func (n *Notifier) RemindDueSoon(ctx context.Context, assignee string, days int) ([]string, error) {
	target, err := n.recipient(assignee)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		days = 1
	}

	page, err := n.tasks.ListTasks(ctx, tasks.ListOptions{
		Assignee:  target,
		Statuses:  []string{tasks.StatusTodo, tasks.StatusInProgress},
		DueBefore: n.now().Add(time.Duration(days) * 24 * time.Hour),
		PageSize:  reminderPage,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks due soon: %w", err)
	}
	if len(page.Items) == 0 {
		return []string{}, nil
	}

	lines := make([]string, 0, reminderLimit+1)
	for i, t := range page.Items {
		if i == reminderLimit {
			lines = append(lines, fmt.Sprintf("... and %d more", len(page.Items)-reminderLimit))
			break
		}
		line := fmt.Sprintf("• [%s] %s", t.Status, t.Summary)
		if t.DueTime != "" {
			line += fmt.Sprintf(" (Due: %s)", dueDate(t))
		}
		lines = append(lines, line)
	}

	card := im.NewCard(fmt.Sprintf("⏰ Task reminder (due within %d %s)", days, plural(days, "day", "days")), im.TemplateOrange).
		Markdown(fmt.Sprintf("You have **%d** %s due soon:\n\n%s",
			len(page.Items), plural(len(page.Items), "task", "tasks"), strings.Join(lines, "\n")))

	if err := n.send(ctx, KindDueSoon, target, card); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(page.Items))
	for _, t := range page.Items {
		ids = append(ids, t.TaskID)
	}
	return ids, nil
}

// DailyDigest sends a status summary of the assignee's tasks, highlighting
// overdue ones, and returns the report it was built from.
func (n *Notifier) DailyDigest(ctx context.Context, assignee string, includeCompleted bool) (*report.Report, error) {
	target, err := n.recipient(assignee)
	if err != nil {
		return nil, err
	}

	statuses := []string{tasks.StatusTodo, tasks.StatusInProgress}
	if includeCompleted {
		statuses = append(statuses, tasks.StatusCompleted)
	}
	page, err := n.tasks.ListTasks(ctx, tasks.ListOptions{
		Assignee: target,
		Statuses: statuses,
		PageSize: digestPage,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks for digest: %w", err)
	}

	r := report.Partition(page.Items, n.now())
	card := DigestCard(r)
	if err := n.send(ctx, KindDaily, target, card); err != nil {
		return nil, err
	}
	return &r, nil
}

// WeeklyReport sends the past week's activity for the assignee, or for a
// tasklist when tasklistID is set. The card goes to the assignee either way.
func (n *Notifier) WeeklyReport(ctx context.Context, assignee, tasklistID string) (*report.WeeklySummary, error) {
	target, err := n.recipient(assignee)
	if err != nil {
		return nil, err
	}

	var items []tasks.Task
	if tasklistID != "" {
		items, err = n.tasks.ListTasklistTasks(ctx, tasklistID, digestPage)
	} else {
		var page *tasks.TaskPage
		page, err = n.tasks.ListTasks(ctx, tasks.ListOptions{Assignee: target, PageSize: digestPage})
		if page != nil {
			items = page.Items
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks for weekly report: %w", err)
	}

	s := report.Weekly(items, n.now())
	if err := n.send(ctx, KindWeekly, target, WeeklyCard(s)); err != nil {
		return nil, err
	}
	return &s, nil
}

// NotifyAssigned tells assignee about a task. assignerName is optional.
func (n *Notifier) NotifyAssigned(ctx context.Context, taskID, assignee, assignerName string) error {
	if assignee == "" {
		return ErrNoRecipient
	}
	task, err := n.tasks.GetTask(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to get task %s: %w", taskID, err)
	}

	title := "📋 New task assigned"
	if assignerName != "" {
		title = fmt.Sprintf("📋 New task assigned by %s", assignerName)
	}
	return n.send(ctx, KindAssigned, assignee, TaskCard(*task, title, im.TemplateBlue))
}

// NotifyCompleted tells every follower that a task is done. Delivery is
// attempted for all followers; the returned error joins every failure.
func (n *Notifier) NotifyCompleted(ctx context.Context, taskID string) error {
	task, err := n.tasks.GetTask(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to get task %s: %w", taskID, err)
	}
	if len(task.Followers) == 0 {
		return ErrNoFollowers
	}

	card := TaskCard(*task, "✅ Task completed", im.TemplateGreen)
	var errs []error
	for _, follower := range task.Followers {
		if err := n.send(ctx, KindCompleted, follower, card); err != nil {
			errs = append(errs, fmt.Errorf("follower %s: %w", follower, err))
		}
	}
	return errors.Join(errs...)
}

func dueDate(t tasks.Task) string {
	if len(t.DueTime) >= 10 {
		return t.DueTime[:10]
	}
	return t.DueTime
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
