package report

import (
	"fmt"
	"io"
	"time"

	"github.com/teemow/larktask/internal/tasks"
)

// WeekWindow is the look-back window used by Weekly.
const WeekWindow = 7 * 24 * time.Hour

// Report groups tasks by status. Overdue tasks also appear in their status
// bucket. Tasks with an unrecognised status only count towards Total.
type Report struct {
	Total      int          `json:"total"`
	Todo       []tasks.Task `json:"todo"`
	InProgress []tasks.Task `json:"in_progress"`
	Completed  []tasks.Task `json:"completed"`
	Overdue    []tasks.Task `json:"overdue"`
}

// Partition buckets ts by status and collects the overdue ones.
func Partition(ts []tasks.Task, now time.Time) Report {
	r := Report{
		Total:      len(ts),
		Todo:       []tasks.Task{},
		InProgress: []tasks.Task{},
		Completed:  []tasks.Task{},
		Overdue:    []tasks.Task{},
	}
	for _, t := range ts {
		switch t.Status {
		case tasks.StatusTodo:
			r.Todo = append(r.Todo, t)
		case tasks.StatusInProgress:
			r.InProgress = append(r.InProgress, t)
		case tasks.StatusCompleted:
			r.Completed = append(r.Completed, t)
		}
		if t.IsOverdue(now) {
			r.Overdue = append(r.Overdue, t)
		}
	}
	return r
}

// DueWithin returns the unfinished tasks due in [now, now+window].
func DueWithin(ts []tasks.Task, now time.Time, window time.Duration) []tasks.Task {
	limit := now.Add(window)
	var out []tasks.Task
	for _, t := range ts {
		if t.IsTerminal() {
			continue
		}
		due, ok := t.Due()
		if !ok || due.Before(now) || due.After(limit) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// WeeklySummary describes activity over the last week.
type WeeklySummary struct {
	Created   []tasks.Task `json:"created"`
	Completed []tasks.Task `json:"completed"`
	Total     int          `json:"total"`
}

// Weekly collects the tasks created or completed within WeekWindow of now.
func Weekly(ts []tasks.Task, now time.Time) WeeklySummary {
	since := now.Add(-WeekWindow)
	s := WeeklySummary{Total: len(ts), Created: []tasks.Task{}, Completed: []tasks.Task{}}
	for _, t := range ts {
		if created, ok := t.Created(); ok && created.After(since) {
			s.Created = append(s.Created, t)
		}
		if !t.IsTerminal() {
			continue
		}
		if done, ok := t.Completed(); ok && done.After(since) {
			s.Completed = append(s.Completed, t)
		}
	}
	return s
}

// StatusLabel returns a human label for a task status.
func StatusLabel(status string) string {
	switch status {
	case tasks.StatusTodo:
		return "Todo"
	case tasks.StatusInProgress:
		return "In progress"
	case tasks.StatusCompleted:
		return "Completed"
	default:
		return status
	}
}

// StatusIcon returns the marker printed in front of a task line.
func StatusIcon(status string) string {
	switch status {
	case tasks.StatusTodo:
		return "📋"
	case tasks.StatusInProgress:
		return "🔄"
	case tasks.StatusCompleted:
		return "✅"
	default:
		return "•"
	}
}

const rule = "=================================================="

// WriteReport renders r as plain text.
func WriteReport(w io.Writer, r Report) error {
	ew := &errWriter{w: w}
	ew.printf("\n%s\n", rule)
	ew.printf("Task Report - Total: %d\n", r.Total)
	ew.printf("%s\n", rule)
	ew.printf("%s Todo: %d\n", StatusIcon(tasks.StatusTodo), len(r.Todo))
	ew.printf("%s In Progress: %d\n", StatusIcon(tasks.StatusInProgress), len(r.InProgress))
	ew.printf("%s Completed: %d\n", StatusIcon(tasks.StatusCompleted), len(r.Completed))
	ew.printf("⚠️  Overdue: %d\n", len(r.Overdue))

	if len(r.Overdue) > 0 {
		ew.printf("\n⚠️  Overdue Tasks:\n")
		for _, t := range r.Overdue {
			ew.printf("  - %s (Due: %s)\n", t.Summary, t.DueTime)
		}
	}
	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
