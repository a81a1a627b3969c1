package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/teemow/larktask/internal/report"
	"github.com/teemow/larktask/internal/tasks"
	"github.com/teemow/larktask/internal/tools/batch"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// dueDate returns the date part of an RFC 3339 due time.
func dueDate(due string) string {
	if len(due) >= len("2006-01-02") {
		return due[:len("2006-01-02")]
	}
	return due
}

func (a *app) printTasks(heading string, ts []tasks.Task) error {
	if a.json {
		return writeJSON(a.out, ts)
	}
	fmt.Fprintf(a.out, "\n%s %d tasks:\n", heading, len(ts))
	for _, t := range ts {
		due := ""
		if t.DueTime != "" {
			due = fmt.Sprintf(" (Due: %s)", dueDate(t.DueTime))
		}
		fmt.Fprintf(a.out, "  %s [%s] %s%s\n", report.StatusIcon(t.Status), t.TaskID, t.Summary, due)
	}
	return nil
}

func (a *app) printTask(t *tasks.Task) error {
	if a.json {
		return writeJSON(a.out, t)
	}
	fmt.Fprintf(a.out, "\nTask: %s\n", t.Summary)
	fmt.Fprintf(a.out, "ID: %s\n", t.TaskID)
	fmt.Fprintf(a.out, "Status: %s\n", report.StatusLabel(t.Status))
	if t.Assignee != "" {
		fmt.Fprintf(a.out, "Assignee: %s\n", t.Assignee)
	}
	if t.DueTime != "" {
		fmt.Fprintf(a.out, "Due: %s\n", t.DueTime)
	}
	if t.Description != "" {
		fmt.Fprintf(a.out, "Description: %s\n", t.Description)
	}
	if len(t.Followers) > 0 {
		fmt.Fprintf(a.out, "Followers: %v\n", t.Followers)
	}
	if t.URL != "" {
		fmt.Fprintf(a.out, "URL: %s\n", t.URL)
	}
	return nil
}

func (a *app) printTasklists(lists []tasks.TaskList) error {
	if a.json {
		return writeJSON(a.out, lists)
	}
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCREATED")
	for _, l := range lists {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", l.TasklistID, l.Name, l.CreatedTime)
	}
	return tw.Flush()
}

// done prints a confirmation line, or v as JSON.
func (a *app) done(v any, format string, args ...any) error {
	if a.json {
		return writeJSON(a.out, v)
	}
	fmt.Fprintf(a.out, "✅ "+format+"\n", args...)
	return nil
}

// printSummary reports a batch. verb names what a success did, e.g.
// "created" or "deleted". A batch cut short by ctx still prints its summary
// and returns the context error.
func (a *app) printSummary(ctx context.Context, verb string, s batch.Summary) error {
	if a.json {
		if err := writeJSON(a.out, s); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(a.out, "\nSummary: %d %s, %d failed\n", s.Successful, verb, s.Failed)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("batch interrupted after %d items: %w", s.Total, err)
	}
	return nil
}
