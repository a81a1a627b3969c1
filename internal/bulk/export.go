package bulk

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/teemow/larktask/internal/tasks"
)

// ExportHeader is the first row of every export file.
var ExportHeader = []string{"task_id", "summary", "description", "status", "assignee", "due_time", "created_time", "url"}

// DefaultExportPath returns the file name used when no output is given.
func (r *Runner) DefaultExportPath() string {
	return "tasks_export_" + r.now().Format("20060102_150405") + ".csv"
}

// Export writes one page of tasks to a CSV file: the tasks of tasklistID when
// set, otherwise the tasks assigned to the caller. output defaults to
// DefaultExportPath. It returns the written path and the number of tasks.
func (r *Runner) Export(ctx context.Context, tasklistID, output string) (string, int, error) {
	var (
		items []tasks.Task
		err   error
	)
	if tasklistID != "" {
		items, err = r.svc.ListTasklistTasks(ctx, tasklistID, tasks.MaxPageSize)
	} else {
		var page *tasks.TaskPage
		page, err = r.svc.ListTasks(ctx, tasks.ListOptions{AssignedToMe: true, PageSize: tasks.MaxPageSize})
		if page != nil {
			items = page.Items
		}
	}
	if err != nil {
		return "", 0, fmt.Errorf("failed to list tasks for export: %w", err)
	}

	if output == "" {
		output = r.DefaultExportPath()
	}
	f, err := os.Create(output)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create export file: %w", err)
	}
	if err := WriteCSV(f, items); err != nil {
		_ = f.Close()
		return "", 0, err
	}
	if err := f.Close(); err != nil {
		return "", 0, fmt.Errorf("failed to close export file: %w", err)
	}

	r.progress("✅ Exported %d tasks to %s", len(items), output)
	return output, len(items), nil
}

// WriteCSV writes ts in export format.
func WriteCSV(w io.Writer, ts []tasks.Task) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, t := range ts {
		record := []string{t.TaskID, t.Summary, t.Description, t.Status, t.Assignee, t.DueTime, t.CreatedTime, t.URL}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write task %s: %w", t.TaskID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

// ReadExport parses a file written by Export.
func ReadExport(path string) ([]tasks.Task, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open export file: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses tasks in export format. Columns are matched by header name.
func ReadCSV(r io.Reader) ([]tasks.Task, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []tasks.Task{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	columns := headerIndex(header)
	if _, ok := columns["task_id"]; !ok {
		return nil, fmt.Errorf("not an export file: missing task_id column in header %q", strings.Join(header, ","))
	}

	out := []tasks.Task{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		get := func(name string) string {
			i, ok := columns[name]
			if !ok || i >= len(record) {
				return ""
			}
			return record[i]
		}
		out = append(out, tasks.Task{
			TaskID:      get("task_id"),
			Summary:     get("summary"),
			Description: get("description"),
			Status:      get("status"),
			Assignee:    get("assignee"),
			DueTime:     get("due_time"),
			CreatedTime: get("created_time"),
			URL:         get("url"),
		})
	}
}
