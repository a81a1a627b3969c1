package bulk

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/teemow/larktask/internal/tasks"
	"github.com/teemow/larktask/internal/tools/batch"
)

// DefaultTitle is used for rows without a title.
const DefaultTitle = "Untitled"

// Row is one task to import. Line is the 1-based data row of a CSV file or
// the 1-based position of a JSON array element.
type Row struct {
	Line        int
	Title       string
	Description string
	Assignee    string
	DueTime     string
	Status      string

	// dueDate is the raw CSV due_date, converted when the row is processed.
	dueDate string
	// raw is the undecoded JSON element, validated when the row is processed.
	raw json.RawMessage
	// parseErr is set for a CSV record the reader could not parse.
	parseErr error
}

// Label names the row in progress output and failure summaries.
func (row Row) Label() string {
	if row.Title != "" {
		return fmt.Sprintf("#%d %s", row.Line, row.Title)
	}
	return fmt.Sprintf("#%d", row.Line)
}

// ImportCSV creates one task per row of the CSV file at path. The header
// names the columns title, description, assignee, due_date and status in any
// order; unknown columns are ignored. defaultAssignee applies to rows without
// an assignee. An unreadable file fails before any task is created.
func (r *Runner) ImportCSV(ctx context.Context, path, tasklistID, defaultAssignee string) (*batch.Ledger[Row, tasks.Task], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	rows, err := ParseCSV(f)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].Assignee == "" {
			rows[i].Assignee = defaultAssignee
		}
	}

	return r.create(ctx, OpImportCSV, rows, tasklistID), nil
}

// ParseCSV reads import rows from r. A malformed record becomes a row that
// fails when processed; only an unreadable header or an I/O error fails the
// whole file.
func ParseCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []Row{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	columns := headerIndex(header)

	rows := []Row{}
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			rows = append(rows, Row{Line: line, parseErr: err})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", line, err)
		}

		get := func(name string) string {
			i, ok := columns[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		rows = append(rows, Row{
			Line:        line,
			Title:       get("title"),
			Description: get("description"),
			Assignee:    get("assignee"),
			Status:      normalizeStatus(get("status")),
			dueDate:     get("due_date"),
		})
	}
	return rows, nil
}

func headerIndex(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}
	return columns
}

// normalizeStatus maps spellings such as "Todo" or "In Progress" onto the
// API values. Anything else is left for validation to reject.
func normalizeStatus(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}

// importItemSchema describes one element of a JSON import file.
const importItemSchema = `{
  "type": "object",
  "properties": {
    "title":       {"type": "string"},
    "description": {"type": "string"},
    "assignee":    {"type": "string"},
    "due_time":    {"type": "string", "format": "date-time"},
    "status":      {"type": "string", "enum": ["todo", "in_progress", "completed"]}
  }
}`

var itemSchema = func() *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(importItemSchema))
	if err != nil {
		panic(fmt.Sprintf("invalid import schema: %v", err))
	}
	return s
}()

// ImportJSON creates one task per element of the JSON array at path. Each
// element is validated on its own, so an invalid element fails only that
// item. An unreadable file or a document that is not an array fails before
// any task is created.
func (r *Runner) ImportJSON(ctx context.Context, path, tasklistID string) (*batch.Ledger[Row, tasks.Task], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON file: %w", err)
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, fmt.Errorf("failed to parse JSON file: expected an array of tasks: %w", err)
	}

	rows := make([]Row, 0, len(elements))
	for i, raw := range elements {
		row := Row{Line: i + 1, raw: raw}
		var peek struct {
			Title string `json:"title"`
		}
		if json.Unmarshal(raw, &peek) == nil {
			row.Title = peek.Title
		}
		rows = append(rows, row)
	}

	return r.create(ctx, OpImportJSON, rows, tasklistID), nil
}

// decodeItem validates a JSON element and fills row from it.
func decodeItem(row Row) (Row, error) {
	result, err := itemSchema.Validate(gojsonschema.NewBytesLoader(row.raw))
	if err != nil {
		return row, fmt.Errorf("%w: %v", tasks.ErrInvalidInput, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return row, fmt.Errorf("%w: %s", tasks.ErrInvalidInput, strings.Join(msgs, "; "))
	}

	var item struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Assignee    string `json:"assignee"`
		DueTime     string `json:"due_time"`
		Status      string `json:"status"`
	}
	if err := json.NewDecoder(bytes.NewReader(row.raw)).Decode(&item); err != nil {
		return row, fmt.Errorf("%w: %v", tasks.ErrInvalidInput, err)
	}
	row.Title = item.Title
	row.Description = item.Description
	row.Assignee = item.Assignee
	row.DueTime = item.DueTime
	row.Status = item.Status
	return row, nil
}

// input converts a row into a create request.
func (row Row) input() (tasks.TaskInput, error) {
	if row.parseErr != nil {
		return tasks.TaskInput{}, fmt.Errorf("%w: malformed CSV row: %v", tasks.ErrInvalidInput, row.parseErr)
	}
	if row.raw != nil {
		var err error
		if row, err = decodeItem(row); err != nil {
			return tasks.TaskInput{}, err
		}
	}

	in := tasks.TaskInput{
		Summary:     row.Title,
		Description: row.Description,
		Assignee:    row.Assignee,
		DueTime:     row.DueTime,
		Status:      row.Status,
	}
	if in.Summary == "" {
		in.Summary = DefaultTitle
	}
	if in.Status != "" && !slices.Contains(tasks.Statuses, in.Status) {
		return tasks.TaskInput{}, fmt.Errorf("%w: status %q must be one of %v", tasks.ErrInvalidInput, row.Status, tasks.Statuses)
	}
	if row.dueDate != "" {
		due, err := tasks.DueTimeFromDate(row.dueDate)
		if err != nil {
			return tasks.TaskInput{}, err
		}
		in.DueTime = due
	}
	return in, nil
}

func (r *Runner) create(ctx context.Context, operation string, rows []Row, tasklistID string) *batch.Ledger[Row, tasks.Task] {
	fn := func(ctx context.Context, row Row) (tasks.Task, error) {
		in, err := row.input()
		if err != nil {
			r.progress("❌ Failed: %s - %v", row.Label(), err)
			return tasks.Task{}, err
		}
		task, err := r.svc.CreateTask(ctx, in)
		if err != nil {
			r.progress("❌ Failed: %s - %v", in.Summary, err)
			return tasks.Task{}, err
		}
		r.progress("✅ Created: %s (%s)", task.Summary, task.TaskID)
		r.attach(ctx, tasklistID, task)
		return *task, nil
	}
	return batch.Run(ctx, rows, track(r, operation, Row.Label, fn), r.policy)
}
