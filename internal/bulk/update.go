package bulk

import (
	"context"
	"fmt"
	"slices"

	"github.com/teemow/larktask/internal/tasks"
	"github.com/teemow/larktask/internal/tools/batch"
)

// Batch operation names, used as metric and log labels.
const (
	OpImportCSV  = "import_csv"
	OpImportJSON = "import_json"
	OpAssign     = "assign"
	OpStatus     = "status"
	OpDue        = "due"
	OpDelete     = "delete"
)

// BulkAssign sets the assignee of every task.
func (r *Runner) BulkAssign(ctx context.Context, taskIDs []string, assignee string) (*batch.Ledger[string, string], error) {
	if assignee == "" {
		return nil, fmt.Errorf("%w: assignee is required", tasks.ErrInvalidInput)
	}
	return r.update(ctx, OpAssign, taskIDs, tasks.TaskUpdate{Assignee: assignee}, "Assigned: %s"), nil
}

// BulkStatus sets the status of every task.
func (r *Runner) BulkStatus(ctx context.Context, taskIDs []string, status string) (*batch.Ledger[string, string], error) {
	if !slices.Contains(tasks.Statuses, status) {
		return nil, fmt.Errorf("%w: status %q must be one of %v", tasks.ErrInvalidInput, status, tasks.Statuses)
	}
	return r.update(ctx, OpStatus, taskIDs, tasks.TaskUpdate{Status: status}, "Updated: %s -> "+status), nil
}

// BulkDue sets the due time of every task to the end of date (YYYY-MM-DD).
// An invalid date rejects the whole batch before any call.
func (r *Runner) BulkDue(ctx context.Context, taskIDs []string, date string) (*batch.Ledger[string, string], error) {
	due, err := tasks.DueTimeFromDate(date)
	if err != nil {
		return nil, err
	}
	return r.update(ctx, OpDue, taskIDs, tasks.TaskUpdate{DueTime: due}, "Updated due date: %s"), nil
}

// BulkDelete deletes every task.
func (r *Runner) BulkDelete(ctx context.Context, taskIDs []string) *batch.Ledger[string, string] {
	fn := func(ctx context.Context, id string) (string, error) {
		if err := r.svc.DeleteTask(ctx, id); err != nil {
			r.progress("❌ Failed: %s - %v", id, err)
			return "", err
		}
		r.progress("✅ Deleted: %s", id)
		return id, nil
	}
	return batch.Run(ctx, taskIDs, track(r, OpDelete, identity, fn), r.policy)
}

func (r *Runner) update(ctx context.Context, operation string, taskIDs []string, update tasks.TaskUpdate, okFormat string) *batch.Ledger[string, string] {
	fn := func(ctx context.Context, id string) (string, error) {
		if _, err := r.svc.UpdateTask(ctx, id, update); err != nil {
			r.progress("❌ Failed: %s - %v", id, err)
			return "", err
		}
		r.progress("✅ "+okFormat, id)
		return id, nil
	}
	return batch.Run(ctx, taskIDs, track(r, operation, identity, fn), r.policy)
}
