// Package bulk implements multi-task operations: CSV and JSON import,
// bulk assign, status, due date and delete, and CSV export.
//
// Every operation that touches more than one task runs through the batch
// driver in internal/tools/batch, so items are processed sequentially with
// a pause between them and a failing item never stops the batch. The
// returned ledger lists each item exactly once.
//
// Progress lines ("✅ Created: ...", "❌ Failed: ...") are written to the
// writer set with WithOutput as items complete.
package bulk
