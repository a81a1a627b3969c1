// Package tasks_tools provides MCP tools for managing Feishu tasks.
//
// # Available Tools
//
// Always registered:
//   - tasks_list: List tasks with filters, or the tasks of a tasklist
//   - tasks_get: Get one or more tasks
//   - tasks_report: Status counts and overdue tasks
//   - tasklists_list: List tasklists
//
// Registered only when the server is not read-only:
//   - tasks_create: Create one or more tasks
//   - tasks_update: Update a task
//   - tasks_complete: Complete one or more tasks
//   - tasks_delete: Delete one or more tasks
//
// Tools taking several IDs accept a single string, an array, or a JSON array
// encoded as a string. They run through the batch driver and return a
// summary with per-item failures next to the successful results.
package tasks_tools
