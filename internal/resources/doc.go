// Package resources provides MCP resources for the task server.
//
// Two read-only JSON resources are registered:
//   - larktask://tasklists: the tasklists visible to the app
//   - larktask://report: status counts and overdue tasks of the caller's tasks
package resources
