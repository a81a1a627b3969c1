// Package cmd implements the command-line interface for larktask.
//
// This package provides the following commands:
//   - task: create, get, update, complete, delete and list tasks, and print a status report
//   - tasklist: manage tasklists and their tasks
//   - bulk: import tasks from CSV or JSON, update or delete many tasks, export to CSV
//   - notify: send due-soon reminders, daily digests, weekly reports and task notifications
//   - user: look up a user's open_id by email or mobile number
//   - schedule: send notifications on cron schedules, with metrics and health endpoints
//   - serve: start the MCP server to provide task tools for AI assistants
//   - version: display version information
//   - generate-docs: generate markdown documentation for all MCP tools
//
// Every command except version and generate-docs needs FEISHU_APP_ID and
// FEISHU_APP_SECRET.
package cmd
