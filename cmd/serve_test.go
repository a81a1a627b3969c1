package cmd

import (
	"sort"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/larktask/internal/feishu"
	"github.com/teemow/larktask/internal/tasks"
	"github.com/teemow/larktask/internal/tools/tasks_tools"
)

func newDocsTasks(t *testing.T) *tasks.Client {
	t.Helper()
	api, err := feishu.NewClient(feishu.Config{AppID: "test", AppSecret: "test"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return tasks.NewClient(api, nil)
}

func TestRegisterAllTools(t *testing.T) {
	tests := []struct {
		name     string
		readOnly bool
		expected []string
	}{
		{
			name:     "read-only",
			readOnly: true,
			expected: []string{"tasklists_list", "tasks_get", "tasks_list", "tasks_report"},
		},
		{
			name:     "yolo",
			readOnly: false,
			expected: []string{
				"tasklists_list", "tasks_complete", "tasks_create", "tasks_delete",
				"tasks_get", "tasks_list", "tasks_report", "tasks_update",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mcpSrv := mcpserver.NewMCPServer("larktask", "test", mcpserver.WithToolCapabilities(true))
			if err := registerAllTools(mcpSrv, tasks_tools.Config{Tasks: newDocsTasks(t), ReadOnly: tt.readOnly}); err != nil {
				t.Fatalf("registerAllTools: %v", err)
			}

			var names []string
			for name := range mcpSrv.ListTools() {
				names = append(names, name)
			}
			sort.Strings(names)

			if strings.Join(names, ",") != strings.Join(tt.expected, ",") {
				t.Errorf("registered tools = %v, want %v", names, tt.expected)
			}
		})
	}
}

func TestGetCategoryFromToolName(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{name: "tasks_list", expected: "Task Tools"},
		{name: "tasks_create", expected: "Task Tools"},
		{name: "tasklists_list", expected: "Tasklist Tools"},
		{name: "weird", expected: "Other"},
		{name: "", expected: "Other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getCategoryFromToolName(tt.name); got != tt.expected {
				t.Errorf("getCategoryFromToolName(%q) = %q, want %q", tt.name, got, tt.expected)
			}
		})
	}
}

func TestToolsMarkdown(t *testing.T) {
	markdown, err := toolsMarkdown()
	if err != nil {
		t.Fatalf("toolsMarkdown: %v", err)
	}

	for _, want := range []string{
		"# MCP Tools Reference",
		"- [Task Tools](#task-tools)",
		"## Tasklist Tools",
		"### tasks_create",
		"### tasks_delete",
		"| `taskIds` | string | yes | Task ID (string) or array of task IDs to delete |",
		"| `due` | string | no |",
	} {
		if !strings.Contains(markdown, want) {
			t.Errorf("markdown is missing %q", want)
		}
	}
}

func TestGenerateToolMarkdown_RequiredFirst(t *testing.T) {
	tool := mcp.NewTool("tasks_update",
		mcp.WithDescription("Update a task"),
		mcp.WithString("title", mcp.Description("New | title")),
		mcp.WithString("taskId", mcp.Required(), mcp.Description("Task to update")),
	)

	got := generateToolMarkdown(tool)
	want := "### tasks_update\n\n" +
		"Update a task\n\n" +
		"| Argument | Type | Required | Description |\n" +
		"|---|---|---|---|\n" +
		"| `taskId` | string | yes | Task to update |\n" +
		"| `title` | string | no | New \\| title |\n"
	if got != want {
		t.Errorf("generateToolMarkdown:\n%s\nwant:\n%s", got, want)
	}
}
