package cmd

import (
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/larktask/internal/feishu"
	"github.com/teemow/larktask/internal/tasks"
	"github.com/teemow/larktask/internal/tools/tasks_tools"
)

func newGenerateDocsCmd() *cobra.Command {
	var (
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Generate markdown documentation for all available MCP tools.
This command introspects the registered tools and outputs their documentation
in markdown format, ensuring the documentation is always accurate and in sync
with the actual tool implementations.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateDocs(outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runGenerateDocs(outputFile string) error {
	markdown, err := toolsMarkdown()
	if err != nil {
		return err
	}

	// Write to output
	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(markdown), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Documentation written to: %s\n", outputFile)
	} else {
		fmt.Print(markdown)
	}

	return nil
}

// toolsMarkdown registers every tool on a throwaway server and renders the
// reference from the registered definitions.
func toolsMarkdown() (string, error) {
	// Registration never calls the API, so placeholder credentials suffice.
	api, err := feishu.NewClient(feishu.Config{AppID: "docs", AppSecret: "docs"})
	if err != nil {
		return "", fmt.Errorf("failed to create API client: %w", err)
	}

	mcpSrv := mcpserver.NewMCPServer("larktask", version,
		mcpserver.WithToolCapabilities(true),
	)

	// Register write tools too so the reference is complete.
	if err := registerAllTools(mcpSrv, tasks_tools.Config{Tasks: tasks.NewClient(api, nil)}); err != nil {
		return "", err
	}

	// Get the list of tools
	serverTools := mcpSrv.ListTools()

	// Extract mcp.Tool from each ServerTool
	tools := make([]mcp.Tool, 0, len(serverTools))
	for _, serverTool := range serverTools {
		tools = append(tools, serverTool.Tool)
	}

	return generateToolsMarkdown(tools), nil
}

func generateToolsMarkdown(tools []mcp.Tool) string {
	var sb strings.Builder

	sb.WriteString("# MCP Tools Reference\n\n")
	sb.WriteString("This document provides a complete reference of all tools available when running larktask as an MCP server.\n\n")
	sb.WriteString("**Note:** This documentation is automatically generated from the tool definitions.\n\n")

	toolsByCategory := groupToolsByCategory(tools)
	categories := make([]string, 0, len(toolsByCategory))
	for category := range toolsByCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	sb.WriteString("## Table of Contents\n\n")
	for _, category := range categories {
		anchor := strings.ToLower(strings.ReplaceAll(category, " ", "-"))
		fmt.Fprintf(&sb, "- [%s](#%s)\n", category, anchor)
	}
	sb.WriteString("\n")

	sb.WriteString("## Modes\n\n")
	sb.WriteString("- **Read-only (default):** only the listing, lookup and report tools are registered\n")
	sb.WriteString("- **`--yolo`:** the tools that create, update, complete and delete tasks are registered too\n")
	sb.WriteString("- **Multiple IDs:** tools taking `taskIds` accept a single ID, an array, or a JSON array string; each ID succeeds or fails on its own\n\n")

	for _, category := range categories {
		categoryTools := toolsByCategory[category]
		sort.Slice(categoryTools, func(i, j int) bool {
			return categoryTools[i].Name < categoryTools[j].Name
		})

		fmt.Fprintf(&sb, "## %s\n\n", category)
		for _, tool := range categoryTools {
			sb.WriteString(generateToolMarkdown(tool))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func groupToolsByCategory(tools []mcp.Tool) map[string][]mcp.Tool {
	categories := make(map[string][]mcp.Tool)
	for _, tool := range tools {
		category := getCategoryFromToolName(tool.Name)
		categories[category] = append(categories[category], tool)
	}
	return categories
}

func getCategoryFromToolName(name string) string {
	prefix, _, _ := strings.Cut(name, "_")
	switch prefix {
	case "tasks":
		return "Task Tools"
	case "tasklists":
		return "Tasklist Tools"
	default:
		return "Other"
	}
}

// generateToolMarkdown renders one tool with its arguments as a table.
func generateToolMarkdown(tool mcp.Tool) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "### %s\n\n", tool.Name)
	if tool.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", tool.Description)
	}

	props := tool.InputSchema.Properties
	if len(props) == 0 {
		sb.WriteString("No arguments.\n")
		return sb.String()
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	// Required arguments first, then alphabetical.
	sort.Slice(names, func(i, j int) bool {
		ri := slices.Contains(tool.InputSchema.Required, names[i])
		rj := slices.Contains(tool.InputSchema.Required, names[j])
		if ri != rj {
			return ri
		}
		return names[i] < names[j]
	})

	sb.WriteString("| Argument | Type | Required | Description |\n")
	sb.WriteString("|---|---|---|---|\n")
	for _, name := range names {
		propMap, _ := props[name].(map[string]interface{})
		propType, _ := propMap["type"].(string)
		if propType == "" {
			propType = "any"
		}
		desc, _ := propMap["description"].(string)

		required := "no"
		if slices.Contains(tool.InputSchema.Required, name) {
			required = "yes"
		}
		fmt.Fprintf(&sb, "| `%s` | %s | %s | %s |\n", name, propType, required, strings.ReplaceAll(desc, "|", "\\|"))
	}

	return sb.String()
}
