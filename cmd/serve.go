package cmd

import (
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/larktask/internal/resources"
	"github.com/teemow/larktask/internal/server"
	"github.com/teemow/larktask/internal/tools/tasks_tools"
)

func newServeCmd() *cobra.Command {
	var (
		yolo        bool
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server on standard input/output to
provide Feishu task tools for AI assistants.

The server starts in read-only mode: only the listing, lookup and report
tools are offered. Pass --yolo to also offer the tools that create, update,
complete and delete tasks.

Logs are written to stderr. With --metrics-addr, health probes and
Prometheus metrics are served on that address.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, yolo, metricsAddr)
		},
	}

	cmd.Flags().BoolVar(&yolo, "yolo", false, "Enable write operations (create, update, complete, delete)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve metrics and health probes on this address (disabled when empty)")
	return cmd
}

func runServe(cmd *cobra.Command, yolo bool, metricsAddr string) error {
	a, err := newApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.close()

	if metricsAddr != "" {
		health := server.NewHealthChecker()
		stop, err := startMetricsServer(a, metricsAddr, health)
		if err != nil {
			return err
		}
		defer stop()
		health.SetReady(true)
	}

	mcpSrv := mcpserver.NewMCPServer("larktask", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false), // Subscribe and listChanged
	)

	// readOnly is the inverse of yolo
	readOnly := !yolo
	if readOnly {
		a.logger.Info("starting MCP server in read-only mode (use --yolo to enable write operations)")
	} else {
		a.logger.Info("starting MCP server with write operations enabled")
	}

	if err := registerAllTools(mcpSrv, toolsConfig(a, readOnly)); err != nil {
		return err
	}
	return runStdioServer(mcpSrv)
}

func toolsConfig(a *app, readOnly bool) tasks_tools.Config {
	return tasks_tools.Config{
		Tasks:    a.tasks,
		Metrics:  a.metrics(),
		Logger:   a.logger,
		Policy:   a.cfg.BatchPolicy(),
		ReadOnly: readOnly,
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// registerAllTools registers all MCP tools and resources
func registerAllTools(mcpSrv *mcpserver.MCPServer, cfg tasks_tools.Config) error {
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "Tasks",
			register: func() error {
				return tasks_tools.RegisterTasksTools(mcpSrv, cfg)
			},
		},
		{
			name: "Task Resources",
			register: func() error {
				return resources.RegisterTaskResources(mcpSrv, cfg.Tasks, cfg.Now)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}
	return nil
}
