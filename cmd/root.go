package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teemow/larktask/internal/feishu"
	"github.com/teemow/larktask/internal/tools/batch"
)

// rootCmd represents the base command for the larktask application
var rootCmd = &cobra.Command{
	Use:   "larktask",
	Short: "Manage Feishu tasks, bulk operations and task notifications",
	Long: `larktask manages Feishu (Lark) tasks and tasklists, imports and updates
tasks in bulk, and sends task reminders and digests as interactive cards.

It can run as:
  - A standalone CLI tool (default)
  - A notification scheduler (larktask schedule)
  - An MCP (Model Context Protocol) server for AI assistants (larktask serve)

Credentials are read from FEISHU_APP_ID and FEISHU_APP_SECRET, or from the
config file.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// rootFlags are the persistent flags not bound through the config layer.
var rootFlags struct {
	configFile string
	json       bool
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "larktask version %s\n" .Version}}`)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	cancel()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.configFile, "config", "", "Config file (default: <user config dir>/larktask/config.yaml)")
	pf.BoolVar(&rootFlags.json, "json", false, "Print results as JSON")
	pf.String("log-level", "info", "Log level: debug, info, warn, error")
	pf.String("log-format", "text", "Log format: text or json")
	pf.Duration("delay", batch.DefaultDelay, "Pause between items of bulk operations")
	pf.String("user-id", "", "Default notification recipient open_id (env FEISHU_USER_ID)")
	pf.String("base-url", feishu.DefaultBaseURL, "Feishu open platform base URL")
	pf.Duration("timeout", feishu.DefaultTimeout, "Timeout of a single API request")

	rootCmd.AddCommand(newTaskCmd())
	rootCmd.AddCommand(newTasklistCmd())
	rootCmd.AddCommand(newBulkCmd())
	rootCmd.AddCommand(newNotifyCmd())
	rootCmd.AddCommand(newUserCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newScheduleCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
