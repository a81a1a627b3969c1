package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/larktask/internal/bulk"
	"github.com/teemow/larktask/internal/config"
	"github.com/teemow/larktask/internal/contact"
	"github.com/teemow/larktask/internal/feishu"
	"github.com/teemow/larktask/internal/im"
	"github.com/teemow/larktask/internal/instrumentation"
	"github.com/teemow/larktask/internal/logging"
	"github.com/teemow/larktask/internal/notifier"
	"github.com/teemow/larktask/internal/tasks"
)

const shutdownTimeout = 10 * time.Second

// app holds the clients shared by the commands of one invocation.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	provider *instrumentation.Provider

	tasks   *tasks.Client
	contact *contact.Client
	im      *im.Client

	out    io.Writer
	errOut io.Writer
	json   bool
}

// newApp loads the configuration and builds the API clients. Long-running
// commands pass daemon to enable instrumentation by default.
func newApp(cmd *cobra.Command, daemon bool) (*app, error) {
	cfg, err := config.Load(rootFlags.configFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := logging.Setup(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	if err := cfg.RequireCredentials(); err != nil {
		return nil, err
	}

	instrConfig := instrumentation.DefaultConfig()
	if daemon {
		instrConfig = instrumentation.DaemonConfig()
	}
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(cmd.Context(), instrConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create instrumentation provider: %w", err)
	}

	api, err := feishu.NewClient(cfg.Feishu(),
		feishu.WithMetrics(provider.Metrics()),
		feishu.WithLogger(logger),
	)
	if err != nil {
		_ = provider.Shutdown(cmd.Context())
		return nil, err
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		provider: provider,
		tasks:    tasks.NewClient(api, logger),
		contact:  contact.NewClient(api, logger),
		im:       im.NewClient(api, logger),
		out:      cmd.OutOrStdout(),
		errOut:   cmd.ErrOrStderr(),
		json:     rootFlags.json,
	}, nil
}

// close flushes telemetry. It uses a fresh context so an interrupted
// command still exports what it recorded.
func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.provider.Shutdown(ctx); err != nil {
		a.logger.Warn("instrumentation shutdown failed", logging.Err(err))
	}
}

func (a *app) metrics() *instrumentation.Metrics {
	return a.provider.Metrics()
}

func (a *app) notifier() *notifier.Notifier {
	return notifier.New(a.tasks, a.im,
		notifier.WithDefaultRecipient(a.cfg.UserID),
		notifier.WithMetrics(a.metrics()),
		notifier.WithLogger(a.logger),
	)
}

// bulkRunner prints per-item progress to stdout, or to stderr when stdout
// carries JSON.
func (a *app) bulkRunner() *bulk.Runner {
	progress := a.out
	if a.json {
		progress = a.errOut
	}
	return bulk.NewRunner(a.tasks,
		bulk.WithPolicy(a.cfg.BatchPolicy()),
		bulk.WithOutput(progress),
		bulk.WithLogger(a.logger),
		bulk.WithMetrics(a.metrics()),
	)
}

// runE adapts a command body that needs the API clients to cobra's RunE.
func runE(fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.close()
		return fn(cmd.Context(), a, args)
	}
}
