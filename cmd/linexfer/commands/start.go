package commands

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	handlers "github.com/marmos91/linexfer/internal/adapter/xfer"
	"github.com/marmos91/linexfer/internal/console"
	"github.com/marmos91/linexfer/internal/logger"
	"github.com/marmos91/linexfer/internal/telemetry"
	"github.com/marmos91/linexfer/pkg/adapter/xfer"
	"github.com/marmos91/linexfer/pkg/api"
	"github.com/marmos91/linexfer/pkg/bufpool"
	"github.com/marmos91/linexfer/pkg/config"
	"github.com/marmos91/linexfer/pkg/journal"
	"github.com/marmos91/linexfer/pkg/metrics"
	"github.com/marmos91/linexfer/pkg/rootfs"
	"github.com/marmos91/linexfer/pkg/shutdown"

	// Registers the Prometheus implementation of metrics.XferMetrics.
	_ "github.com/marmos91/linexfer/pkg/metrics/prometheus"
)

var noConsole bool

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the transfer server",
	Long: `Start the transfer server in the foreground.

The server stops accepting connections when "quit" is typed on the console
or on SIGINT/SIGTERM. Sessions already connected are not interrupted; with
server.drain_timeout set, start waits that long for them before exiting.

Examples:
  # Start with the default configuration
  linexfer start

  # Start with a custom config file and no console
  linexfer start --config /etc/linexfer/config.yaml --no-console

  # Start with environment variable overrides
  LINEXFER_SERVER_PORT=9191 LINEXFER_LOGGING_LEVEL=debug linexfer start`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().BoolVar(&noConsole, "no-console", false, "Do not read operator commands from stdin")
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return err
	}
	if noConsole {
		cfg.Server.Console = false
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, telemetryConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(context.Background()); err != nil {
			logger.Error("Telemetry shutdown error", logger.Err(err))
		}
	}()

	profilingShutdown, err := telemetry.InitProfiling(profilingConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("Profiling shutdown error", logger.Err(err))
		}
	}()

	source := configSource(GetConfigFile())
	logger.Info("Configuration loaded", "source", sourceLabel(source),
		"level", cfg.Logging.Level, "format", cfg.Logging.Format)
	if source != "" {
		if err := config.Watch(source, config.ApplyLogging); err != nil {
			logger.Warn("Configuration hot reload disabled", logger.Err(err))
		}
	}

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		logger.Info("Metrics enabled")
	}
	xferMetrics := metrics.NewXferMetrics()

	var store journal.Store
	if cfg.Journal.Enabled {
		store, err = journal.New(cfg.Journal.Config)
		if err != nil {
			return fmt.Errorf("failed to open transfer journal: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Warn("Failed to close transfer journal", logger.Err(err))
			}
		}()
		logger.Info("Transfer journal enabled", logger.StoreType(string(cfg.Journal.Type)))
	}

	root, err := rootfs.Open(afero.NewOsFs(), cfg.Server.Root)
	if err != nil {
		return fmt.Errorf("failed to prepare root directory: %w", err)
	}

	opts := []handlers.HandlerOption{
		handlers.WithBufferPool(bufpool.New(cfg.Server.BufferSize.Int())),
		handlers.WithMetrics(xferMetrics),
	}
	if store != nil {
		opts = append(opts, handlers.WithJournal(store))
	}
	handler := handlers.NewHandler(root, opts...)

	sig := shutdown.New()
	stopSignals := sig.NotifyOS(os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	server := xfer.New(cfg.Server, handler, sig, xferMetrics)
	if err := server.Listen(); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Server.Address(), err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "linexfer serving %s on %s\n", root.Path(), server.Addr())

	if cfg.API.Enabled {
		apiServer := api.NewServer(cfg.API, server, store)
		apiCtx, apiCancel := context.WithCancel(ctx)
		apiDone := make(chan struct{})
		go func() {
			defer close(apiDone)
			if err := apiServer.Start(apiCtx); err != nil {
				logger.Error("API server error", logger.Err(err))
			}
		}()
		defer func() {
			apiCancel()
			<-apiDone
		}()
	}

	if cfg.Server.Console {
		_, _ = fmt.Fprintln(out, `Type "quit" to stop accepting connections.`)
		c := console.New(cmd.InOrStdin(), out, sig)
		go func() {
			if err := c.Run(); err != nil {
				logger.Warn("Console stopped", logger.Err(err))
			}
		}()
	}

	if err := server.Serve(ctx); err != nil {
		return err
	}

	if d := cfg.Server.DrainTimeout; d > 0 && server.ActiveSessions() > 0 {
		logger.Info("Waiting for active sessions", logger.KeyActive, server.ActiveSessions(), "timeout", d)
		drainCtx, drainCancel := context.WithTimeout(ctx, d)
		defer drainCancel()
		if err := server.Wait(drainCtx); err != nil {
			logger.Warn("Drain timeout exceeded, exiting with sessions still open",
				logger.KeyActive, server.ActiveSessions())
		}
	}

	logger.Info("Server stopped", "reason", sig.Reason())
	return nil
}

func sourceLabel(path string) string {
	if path == "" {
		return "defaults"
	}
	return path
}
