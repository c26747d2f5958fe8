package cmd

import (
	"context"
	"time"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/viralstrategist/viralstrategist/internal/ailink"
	"github.com/viralstrategist/viralstrategist/internal/appid"
	"github.com/viralstrategist/viralstrategist/internal/config"
	errwrap "github.com/viralstrategist/viralstrategist/internal/errors"
	"github.com/viralstrategist/viralstrategist/internal/metrics"
	"github.com/viralstrategist/viralstrategist/internal/observability"
	"github.com/viralstrategist/viralstrategist/internal/server"
	"github.com/viralstrategist/viralstrategist/internal/server/handlers"
	"github.com/viralstrategist/viralstrategist/internal/strategist"
)

var (
	serverPort int
	serverHost string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server with graceful shutdown support.

Endpoints:
  POST   /v1/analyze, /v1/ideas, /v1/hashtags   run an action
  GET    /v1/result                              current result
  DELETE /v1/result                              clear the result
  GET    /v1/options, /v1/prompts                catalogs
  GET    /health, /health/{live,ready,startup}, /version, /metrics

Only one action runs at a time; a second request gets 409 until it finishes.

Signal Handling:
  • Ctrl+C (SIGINT) or SIGTERM: Graceful shutdown
  • Ctrl+C twice within 2s: Force quit
  • SIGHUP: Re-validate config (provider and listener changes need a restart)`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverHost, "host", "localhost", "server host")
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "server port")
}

// serveOverrides turns explicitly set flags into config overrides so they
// win over file and environment values.
func serveOverrides(cmd *cobra.Command) map[string]any {
	listen := map[string]any{}
	if cmd.Flags().Changed("host") {
		listen["host"] = serverHost
	}
	if cmd.Flags().Changed("port") {
		listen["port"] = serverPort
	}
	if len(listen) == 0 {
		return nil
	}
	return map[string]any{"server": listen}
}

func runServe(cmd *cobra.Command, args []string) error {
	var overrides []map[string]any
	if o := serveOverrides(cmd); o != nil {
		overrides = append(overrides, o)
	}
	cfg, err := loadConfig(cmd, overrides...)
	if err != nil {
		return errwrap.WrapValidationError(cmd.Context(), err, "config load failed")
	}

	name := appid.Get().BinaryName
	observability.InitServerLogger(name, cfg.Logging.Level, cfg.Logging.Profile)
	logger := observability.ServerLogger

	if cfg.Metrics.Enabled {
		if err := observability.InitMetrics(name, cfg.Metrics.Port); err != nil {
			logger.Error("Failed to initialize metrics", zap.Error(err))
			return errwrap.WrapInternal(cmd.Context(), err, "metrics initialization failed")
		}
		metrics.SetServerStartTime(time.Now().Unix())
	}

	svc, err := ailink.NewService(cfg.AILink)
	if err != nil {
		return errwrap.WrapInternal(cmd.Context(), err, "prompt loading failed")
	}
	session := strategist.NewSession(strategist.New(svc, logger))

	health := handlers.NewHealthManager(versionInfo.Version)
	if cfg.Health.Enabled {
		health.RegisterChecker("providers", handlers.ProviderCheck(svc))
		health.RegisterChecker("telemetry", handlers.TelemetryCheck(cfg.Metrics.Enabled))
	}
	if _, err := svc.Check(); err != nil {
		logger.Warn("Some prompts cannot be dispatched yet", zap.Error(err))
	}

	srv := server.New(server.Options{
		Host:          cfg.Server.Host,
		Port:          cfg.Server.Port,
		ReadTimeout:   cfg.Server.ReadTimeout,
		WriteTimeout:  cfg.Server.WriteTimeout,
		IdleTimeout:   cfg.Server.IdleTimeout,
		MaxVideoBytes: cfg.Server.MaxUploadBytes,
		MetricsPort:   cfg.Metrics.Port,
		Session:       session,
		Prompts:       svc.Registry,
		Health:        health,
	})

	logger.Info("Initializing server",
		zap.String("service", name),
		zap.String("version", versionInfo.Version),
		zap.String("addr", srv.Addr()),
		zap.Bool("metrics_enabled", cfg.Metrics.Enabled),
		zap.Int("metrics_port", cfg.Metrics.Port))

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	// Handlers run LIFO: the HTTP server stops before the logger flushes.
	signals.OnShutdown(func(ctx context.Context) error {
		logger.Info("Flushing logger...")
		if err := logger.Sync(); err != nil {
			// stdout/stderr may already be closed
			logger.Warn("Logger sync returned error (may be benign)", zap.Error(err))
		}
		return nil
	})

	signals.OnShutdown(func(ctx context.Context) error {
		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()

		if session.Busy() {
			logger.Info("Waiting for the running action to finish")
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errwrap.WrapInternal(ctx, err, "server shutdown failed")
		}

		logger.Info("HTTP server stopped gracefully")
		return nil
	})

	signals.OnReload(func(ctx context.Context) error {
		logger.Info("Received SIGHUP: re-validating configuration")

		reloaded, err := config.Load(ctx, overrides...)
		if err != nil {
			logger.Error("Config reload failed", zap.Error(err))
			return errwrap.WrapValidationError(ctx, err, "config reload failed")
		}
		if _, err := ailink.NewService(reloaded.AILink); err != nil {
			logger.Error("Reloaded config has unusable prompts", zap.Error(err))
			return errwrap.WrapValidationError(ctx, err, "config reload failed")
		}

		logger.Info("Configuration is valid; restart to apply provider or listener changes",
			zap.String("file", reloaded.File))
		return nil
	})

	if err := signals.EnableDoubleTap(signals.DoubleTapConfig{
		Window:  2 * time.Second,
		Message: "Press Ctrl+C again within 2 seconds to force quit",
	}); err != nil {
		logger.Warn("Failed to enable double-tap force quit", zap.Error(err))
	}

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errChan <- err
		}
	}()

	go func() {
		if err := signals.Listen(cmd.Context()); err != nil {
			logger.Error("Signal handler error", zap.Error(err))
			errChan <- err
		}
	}()

	if err := <-errChan; err != nil {
		return errwrap.WrapInternal(cmd.Context(), err, "server error")
	}
	return nil
}
