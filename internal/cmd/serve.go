package cmd

import (
	"context"
	"net/http"
	"time"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gatelink/gatelink/internal/bridge/requests"
	"github.com/gatelink/gatelink/internal/config"
	errwrap "github.com/gatelink/gatelink/internal/errors"
	"github.com/gatelink/gatelink/internal/metrics"
	"github.com/gatelink/gatelink/internal/observability"
	"github.com/gatelink/gatelink/internal/server"
	"github.com/gatelink/gatelink/internal/server/handlers"
)

var (
	serverPort int
	serverHost string
)

// telemetryHealthChecker ensures telemetry system and exporter are available
type telemetryHealthChecker struct{}

func (telemetryHealthChecker) CheckHealth(ctx context.Context) error {
	if observability.TelemetrySystem == nil || observability.PrometheusExporter == nil {
		return errwrap.NewInternalError("telemetry system not initialized")
	}
	return nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the introspection HTTP server",
	Long: `Start the HTTP server exposing engine state: health probes, offline
breaker status and events, pool counters, pacing intervals, and per-operation
call accounting.

Signal Handling:
  Ctrl+C (SIGINT) or SIGTERM triggers graceful shutdown. A second Ctrl+C
  within 2s forces quit. SIGHUP reloads the config file.

The server cleanly shuts down HTTP and flushes logs on shutdown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logLevel := viper.GetString("logging.level")
		observability.InitServerLogger(appName, logLevel)

		metricsPort := viper.GetInt("metrics.port")
		if metricsPort == 0 {
			metricsPort = 9090
		}

		if err := observability.InitMetrics(appName, metricsPort); err != nil {
			observability.ServerLogger.Error("Failed to initialize metrics",
				zap.Error(err))
			return errwrap.WrapInternal(cmd.Context(), err, "metrics initialization failed")
		}

		observability.ServerLogger.Info("Initializing server",
			zap.String("service", appName),
			zap.String("version", versionInfo.Version),
			zap.String("host", serverHost),
			zap.Int("port", serverPort),
			zap.Int("metrics_port", metricsPort))

		// Build the call engine and expose it to the introspection handlers.
		// Engine packages log through zap directly; the structured server
		// profile logs to stderr, so the engine logger does the same.
		engineLogger, err := newEngineLogger(logLevel)
		if err != nil {
			return errwrap.WrapInternal(cmd.Context(), err, "engine logger initialization failed")
		}
		mgr, err := newManager(engineLogger)
		if err != nil {
			return errwrap.WrapInternal(cmd.Context(), err, "engine initialization failed")
		}
		handlers.SetIntrospection(&handlers.Introspection{Manager: mgr})
		handlers.SetVersionInfo(versionInfo.Version, versionInfo.Commit, versionInfo.BuildDate)

		metrics.SetServerStartTime(time.Now().Unix())
		go sampleEngineGauges(cmd.Context(), mgr)

		// Initialize health manager
		handlers.InitHealthManager(versionInfo.Version)
		hm := handlers.GetHealthManager()
		hm.RegisterChecker("telemetry", telemetryHealthChecker{})
		hm.RegisterChecker("binding", handlers.HealthCheckerFunc(func(ctx context.Context) error {
			if !mgr.Engine().Binding().Loaded() {
				if err := mgr.Engine().Binding().Load(); err != nil {
					return errwrap.WrapGatewayUnavailable(ctx, err, "gateway binding unavailable")
				}
			}
			return nil
		}))

		srv := server.New(serverHost, serverPort)

		shutdownTimeout := viper.GetDuration("server.shutdown_timeout")
		if shutdownTimeout == 0 {
			shutdownTimeout = 10 * time.Second
		}

		// Graceful shutdown handlers run LIFO: server stops first, logs
		// flush last.
		signals.OnShutdown(func(ctx context.Context) error {
			observability.ServerLogger.Info("Flushing logger...")
			if err := observability.ServerLogger.Sync(); err != nil {
				// Sync errors are often benign (stdout/stderr already closed)
				observability.ServerLogger.Warn("Logger sync returned error (may be benign)",
					zap.Error(err))
			}
			return nil
		})

		signals.OnShutdown(func(ctx context.Context) error {
			observability.ServerLogger.Info("Shutting down HTTP server...")
			shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				return errwrap.WrapInternal(ctx, err, "server shutdown failed")
			}

			observability.ServerLogger.Info("HTTP server stopped gracefully")
			return nil
		})

		signals.OnReload(func(ctx context.Context) error {
			observability.ServerLogger.Info("Received SIGHUP: attempting config reload")

			if err := viper.ReadInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); ok {
					observability.ServerLogger.Info("No config file found - using defaults and environment variables")
					return nil
				}
				observability.ServerLogger.Error("Failed to reload config file",
					zap.String("file", viper.ConfigFileUsed()),
					zap.Error(err))
				return errwrap.WrapInternal(ctx, err, "config reload failed")
			}

			if _, err := config.Load(viper.GetViper()); err != nil {
				observability.ServerLogger.Error("Reloaded config invalid, keeping previous",
					zap.Error(err))
				return nil
			}

			observability.ServerLogger.Info("Configuration reloaded successfully",
				zap.String("file", viper.ConfigFileUsed()))
			return nil
		})

		// Enable double-tap force quit (Ctrl+C within 2 seconds)
		if err := signals.EnableDoubleTap(signals.DoubleTapConfig{
			Window:  2 * time.Second,
			Message: "Press Ctrl+C again within 2 seconds to force quit",
		}); err != nil {
			observability.ServerLogger.Warn("Failed to enable double-tap force quit",
				zap.Error(err))
		}

		errChan := make(chan error, 1)
		go func() {
			observability.ServerLogger.Info("Starting HTTP server...",
				zap.String("host", serverHost),
				zap.Int("port", serverPort))
			if err := srv.Start(); err != nil && err != http.ErrServerClosed {
				errChan <- err
			}
		}()

		go func() {
			if err := signals.Listen(cmd.Context()); err != nil {
				observability.ServerLogger.Error("Signal handler error", zap.Error(err))
				errChan <- err
			}
		}()

		if err := <-errChan; err != nil {
			return errwrap.WrapInternal(cmd.Context(), err, "server error")
		}

		return nil
	},
}

// sampleEngineGauges exports engine state gauges on a fixed cadence while
// the server runs.
func sampleEngineGauges(ctx context.Context, mgr *requests.Manager) {
	start := time.Now()
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := mgr.Engine().Offline().Snapshot()
			metrics.SetOfflineState(snap.Offline)
			metrics.SetOfflineCounters(snap.Enters, snap.Exits)

			pool := mgr.Engine().Pool().Stats()
			metrics.SetPoolGauges(pool.Idle, pool.Dropped)

			metrics.SetSuspendedOperations(len(mgr.Suspended()))
			metrics.SetServerUptime(int64(time.Since(start).Seconds()))
		}
	}
}

// newEngineLogger builds a JSON stderr zap logger for the call engine at the
// configured level.
func newEngineLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverHost, "host", "localhost", "server host")
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "server port")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}
