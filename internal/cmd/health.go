package cmd

import (
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gatelink/gatelink/internal/config"
	errwrap "github.com/gatelink/gatelink/internal/errors"
	"github.com/gatelink/gatelink/internal/observability"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Run self-health check",
	Long:  "Run a self-health check to verify the application can start successfully.",
	Run: func(cmd *cobra.Command, args []string) {
		observability.CLILogger.Info("Running health check...")

		// Check 1: Version info available
		if versionInfo.Version == "" {
			observability.CLILogger.Error("❌ FAIL: Version information missing")
			ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Version information missing", errwrap.NewInternalError("version information missing"))
			return
		}
		observability.CLILogger.Debug("Version check passed", zap.String("version", versionInfo.Version))
		observability.CLILogger.Info("✅ Version information available")

		// Check 2: Logger initialized
		if observability.CLILogger == nil {
			// Can't log if logger is nil, so use stderr
			ExitWithCodeStderr(foundry.ExitConfigInvalid, "Logger not initialized", errwrap.NewInternalError("logger not initialized"))
			return
		}
		observability.CLILogger.Info("✅ Logger initialized")

		// Check 3: Configuration loaded
		if config.Get() == nil {
			observability.CLILogger.Error("❌ FAIL: Configuration not loaded")
			ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Configuration not loaded", errwrap.NewInternalError("configuration not loaded"))
			return
		}
		observability.CLILogger.Info("✅ Configuration system ready")

		// Check 4: Engine wiring (binding, limiter, pool)
		mgr, err := newManager(zap.NewNop())
		if err != nil {
			observability.CLILogger.Error("❌ FAIL: Engine initialization", zap.Error(err))
			ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Engine initialization failed", err)
			return
		}
		observability.CLILogger.Info("✅ Call engine wired",
			zap.String("generation", string(mgr.Engine().Binding().Generation())))

		// Overall status
		observability.CLILogger.Info("")
		observability.CLILogger.Info("✅ All health checks passed")
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
