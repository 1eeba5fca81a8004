package cmd

import (
	"fmt"
	"runtime"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/gatelink/gatelink/internal/config"
	"github.com/gatelink/gatelink/internal/observability"
)

var envInfoCmd = &cobra.Command{
	Use:   "envinfo",
	Short: "Display environment information",
	Long:  "Display comprehensive environment, configuration, and version information.",
	Run: func(cmd *cobra.Command, args []string) {
		version := crucible.GetVersion()

		observability.CLILogger.Info("=== Gatelink Environment Information ===")
		observability.CLILogger.Info("")

		// Application Info
		observability.CLILogger.Info("Application:")
		observability.CLILogger.Info("  Name:       " + appName)
		observability.CLILogger.Info("  Version:    " + versionInfo.Version)
		observability.CLILogger.Info("  Commit:     " + versionInfo.Commit)
		observability.CLILogger.Info("  Built:      " + versionInfo.BuildDate)
		observability.CLILogger.Info("")

		// SSOT Info
		observability.CLILogger.Info("SSOT:")
		observability.CLILogger.Info("  Gofulmen:   "+version.Gofulmen, zap.String("gofulmen_version", version.Gofulmen))
		observability.CLILogger.Info("  Crucible:   "+version.Crucible, zap.String("crucible_version", version.Crucible))
		observability.CLILogger.Info("")

		// Runtime Info
		observability.CLILogger.Info("Runtime:")
		observability.CLILogger.Info("  Go Version: "+runtime.Version(), zap.String("go_version", runtime.Version()))
		observability.CLILogger.Info("  GOOS:       "+runtime.GOOS, zap.String("goos", runtime.GOOS))
		observability.CLILogger.Info("  GOARCH:     "+runtime.GOARCH, zap.String("goarch", runtime.GOARCH))
		observability.CLILogger.Info(fmt.Sprintf("  NumCPU:     %d", runtime.NumCPU()), zap.Int("num_cpu", runtime.NumCPU()))
		observability.CLILogger.Info("")

		cfg := config.Get()
		if cfg == nil {
			observability.CLILogger.Warn("Configuration not loaded")
			return
		}

		// Configuration
		observability.CLILogger.Info("Configuration:")
		observability.CLILogger.Info("  Server Host:    "+cfg.Server.Host, zap.String("host", cfg.Server.Host))
		observability.CLILogger.Info(fmt.Sprintf("  Server Port:    %d", cfg.Server.Port), zap.Int("port", cfg.Server.Port))
		observability.CLILogger.Info("  Log Level:      "+cfg.Logging.Level, zap.String("log_level", cfg.Logging.Level))
		observability.CLILogger.Info("  Log Profile:    "+cfg.Logging.Profile, zap.String("log_profile", cfg.Logging.Profile))
		observability.CLILogger.Info(fmt.Sprintf("  Metrics Port:   %d", cfg.Metrics.Port), zap.Int("metrics_port", cfg.Metrics.Port))
		if file := viper.ConfigFileUsed(); file != "" {
			observability.CLILogger.Info("  Config File:    "+file, zap.String("config_file", file))
		} else {
			observability.CLILogger.Info("  Config File:    (defaults + environment)")
		}
		observability.CLILogger.Info("")

		// Gateway Configuration
		observability.CLILogger.Info("Gateway:")
		observability.CLILogger.Info("  Generation:     "+cfg.Gateway.Generation, zap.String("generation", cfg.Gateway.Generation))
		if strings.TrimSpace(cfg.Gateway.URL) != "" {
			observability.CLILogger.Info("  URL:            "+cfg.Gateway.URL, zap.String("gateway_url", cfg.Gateway.URL))
			observability.CLILogger.Info("  Call Timeout:   " + cfg.Gateway.CallTimeout.String())
		} else {
			observability.CLILogger.Info("  URL:            (host-registered functions)")
		}
		observability.CLILogger.Info("  Completion Wait: " + cfg.Gateway.CompletionWait.String())
		observability.CLILogger.Info("")

		// Engine Configuration
		observability.CLILogger.Info("Engine:")
		observability.CLILogger.Info(fmt.Sprintf("  Failure Threshold: %d", cfg.Engine.FailureThreshold), zap.Int("failure_threshold", cfg.Engine.FailureThreshold))
		observability.CLILogger.Info("  Offline Cooldown:  " + cfg.Engine.OfflineCooldown.String())
		observability.CLILogger.Info(fmt.Sprintf("  Pool Cap:          %d", cfg.Engine.PoolCap), zap.Int("pool_cap", cfg.Engine.PoolCap))
		observability.CLILogger.Info(fmt.Sprintf("  Pool Warm:         %d", cfg.Engine.PoolWarm), zap.Int("pool_warm", cfg.Engine.PoolWarm))
		if len(cfg.Engine.Intervals) > 0 {
			ops := make([]string, 0, len(cfg.Engine.Intervals))
			for op := range cfg.Engine.Intervals {
				ops = append(ops, op)
			}
			sort.Strings(ops)
			for _, op := range ops {
				observability.CLILogger.Info(fmt.Sprintf("  Interval %s: %s", op, cfg.Engine.Intervals[op]))
			}
		}
		if len(cfg.Engine.SilentOperations) > 0 {
			observability.CLILogger.Info("  Silent Ops:        " + strings.Join(cfg.Engine.SilentOperations, ", "))
		}
		observability.CLILogger.Info("")

		// Notification Configuration
		observability.CLILogger.Info("Notify:")
		observability.CLILogger.Info(fmt.Sprintf("  Enabled:        %t", cfg.Notify.Enabled), zap.Bool("notify_enabled", cfg.Notify.Enabled))
		observability.CLILogger.Info(fmt.Sprintf("  Auto Reauth:    %t", cfg.Notify.AutoReauth), zap.Bool("auto_reauth", cfg.Notify.AutoReauth))
		observability.CLILogger.Info("")

		observability.CLILogger.Info("=== End Environment Information ===")
	},
}

func init() {
	rootCmd.AddCommand(envInfoCmd)
}
