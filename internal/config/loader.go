// Package config provides centralized configuration management for gatelink.
// Values come from three layers: built-in defaults, an optional YAML config
// file discovered through viper, and GATELINK_* environment variables.
package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const envPrefix = "GATELINK"

var (
	// appConfig holds the current application configuration
	appConfig *Config
	configMu  sync.RWMutex
)

// SetDefaults installs the built-in layer into viper. Called once from the
// CLI bootstrap before any config read.
func SetDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// Gateway defaults
	v.SetDefault("gateway.generation", "modern")
	v.SetDefault("gateway.url", "")
	v.SetDefault("gateway.call_timeout", "30s")
	v.SetDefault("gateway.completion_wait", "30s")

	// Engine defaults
	v.SetDefault("engine.failure_threshold", 5)
	v.SetDefault("engine.offline_cooldown", "3m")
	v.SetDefault("engine.pool_cap", 64)
	v.SetDefault("engine.pool_warm", 16)
	v.SetDefault("engine.intervals", map[string]string{})
	v.SetDefault("engine.silent_operations", []string{})

	// Notify defaults
	v.SetDefault("notify.enabled", true)
	v.SetDefault("notify.auto_reauth", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.profile", "structured")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)

	// Health check defaults
	v.SetDefault("health.enabled", true)

	// Debug defaults
	v.SetDefault("debug.enabled", false)
}

// Load decodes the merged viper state into a typed Config and stores it as
// the current configuration. Safe to call multiple times (config reload).
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	setConfig(cfg)
	return cfg, nil
}

// BindEnv wires GATELINK_* environment variables into viper.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Get returns the current application configuration (thread-safe).
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

func setConfig(cfg *Config) {
	configMu.Lock()
	defer configMu.Unlock()
	appConfig = cfg
}

func validate(cfg *Config) error {
	switch strings.ToLower(strings.TrimSpace(cfg.Gateway.Generation)) {
	case "legacy", "modern":
	default:
		return fmt.Errorf("invalid gateway generation %q (want legacy or modern)", cfg.Gateway.Generation)
	}
	if cfg.Engine.FailureThreshold < 0 {
		return fmt.Errorf("engine.failure_threshold must not be negative")
	}
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", cfg.Server.Port)
	}
	return nil
}
