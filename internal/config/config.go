package config

import (
	"time"
)

// Config is the complete application configuration, loaded via viper with
// environment overrides under the GATELINK_ prefix.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Gateway GatewayConfig `mapstructure:"gateway"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Notify  NotifyConfig  `mapstructure:"notify"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Health  HealthConfig  `mapstructure:"health"`
	Debug   DebugConfig   `mapstructure:"debug"`
}

// ServerConfig contains HTTP introspection server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// GatewayConfig selects the binding generation and, for the diagnostic HTTP
// adapter, the gateway endpoint.
type GatewayConfig struct {
	// Generation is "legacy" or "modern".
	Generation string `mapstructure:"generation"`

	// URL enables the HTTP host adapter when set. Embedding hosts register
	// their own invocation functions and leave this empty.
	URL string `mapstructure:"url"`

	// CallTimeout bounds one HTTP exchange of the adapter.
	CallTimeout time.Duration `mapstructure:"call_timeout"`

	// CompletionWait bounds the modern binding's callback wait.
	CompletionWait time.Duration `mapstructure:"completion_wait"`
}

// EngineConfig contains the resilience knobs.
type EngineConfig struct {
	// FailureThreshold is the consecutive business-failure count that opens
	// the offline breaker.
	FailureThreshold int `mapstructure:"failure_threshold"`

	// OfflineCooldown is the configured cooldown; a floor of three minutes
	// always applies.
	OfflineCooldown time.Duration `mapstructure:"offline_cooldown"`

	// PoolCap bounds the idle entity pool.
	PoolCap int `mapstructure:"pool_cap"`

	// PoolWarm pre-populates the pool at startup.
	PoolWarm int `mapstructure:"pool_warm"`

	// Intervals overrides per-operation pacing, keyed by operation name.
	Intervals map[string]time.Duration `mapstructure:"intervals"`

	// SilentOperations lists operations whose failures stay quiet.
	SilentOperations []string `mapstructure:"silent_operations"`
}

// NotifyConfig controls user-facing fan-out.
type NotifyConfig struct {
	// Enabled controls error notifications and status updates.
	Enabled bool `mapstructure:"enabled"`

	// AutoReauth controls whether failures trigger session recovery.
	AutoReauth bool `mapstructure:"auto_reauth"`
}

// LoggingConfig contains logging configuration.
// Valid levels: trace, debug, info, warn, error.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Profile string `mapstructure:"profile"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// HealthConfig contains health check configuration.
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// DebugConfig contains debug configuration.
type DebugConfig struct {
	// Enabled turns on truncated request/response capture at debug level.
	Enabled bool `mapstructure:"enabled"`
}
