package metrics

import (
	"time"

	"github.com/gatelink/gatelink/internal/observability"
)

// Gateway call metrics following Prometheus conventions
var (
	// Call outcome metrics
	CallsTotal   = "gateway_calls_total"
	CallDuration = "gateway_call_duration_ms"

	// Offline breaker metrics
	OfflineState  = "gateway_offline_state"
	OfflineEnters = "gateway_offline_enters_total"
	OfflineExits  = "gateway_offline_exits_total"

	// Entity pool metrics
	PoolIdle    = "gateway_pool_idle"
	PoolDropped = "gateway_pool_dropped_total"

	// Suspension metrics
	SuspendedOperations = "gateway_suspended_operations"

	// Server lifecycle metrics
	ServerStartTime = "app_server_start_time_seconds"
	ServerUptime    = "app_server_uptime_seconds"
)

// RecordCall records one finished gateway call with its outcome category.
func RecordCall(operation string, category string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			CallsTotal,
			1,
			map[string]string{
				"operation": operation,
				"category":  category,
			},
		)
	}
}

// RecordCallDuration records the wall time of one gateway call.
func RecordCallDuration(operation string, duration time.Duration) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Histogram(
			CallDuration,
			duration,
			map[string]string{"operation": operation},
		)
	}
}

// SetOfflineState publishes the breaker state as a 0/1 gauge.
func SetOfflineState(offline bool) {
	if observability.TelemetrySystem != nil {
		state := 0.0
		if offline {
			state = 1.0
		}
		_ = observability.TelemetrySystem.Gauge(OfflineState, state, nil)
	}
}

// SetOfflineCounters publishes the lifetime breaker transition counts.
func SetOfflineCounters(enters, exits int64) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(OfflineEnters, float64(enters), nil)
		_ = observability.TelemetrySystem.Gauge(OfflineExits, float64(exits), nil)
	}
}

// SetPoolGauges publishes the current idle entity count and lifetime drops.
func SetPoolGauges(idle int, dropped int64) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(PoolIdle, float64(idle), nil)
		_ = observability.TelemetrySystem.Gauge(PoolDropped, float64(dropped), nil)
	}
}

// SetSuspendedOperations publishes the number of currently parked operations.
func SetSuspendedOperations(count int) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(SuspendedOperations, float64(count), nil)
	}
}

// SetServerStartTime records the server start time (Unix timestamp)
func SetServerStartTime(timestamp int64) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(ServerStartTime, float64(timestamp), nil)
	}
}

// SetServerUptime records the server uptime in seconds
func SetServerUptime(seconds int64) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(ServerUptime, float64(seconds), nil)
	}
}
