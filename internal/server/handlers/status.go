package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/fulmenhq/gofulmen/errors"

	"github.com/gatelink/gatelink/internal/bridge"
	"github.com/gatelink/gatelink/internal/bridge/intervallimit"
	"github.com/gatelink/gatelink/internal/bridge/offline"
	"github.com/gatelink/gatelink/internal/bridge/requests"
)

// Introspection bundles the live engine surfaces the status endpoints read
// from. Set once at startup via SetIntrospection.
type Introspection struct {
	Manager *requests.Manager
}

var introspection *Introspection

// SetIntrospection installs the engine surfaces for the status endpoints.
func SetIntrospection(in *Introspection) {
	introspection = in
}

func manager() *requests.Manager {
	if introspection == nil {
		return nil
	}
	return introspection.Manager
}

func respondNotWired(w http.ResponseWriter, r *http.Request) {
	respondWithError(w, r,
		errors.NewErrorEnvelope("SERVICE_UNAVAILABLE", "call engine not initialized"))
}

// StatusResponse is the aggregate engine state.
type StatusResponse struct {
	Generation string           `json:"generation"`
	Binding    string           `json:"binding_version"`
	Loaded     bool             `json:"loaded"`
	Offline    offline.Snapshot `json:"offline"`
	Pool       bridge.PoolStats `json:"pool"`
	Timestamp  time.Time        `json:"timestamp"`
}

// StatusHandler reports the engine's offline state, binding and pool counters.
func StatusHandler(w http.ResponseWriter, r *http.Request) {
	m := manager()
	if m == nil {
		respondNotWired(w, r)
		return
	}
	eng := m.Engine()
	b := eng.Binding()

	response := StatusResponse{
		Generation: string(b.Generation()),
		Binding:    b.Version(),
		Loaded:     b.Loaded(),
		Offline:    eng.Offline().Snapshot(),
		Pool:       eng.Pool().Stats(),
		Timestamp:  time.Now().UTC(),
	}

	writeJSON(w, response)
}

// EventsResponse wraps the breaker transition log.
type EventsResponse struct {
	Events []offline.Event `json:"events"`
}

// EventsHandler reports the bounded offline transition log, oldest first.
func EventsHandler(w http.ResponseWriter, r *http.Request) {
	m := manager()
	if m == nil {
		respondNotWired(w, r)
		return
	}
	writeJSON(w, EventsResponse{Events: m.Engine().Offline().Events()})
}

// PoolHandler reports entity pool counters.
func PoolHandler(w http.ResponseWriter, r *http.Request) {
	m := manager()
	if m == nil {
		respondNotWired(w, r)
		return
	}
	writeJSON(w, m.Engine().Pool().Stats())
}

// IntervalsResponse maps operations to their pacing interval in milliseconds.
type IntervalsResponse struct {
	DefaultMs int64            `json:"default_ms"`
	Intervals map[string]int64 `json:"intervals"`
}

// IntervalsHandler reports the registered pacing intervals.
func IntervalsHandler(w http.ResponseWriter, r *http.Request) {
	m := manager()
	if m == nil {
		respondNotWired(w, r)
		return
	}

	snapshot := m.Engine().Limiter().Snapshot()
	intervals := make(map[string]int64, len(snapshot))
	for op, interval := range snapshot {
		intervals[op] = interval.Milliseconds()
	}

	writeJSON(w, IntervalsResponse{
		DefaultMs: intervallimit.DefaultInterval.Milliseconds(),
		Intervals: intervals,
	})
}

// RequestsResponse carries per-operation accounting and parked operations.
type RequestsResponse struct {
	Stats     []requests.OperationStats `json:"stats"`
	Suspended map[string]time.Time      `json:"suspended,omitempty"`
}

// RequestsHandler reports per-operation call accounting and suspensions.
func RequestsHandler(w http.ResponseWriter, r *http.Request) {
	m := manager()
	if m == nil {
		respondNotWired(w, r)
		return
	}

	writeJSON(w, RequestsResponse{
		Stats:     m.Stats(),
		Suspended: m.Suspended(),
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}
