// Package requests is the workflow-facing facade over the call engine. It
// adds what individual calls cannot see for themselves: per-operation
// suspension when the gateway throttles one operation, success/failure
// accounting, a short-lived response cache for idempotent reads, and bounded
// concurrent batches.
package requests

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gatelink/gatelink/internal/bridge"
	"github.com/gatelink/gatelink/internal/metrics"
)

// SuspendDuration is how long an operation stays parked after the gateway
// answers with the throttled code.
const SuspendDuration = 10 * time.Minute

// Manager routes workflow calls through the engine.
type Manager struct {
	eng    *bridge.Engine
	logger *zap.Logger

	// Clock is injectable for tests.
	Clock func() time.Time

	mu        sync.Mutex
	suspended map[string]time.Time

	stats *statsBook
	cache *responseCache
}

// NewManager wires a manager around an engine and installs the outcome
// hooks. Exactly one manager should own an engine's hooks.
func NewManager(eng *bridge.Engine, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		eng:       eng,
		logger:    logger,
		Clock:     time.Now,
		suspended: make(map[string]time.Time),
		stats:     newStatsBook(),
		cache:     newResponseCache(defaultCacheTTL, defaultCacheSize),
	}
	eng.SetHooks(bridge.Hooks{
		OnSuccess: m.onSuccess,
		OnFailure: m.onFailure,
	})
	return m
}

// Engine exposes the wrapped engine for introspection surfaces.
func (m *Manager) Engine() *bridge.Engine { return m.eng }

// Text performs a call with default budgets, returning "" on failure.
func (m *Manager) Text(ctx context.Context, operation, payload string) string {
	return m.TextWith(ctx, operation, payload, bridge.DefaultAttempts, bridge.DefaultRetryIntervalMs)
}

// TextWith is Text with explicit attempt and backoff budgets.
func (m *Manager) TextWith(ctx context.Context, operation, payload string, attempts, retryIntervalMs int) string {
	e := m.EntityWith(ctx, operation, payload, attempts, retryIntervalMs)
	if e == nil {
		return ""
	}
	text := e.ResponseText
	m.Recycle(e)
	return text
}

// Entity performs a call returning the pooled entity, or nil on failure.
// The caller must recycle the entity through Recycle.
func (m *Manager) Entity(ctx context.Context, operation, payload string) *bridge.CallEntity {
	return m.EntityWith(ctx, operation, payload, bridge.DefaultAttempts, bridge.DefaultRetryIntervalMs)
}

// EntityWith is Entity with explicit budgets.
func (m *Manager) EntityWith(ctx context.Context, operation, payload string, attempts, retryIntervalMs int) *bridge.CallEntity {
	if m.isSuspended(operation) {
		m.logger.Debug("operation suspended, skipping call", zap.String("operation", operation))
		return nil
	}
	start := time.Now()
	e := m.eng.RequestEntityWith(ctx, operation, payload, attempts, retryIntervalMs)
	metrics.RecordCallDuration(operation, time.Since(start))
	return e
}

// Recycle hands an entity back to the engine's pool.
func (m *Manager) Recycle(e *bridge.CallEntity) {
	m.eng.Pool().Recycle(e)
}

// CachedText serves idempotent reads from the short-TTL cache, falling back
// to a real call on miss. Failures are never cached, error-flagged
// responses included.
func (m *Manager) CachedText(ctx context.Context, operation, payload string) string {
	key := operation + "\x00" + payload
	if text, ok := m.cache.get(key, m.now()); ok {
		return text
	}
	e := m.EntityWith(ctx, operation, payload, bridge.DefaultAttempts, bridge.DefaultRetryIntervalMs)
	if e == nil {
		return ""
	}
	text := e.ResponseText
	flagged := e.HasError
	m.Recycle(e)
	if text != "" && !flagged {
		m.cache.put(key, text, m.now())
	}
	return text
}

// InvalidateCache drops all cached responses.
func (m *Manager) InvalidateCache() { m.cache.clear() }

// Suspended reports the operations currently parked, with their release
// times. Expired entries are pruned on the way out.
func (m *Manager) Suspended() map[string]time.Time {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]time.Time, len(m.suspended))
	for op, until := range m.suspended {
		if now.After(until) {
			delete(m.suspended, op)
			continue
		}
		out[op] = until
	}
	return out
}

// Stats returns the per-operation accounting snapshot.
func (m *Manager) Stats() []OperationStats {
	return m.stats.snapshot()
}

func (m *Manager) isSuspended(operation string) bool {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	until, ok := m.suspended[operation]
	if !ok {
		return false
	}
	if now.After(until) {
		delete(m.suspended, operation)
		return false
	}
	return true
}

func (m *Manager) onSuccess(operation string) {
	m.stats.success(operation)
	metrics.RecordCall(operation, bridge.CategorySuccess.String())
}

func (m *Manager) onFailure(verdict *bridge.ClassifiedError) {
	m.stats.failure(verdict)
	metrics.RecordCall(verdict.Operation, verdict.Category.String())

	if verdict.Code != bridge.OperationSuspendedCode {
		return
	}
	until := m.now().Add(SuspendDuration)

	m.mu.Lock()
	m.suspended[verdict.Operation] = until
	m.mu.Unlock()

	m.logger.Warn("operation suspended by gateway",
		zap.String("operation", verdict.Operation),
		zap.Time("until", until))
}

func (m *Manager) now() time.Time {
	if m.Clock != nil {
		return m.Clock()
	}
	return time.Now()
}
