// Package gatewayv1 is the legacy binding: a single synchronous host
// invocation per attempt. Kept for hosts that predate the callback gateway;
// its backoff doubles per attempt because the old gateway degraded badly
// under retry pressure.
package gatewayv1

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gatelink/gatelink/internal/bridge"
	"github.com/gatelink/gatelink/internal/hostlink"
)

// Bridge implements bridge.Binding over the synchronous host symbol.
type Bridge struct {
	reg    *hostlink.Registry
	logger *zap.Logger

	mu     sync.RWMutex
	invoke hostlink.SyncFunc
}

// New creates an unloaded legacy binding resolving against reg.
func New(reg *hostlink.Registry, logger *zap.Logger) *Bridge {
	if reg == nil {
		reg = hostlink.Default
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{reg: reg, logger: logger}
}

// Generation identifies this binding as the legacy generation.
func (b *Bridge) Generation() bridge.Generation { return bridge.GenerationLegacy }

// Version reports the host gateway build, falling back to the generation.
func (b *Bridge) Version() string {
	if v := b.reg.Version(); v != "" {
		return v
	}
	return string(bridge.GenerationLegacy)
}

// Load resolves the synchronous invoke symbol.
func (b *Bridge) Load() error {
	fn, err := b.reg.ResolveInvoke(hostlink.SymbolInvoke)
	if err != nil {
		return fmt.Errorf("%w: %v", bridge.ErrBindingUnavailable, err)
	}

	b.mu.Lock()
	b.invoke = fn
	b.mu.Unlock()

	b.logger.Debug("legacy binding loaded")
	return nil
}

// Unload drops the resolved symbol.
func (b *Bridge) Unload() {
	b.mu.Lock()
	b.invoke = nil
	b.mu.Unlock()
}

// Loaded reports whether Load has resolved the symbol.
func (b *Bridge) Loaded() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.invoke != nil
}

// Invoke performs one synchronous attempt.
func (b *Bridge) Invoke(ctx context.Context, e *bridge.CallEntity) error {
	b.mu.RLock()
	fn := b.invoke
	b.mu.RUnlock()
	if fn == nil {
		return bridge.ErrBindingUnavailable
	}

	resp, err := fn(ctx, e.Operation, e.RequestPayload)
	if err != nil {
		return err
	}
	e.SetResponse(resp)
	return nil
}

// RetryDelay doubles per attempt, capped.
func (b *Bridge) RetryDelay(attempt, retryIntervalMs int) time.Duration {
	return bridge.LegacyRetryDelay(attempt, retryIntervalMs)
}
