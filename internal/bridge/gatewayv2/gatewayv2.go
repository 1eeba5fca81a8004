// Package gatewayv2 is the modern binding: the host dispatches the call and
// delivers the outcome through a completion callback. The binding bridges
// that callback back to the engine's synchronous world through a single-slot
// result cell with a bounded wait; there is no polling.
package gatewayv2

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gatelink/gatelink/internal/bridge"
	"github.com/gatelink/gatelink/internal/hostlink"
)

// DefaultCompletionWait bounds how long one attempt waits for the callback.
const DefaultCompletionWait = 30 * time.Second

// Bridge implements bridge.Binding over the callback host symbol.
type Bridge struct {
	reg    *hostlink.Registry
	logger *zap.Logger

	// CompletionWait overrides DefaultCompletionWait when positive.
	CompletionWait time.Duration

	mu     sync.RWMutex
	invoke hostlink.AsyncFunc
}

type completion struct {
	response string
	err      error
}

// New creates an unloaded modern binding resolving against reg.
func New(reg *hostlink.Registry, logger *zap.Logger) *Bridge {
	if reg == nil {
		reg = hostlink.Default
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{reg: reg, logger: logger}
}

// Generation identifies this binding as the modern generation.
func (b *Bridge) Generation() bridge.Generation { return bridge.GenerationModern }

// Version reports the host gateway build, falling back to the generation.
func (b *Bridge) Version() string {
	if v := b.reg.Version(); v != "" {
		return v
	}
	return string(bridge.GenerationModern)
}

// Load resolves the callback invoke symbol.
func (b *Bridge) Load() error {
	fn, err := b.reg.ResolveInvokeAsync(hostlink.SymbolInvokeAsync)
	if err != nil {
		return fmt.Errorf("%w: %v", bridge.ErrBindingUnavailable, err)
	}

	b.mu.Lock()
	b.invoke = fn
	b.mu.Unlock()

	b.logger.Debug("modern binding loaded")
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

// Invoke dispatches one attempt and blocks on the result cell. The cell has
// exactly one slot: the first completion wins, any duplicate delivery from a
// misbehaving host is dropped instead of blocking its goroutine. A wait that
// expires leaves the entity unpopulated; the engine treats that as
// no-response and does not retry.
func (b *Bridge) Invoke(ctx context.Context, e *bridge.CallEntity) error {
	b.mu.RLock()
	fn := b.invoke
	b.mu.RUnlock()
	if fn == nil {
		return bridge.ErrBindingUnavailable
	}

	cell := make(chan completion, 1)
	err := fn(ctx, e.Operation, e.RequestPayload, func(response string, err error) {
		select {
		case cell <- completion{response: response, err: err}:
		default:
		}
	})
	if err != nil {
		return err
	}

	wait := b.CompletionWait
	if wait <= 0 {
		wait = DefaultCompletionWait
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case done := <-cell:
		if done.err != nil {
			if done.response != "" {
				// The gateway answered and flagged the answer as failed.
				e.SetResponse(done.response)
				e.SetError()
				return nil
			}
			return done.err
		}
		e.SetResponse(done.response)
		return nil

	case <-ctx.Done():
		return ctx.Err()

	case <-timer.C:
		b.logger.Warn("completion wait expired",
			zap.String("operation", e.Operation),
			zap.Duration("wait", wait))
		return nil
	}
}

// RetryDelay is constant across attempts per the caller's interval.
func (b *Bridge) RetryDelay(attempt, retryIntervalMs int) time.Duration {
	return bridge.ModernRetryDelay(retryIntervalMs)
}
