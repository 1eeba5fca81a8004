// Package hostlink is the seam between the engine and the embedding host.
// The host registers raw invocation functions under well-known symbol names;
// bindings resolve them at Load time. A missing symbol is how "the gateway
// layer is not up yet" surfaces to the engine.
package hostlink

import (
	"context"
	"fmt"
	"sync"
)

// Symbol names the bindings resolve.
const (
	// SymbolInvoke is the legacy synchronous invocation function.
	SymbolInvoke = "gateway.invoke"

	// SymbolInvokeAsync is the modern callback-completion function.
	SymbolInvokeAsync = "gateway.invoke_async"

	// SymbolVersion reports the gateway build, when the host provides it.
	SymbolVersion = "gateway.version"
)

// SyncFunc performs one synchronous raw call and returns the response text.
type SyncFunc func(ctx context.Context, operation, payload string) (string, error)

// AsyncFunc starts one raw call and delivers the outcome through complete.
// The function itself returns as soon as the call is dispatched; complete is
// invoked exactly once, from any goroutine.
type AsyncFunc func(ctx context.Context, operation, payload string, complete func(response string, err error)) error

// VersionFunc reports the gateway build string.
type VersionFunc func() string

// ErrSymbolNotFound is wrapped into resolution errors.
type ErrSymbolNotFound struct {
	Symbol string
}

func (e *ErrSymbolNotFound) Error() string {
	return fmt.Sprintf("host symbol not registered: %s", e.Symbol)
}

// Registry holds the host's registered functions. The zero value is ready
// to use.
type Registry struct {
	mu      sync.RWMutex
	syncs   map[string]SyncFunc
	asyncs  map[string]AsyncFunc
	version VersionFunc
}

// RegisterInvoke installs a synchronous invocation function. Registering the
// same symbol again replaces the previous function.
func (r *Registry) RegisterInvoke(symbol string, fn SyncFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.syncs == nil {
		r.syncs = make(map[string]SyncFunc)
	}
	r.syncs[symbol] = fn
}

// RegisterInvokeAsync installs a callback-completion invocation function.
func (r *Registry) RegisterInvokeAsync(symbol string, fn AsyncFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.asyncs == nil {
		r.asyncs = make(map[string]AsyncFunc)
	}
	r.asyncs[symbol] = fn
}

// RegisterVersion installs the gateway version reporter.
func (r *Registry) RegisterVersion(fn VersionFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.version = fn
}

// Unregister removes a symbol of either kind.
func (r *Registry) Unregister(symbol string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.syncs, symbol)
	delete(r.asyncs, symbol)
}

// ResolveInvoke looks up a synchronous function.
func (r *Registry) ResolveInvoke(symbol string) (SyncFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if fn, ok := r.syncs[symbol]; ok && fn != nil {
		return fn, nil
	}
	return nil, &ErrSymbolNotFound{Symbol: symbol}
}

// ResolveInvokeAsync looks up a callback-completion function.
func (r *Registry) ResolveInvokeAsync(symbol string) (AsyncFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if fn, ok := r.asyncs[symbol]; ok && fn != nil {
		return fn, nil
	}
	return nil, &ErrSymbolNotFound{Symbol: symbol}
}

// Version reports the gateway build, or "" when the host did not register
// a reporter.
func (r *Registry) Version() string {
	r.mu.RLock()
	fn := r.version
	r.mu.RUnlock()
	if fn == nil {
		return ""
	}
	return fn()
}

// Default is the process-global registry used by embedding hosts that have
// exactly one gateway.
var Default = &Registry{}
