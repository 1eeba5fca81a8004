// Package bridge implements the resilient call engine that sits between
// workflow code and the host gateway bindings: entity pooling, per-operation
// pacing, failure classification, retries, and the global offline breaker.
//
// Workflow-facing call surfaces never return errors. A call that cannot be
// completed after classification and retries yields an empty string or nil
// entity; the engine records the failure and moves on.
package bridge

import (
	"context"
	"errors"
	"time"
)

// Generation identifies a gateway binding implementation.
type Generation string

const (
	// GenerationLegacy is the synchronous first-generation binding.
	GenerationLegacy Generation = "legacy"

	// GenerationModern is the callback-based second-generation binding.
	GenerationModern Generation = "modern"
)

// Defaults shared by both binding generations.
const (
	// DefaultAttempts is the per-call attempt budget when the caller does
	// not specify one.
	DefaultAttempts = 3

	// DefaultRetryIntervalMs selects the jittered default backoff.
	DefaultRetryIntervalMs = -1

	// MinRetryBaseMs floors the backoff base regardless of configuration.
	MinRetryBaseMs = 600

	// LegacyMaxDelay caps the legacy binding's doubled backoff.
	LegacyMaxDelay = 15 * time.Second
)

// ErrBindingUnavailable reports that the host has not registered the
// invocation symbols a binding needs. The condition is fatal for the current
// attempt only; a later Load may succeed once the host side is up.
var ErrBindingUnavailable = errors.New("gateway binding unavailable")

// Binding is one gateway generation's raw call surface. Invoke performs a
// single attempt and fills the entity's response fields; the retry loop,
// pacing, and classification live in Engine.
type Binding interface {
	// Generation identifies the binding.
	Generation() Generation

	// Version reports the gateway protocol version the binding speaks.
	Version() string

	// Load resolves host invocation symbols. Returns ErrBindingUnavailable
	// when the host has not registered them.
	Load() error

	// Unload releases resolved symbols. Safe to call repeatedly.
	Unload()

	// Loaded reports whether the binding currently holds resolved symbols.
	Loaded() bool

	// Invoke performs one raw call attempt. The entity's response fields are
	// populated on any delivered response, success or error; a transport
	// failure is returned as a non-nil error with nothing delivered.
	Invoke(ctx context.Context, e *CallEntity) error

	// RetryDelay computes the sleep before the given retry. attempt is
	// 1-based and counts the attempt that just failed. retryIntervalMs <0
	// selects the jittered default, 0 disables the delay, >0 is explicit.
	RetryDelay(attempt int, retryIntervalMs int) time.Duration
}
