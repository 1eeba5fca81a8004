// Package intervallimit paces gateway operations: consecutive calls on the
// same operation are spaced at least the configured interval apart. This is
// spacing, not windowed rate limiting; there is no burst allowance.
package intervallimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// DefaultInterval applies to operations with no registered override.
const DefaultInterval = 500 * time.Millisecond

// ErrDuplicateRegistration reports a second Register for the same operation.
// Use Update to change an existing interval.
var ErrDuplicateRegistration = errors.New("interval already registered")

type opLimit struct {
	interval time.Duration
	next     time.Time
}

// Limiter tracks per-operation pacing state. The zero value is not usable;
// call New.
type Limiter struct {
	// Clock and Sleep are injectable for tests.
	Clock func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error

	mu     sync.Mutex
	limits map[string]*opLimit
}

// New creates a limiter using the wall clock.
func New() *Limiter {
	return &Limiter{
		Clock:  time.Now,
		Sleep:  sleep,
		limits: make(map[string]*opLimit),
	}
}

// Register sets the interval for an operation before first use. Registering
// the same operation twice is a programming error and is reported as
// ErrDuplicateRegistration.
func (l *Limiter) Register(op string, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultInterval
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.limits[op]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateRegistration, op)
	}
	l.limits[op] = &opLimit{interval: interval}
	return nil
}

// Update changes the interval for an operation, creating the entry when
// missing. Unlike Register, updating is always allowed.
func (l *Limiter) Update(op string, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if lim, ok := l.limits[op]; ok {
		lim.interval = interval
		return
	}
	l.limits[op] = &opLimit{interval: interval}
}

// Enter blocks until the operation's slot is free, then claims it. The wait
// is computed and the slot claimed under the lock; the sleep itself happens
// outside, so one slow operation never stalls pacing for the others. A
// cancelled ctx gives up the claimed slot's wait but not the slot.
func (l *Limiter) Enter(ctx context.Context, op string) error {
	now := l.now()

	l.mu.Lock()
	lim, ok := l.limits[op]
	if !ok {
		lim = &opLimit{interval: DefaultInterval}
		l.limits[op] = lim
	}

	var wait time.Duration
	if lim.next.After(now) {
		wait = lim.next.Sub(now)
		lim.next = lim.next.Add(lim.interval)
	} else {
		lim.next = now.Add(lim.interval)
	}
	l.mu.Unlock()

	if wait <= 0 {
		return ctx.Err()
	}
	return l.sleep(ctx, wait)
}

// Interval reports the configured interval for an operation.
func (l *Limiter) Interval(op string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	if lim, ok := l.limits[op]; ok {
		return lim.interval
	}
	return DefaultInterval
}

// Snapshot copies the registered intervals for introspection.
func (l *Limiter) Snapshot() map[string]time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]time.Duration, len(l.limits))
	for op, lim := range l.limits {
		out[op] = lim.interval
	}
	return out
}

func (l *Limiter) now() time.Time {
	if l.Clock != nil {
		return l.Clock()
	}
	return time.Now()
}

func (l *Limiter) sleep(ctx context.Context, d time.Duration) error {
	if l.Sleep != nil {
		return l.Sleep(ctx, d)
	}
	return sleep(ctx, d)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
