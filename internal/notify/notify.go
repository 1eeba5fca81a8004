// Package notify fans engine events out to the host: status line updates,
// error notifications, and session re-auth triggers. Everything here is
// debounced; the engine can fire these on every failing call without
// flooding the user.
package notify

import (
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// Notifier is implemented by the host to surface engine state to the user.
type Notifier interface {
	// UpdateStatusText replaces the persistent status line.
	UpdateStatusText(text string)

	// SendErrorNotification raises a one-shot error notification.
	SendErrorNotification(title, body string)
}

// ReauthTrigger is implemented by the host to kick off session recovery.
// Fire-and-forget: the engine never waits for the outcome.
type ReauthTrigger interface {
	TriggerReauth()
}

// NopNotifier discards everything. Used when notifications are disabled.
type NopNotifier struct{}

func (NopNotifier) UpdateStatusText(string)              {}
func (NopNotifier) SendErrorNotification(string, string) {}

// neverFired is the sentinel for a key that has not won an acquire yet. The
// injectable clock may legitimately sit at the unix epoch in tests, so zero
// is not usable.
const neverFired = math.MinInt64

// Debouncer suppresses repeat fires of the same key inside a window. The
// guard is a compare-and-swap on the per-key last-fired unix-milli timestamp,
// not a lock: when several goroutines race, exactly one swap lands and the
// losers skip their fire entirely rather than wait. "Someone just did it" is
// as good as doing it.
type Debouncer struct {
	// Clock is injectable for tests.
	Clock func() time.Time

	// mu guards only slot creation; firing never holds it.
	mu   sync.Mutex
	last map[string]*atomic.Int64
}

// NewDebouncer creates a debouncer using the wall clock.
func NewDebouncer() *Debouncer {
	return &Debouncer{
		Clock: time.Now,
		last:  make(map[string]*atomic.Int64),
	}
}

// slot returns the timestamp cell for key, creating it on first use.
func (d *Debouncer) slot(key string) *atomic.Int64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	cell, ok := d.last[key]
	if !ok {
		cell = new(atomic.Int64)
		cell.Store(neverFired)
		d.last[key] = cell
	}
	return cell
}

// TryAcquire reports whether the caller should perform the action for key.
// It returns true at most once per window; concurrent callers see exactly
// one true. A caller that loses the swap treats the action as already done.
func (d *Debouncer) TryAcquire(key string, window time.Duration) bool {
	cell := d.slot(key)
	now := d.now().UnixMilli()

	prev := cell.Load()
	if prev != neverFired && now-prev < window.Milliseconds() {
		return false
	}
	return cell.CompareAndSwap(prev, now)
}

// Reset clears the key so the next TryAcquire fires regardless of window.
func (d *Debouncer) Reset(key string) {
	d.slot(key).Store(neverFired)
}

func (d *Debouncer) now() time.Time {
	if d.Clock != nil {
		return d.Clock()
	}
	return time.Now()
}
