// Package offline holds the process-wide gateway breaker: a single state
// machine that workflow calls consult before touching a binding. There is no
// background timer; expiry is detected by whichever caller checks first.
package offline

import (
	"sync"
	"time"
)

// EventType labels one transition in the breaker's audit log.
type EventType string

const (
	// EventEnter: the breaker opened from the online state.
	EventEnter EventType = "ENTER"

	// EventRefresh: EnterOffline while already offline; the deadline was
	// pushed out.
	EventRefresh EventType = "REFRESH"

	// EventExit: an explicit ExitOffline closed the breaker.
	EventExit EventType = "EXIT"

	// EventAutoExit: a caller observed the cooldown expired and closed the
	// breaker on its way through.
	EventAutoExit EventType = "AUTO_EXIT"
)

// maxEvents bounds the audit log; older events are discarded first.
const maxEvents = 64

// MinCooldown floors any configured cooldown duration.
const MinCooldown = 3 * time.Minute

// Event is one entry in the breaker's audit log.
type Event struct {
	Type   EventType `json:"type"`
	At     time.Time `json:"at"`
	Until  time.Time `json:"until,omitempty"`
	Reason string    `json:"reason,omitempty"`
	Detail string    `json:"detail,omitempty"`
}

// Snapshot is a point-in-time copy of the breaker state.
type Snapshot struct {
	Offline   bool      `json:"offline"`
	Until     time.Time `json:"until,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Enters    int64     `json:"enters"`
	Exits     int64     `json:"exits"`
	LastEnter time.Time `json:"last_enter,omitempty"`
	LastExit  time.Time `json:"last_exit,omitempty"`
}

// State is the breaker. The zero value is not usable; call New.
type State struct {
	// Clock is injectable for tests. Defaults to time.Now.
	Clock func() time.Time

	mu      sync.Mutex
	offline bool
	until   time.Time
	reason  string
	detail  string

	enters    int64
	exits     int64
	lastEnter time.Time
	lastExit  time.Time

	events []Event
}

// New creates an online breaker using the wall clock.
func New() *State {
	return &State{Clock: time.Now}
}

func (s *State) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

// EnterOffline opens the breaker for cooldown from now. Re-entering while
// already offline refreshes: the deadline is always overwritten, never kept,
// so a fresh failure during cooldown extends the quiet period.
func (s *State) EnterOffline(cooldown time.Duration, reason, detail string) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	kind := EventEnter
	if s.offline {
		kind = EventRefresh
	}

	s.offline = true
	s.until = now.Add(cooldown)
	s.reason = reason
	s.detail = detail
	s.enters++
	s.lastEnter = now

	s.appendEvent(Event{
		Type:   kind,
		At:     now,
		Until:  s.until,
		Reason: reason,
		Detail: detail,
	})
}

// ExitOffline closes the breaker explicitly (operator action or successful
// re-auth). A no-op when already online.
func (s *State) ExitOffline() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.offline {
		return
	}
	s.appendEvent(Event{
		Type:   EventExit,
		At:     now,
		Reason: s.reason,
		Detail: s.detail,
	})
	s.close(now)
}

// ShouldBlock reports whether calls must be refused right now. A caller that
// finds the cooldown expired performs the AUTO_EXIT transition itself; the
// event keeps the reason and detail of the enter that opened the breaker.
func (s *State) ShouldBlock() bool {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.offline {
		return false
	}
	if now.After(s.until) {
		s.appendEvent(Event{
			Type:   EventAutoExit,
			At:     now,
			Reason: s.reason,
			Detail: s.detail,
		})
		s.close(now)
		return false
	}
	return true
}

// IsOffline reports the raw flag without performing the expiry transition.
func (s *State) IsOffline() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offline
}

// Snapshot copies the current state for introspection.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Offline:   s.offline,
		Enters:    s.enters,
		Exits:     s.exits,
		LastEnter: s.lastEnter,
		LastExit:  s.lastExit,
	}
	if s.offline {
		snap.Until = s.until
		snap.Reason = s.reason
		snap.Detail = s.detail
	}
	return snap
}

// Events returns a copy of the audit log, oldest first.
func (s *State) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// close transitions to online. Caller holds the lock.
func (s *State) close(now time.Time) {
	s.offline = false
	s.until = time.Time{}
	s.reason = ""
	s.detail = ""
	s.exits++
	s.lastExit = now
}

// appendEvent adds to the bounded log. Caller holds the lock.
func (s *State) appendEvent(e Event) {
	if len(s.events) >= maxEvents {
		copy(s.events, s.events[1:])
		s.events = s.events[:len(s.events)-1]
	}
	s.events = append(s.events, e)
}

// EffectiveCooldown applies the floor to a configured cooldown.
func EffectiveCooldown(configured time.Duration) time.Duration {
	if configured < MinCooldown {
		return MinCooldown
	}
	return configured
}
