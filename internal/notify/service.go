package notify

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Debounce windows. Error notifications collapse bursts from a failing
// workflow; the re-auth window matches how long a session recovery usually
// takes end to end.
const (
	errorWindow  = 30 * time.Second
	reauthWindow = 5 * time.Minute
)

// Service is the engine-facing fan-out: a Notifier and ReauthTrigger behind
// shared debouncing.
type Service struct {
	notifier Notifier
	reauth   ReauthTrigger
	debounce *Debouncer
	logger   *zap.Logger

	notificationsOn bool
	reauthOn        bool
}

// Option configures a Service.
type Option func(*Service)

// WithNotifier installs the host notifier and enables notifications.
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
			s.notificationsOn = true
		}
	}
}

// WithReauthTrigger installs the host re-auth hook and enables it.
func WithReauthTrigger(r ReauthTrigger) Option {
	return func(s *Service) {
		if r != nil {
			s.reauth = r
			s.reauthOn = true
		}
	}
}

// WithClock overrides the debounce clock, for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.debounce.Clock = clock }
}

// NewService creates a Service. Without options it logs but never notifies.
func NewService(logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		notifier: NopNotifier{},
		debounce: NewDebouncer(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OfflineEntered reports a breaker transition to the user, debounced per
// reason so a refresh storm produces one notification.
func (s *Service) OfflineEntered(reason, detail string, until time.Time) {
	if !s.notificationsOn {
		return
	}
	if !s.debounce.TryAcquire("offline:"+reason, errorWindow) {
		return
	}

	body := fmt.Sprintf("gateway offline until %s: %s", until.Format(time.TimeOnly), reason)
	if detail != "" {
		body += " (" + detail + ")"
	}
	s.notifier.SendErrorNotification("Gateway unavailable", body)
	s.logger.Warn("offline notification sent",
		zap.String("reason", reason),
		zap.Time("until", until))
}

// CallFailed raises a debounced per-operation error notification.
func (s *Service) CallFailed(operation, message string) {
	if !s.notificationsOn {
		return
	}
	if !s.debounce.TryAcquire("call:"+operation, errorWindow) {
		return
	}
	s.notifier.SendErrorNotification("Gateway call failed", operation+": "+message)
}

// UpdateStatus replaces the status line. Status text is last-write-wins and
// cheap to deliver, so unlike notifications it is never debounced.
func (s *Service) UpdateStatus(text string) {
	if !s.notificationsOn {
		return
	}
	s.notifier.UpdateStatusText(text)
}

// RequestReauth fires the session recovery hook at most once per window.
// Returns whether this caller won the debounce.
func (s *Service) RequestReauth() bool {
	if !s.reauthOn || s.reauth == nil {
		return false
	}
	if !s.debounce.TryAcquire("reauth", reauthWindow) {
		s.logger.Debug("re-auth skipped, recently triggered")
		return false
	}
	s.logger.Info("triggering session re-auth")
	s.reauth.TriggerReauth()
	return true
}
