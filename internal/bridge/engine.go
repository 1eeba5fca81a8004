package bridge

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/gatelink/gatelink/internal/bridge/intervallimit"
	"github.com/gatelink/gatelink/internal/bridge/offline"
	"github.com/gatelink/gatelink/internal/notify"
)

// EngineConfig carries the resilience knobs shared by all bindings.
type EngineConfig struct {
	// FailureThreshold is the number of consecutive business failures that
	// opens the offline breaker. Auth failures open it immediately.
	FailureThreshold int

	// OfflineCooldown is the configured cooldown; the offline package floor
	// still applies.
	OfflineCooldown time.Duration

	// DebugCapture logs truncated request/response payloads at debug level.
	DebugCapture bool
}

// DefaultFailureThreshold opens the breaker after this many consecutive
// business failures when the config does not say otherwise.
const DefaultFailureThreshold = 5

// Hooks let the request facade observe call outcomes without the engine
// knowing about suspension or statistics.
type Hooks struct {
	// OnSuccess fires after a call completes successfully.
	OnSuccess func(operation string)

	// OnFailure fires with the final classification of a failed call.
	OnFailure func(*ClassifiedError)
}

// Engine drives one binding through the full call discipline: offline
// gating, per-operation pacing, classification, retries, and notification
// fan-out. Workflow code gets back a value or nothing, never an error.
type Engine struct {
	binding Binding
	off     *offline.State
	limiter *intervallimit.Limiter
	pool    *Pool
	notify  *notify.Service
	logger  *zap.Logger
	silent  SilentOperations
	cfg     EngineConfig
	hooks   Hooks

	// sleep is injectable for retry-loop tests.
	sleep SleepFunc

	// logDebounce rate-limits empty-response log lines per operation.
	logDebounce *notify.Debouncer

	failures int64
}

// NewEngine wires an engine around a binding. Nil collaborators get working
// defaults; logger nil means no logging.
func NewEngine(binding Binding, off *offline.State, limiter *intervallimit.Limiter, pool *Pool, svc *notify.Service, logger *zap.Logger, silent SilentOperations, cfg EngineConfig) *Engine {
	if off == nil {
		off = offline.New()
	}
	if limiter == nil {
		limiter = intervallimit.New()
	}
	if pool == nil {
		pool = NewPool(0)
	}
	if svc == nil {
		svc = notify.NewService(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = DefaultFailureThreshold
	}
	cfg.OfflineCooldown = offline.EffectiveCooldown(cfg.OfflineCooldown)

	return &Engine{
		binding:     binding,
		off:         off,
		limiter:     limiter,
		pool:        pool,
		notify:      svc,
		logger:      logger,
		silent:      silent,
		cfg:         cfg,
		sleep:       Sleep,
		logDebounce: notify.NewDebouncer(),
	}
}

// SetHooks installs outcome hooks. Not safe to call concurrently with
// requests; wire hooks before serving traffic.
func (eng *Engine) SetHooks(h Hooks) { eng.hooks = h }

// SetSleep overrides the retry sleep, for tests.
func (eng *Engine) SetSleep(fn SleepFunc) {
	if fn != nil {
		eng.sleep = fn
	}
}

// Binding exposes the wrapped binding.
func (eng *Engine) Binding() Binding { return eng.binding }

// Offline exposes the breaker for introspection surfaces.
func (eng *Engine) Offline() *offline.State { return eng.off }

// Limiter exposes the pacing state for introspection surfaces.
func (eng *Engine) Limiter() *intervallimit.Limiter { return eng.limiter }

// Pool exposes the entity pool for introspection surfaces.
func (eng *Engine) Pool() *Pool { return eng.pool }

// RequestText performs a call with default attempts and backoff, returning
// the raw response text or "" on any failure.
func (eng *Engine) RequestText(ctx context.Context, operation, payload string) string {
	return eng.RequestTextWith(ctx, operation, payload, DefaultAttempts, DefaultRetryIntervalMs)
}

// RequestTextWith is RequestText with explicit attempt and backoff budgets.
func (eng *Engine) RequestTextWith(ctx context.Context, operation, payload string, attempts, retryIntervalMs int) string {
	e := eng.RequestEntityWith(ctx, operation, payload, attempts, retryIntervalMs)
	if e == nil {
		return ""
	}
	text := e.ResponseText
	eng.pool.Recycle(e)
	return text
}

// RequestEntity performs a call with default budgets. The returned entity is
// pooled: the caller must hand it back via Recycle when done. nil means the
// call failed.
func (eng *Engine) RequestEntity(ctx context.Context, operation, payload string) *CallEntity {
	return eng.RequestEntityWith(ctx, operation, payload, DefaultAttempts, DefaultRetryIntervalMs)
}

// RequestEntityWith is the full call loop.
func (eng *Engine) RequestEntityWith(ctx context.Context, operation, payload string, attempts, retryIntervalMs int) *CallEntity {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}

	wasOffline := eng.off.IsOffline()
	if eng.off.ShouldBlock() {
		eng.logger.Debug("call blocked, gateway offline", zap.String("operation", operation))
		return nil
	}
	if wasOffline {
		// This caller performed the auto-exit; the status line still says
		// offline.
		eng.notify.UpdateStatus("Gateway back online")
	}

	if !eng.binding.Loaded() {
		// One re-load per request; the host side may have come up since.
		if err := eng.binding.Load(); err != nil {
			eng.failed(&ClassifiedError{
				Category:  CategoryTransport,
				Message:   err.Error(),
				Operation: operation,
			})
			return nil
		}
	}

	e := eng.pool.Obtain(operation, payload)

	if eng.cfg.DebugCapture {
		eng.logger.Debug("gateway request",
			zap.String("operation", operation),
			zap.String("call_id", e.ID),
			zap.String("payload", CaptureRequest(payload)))
	}

	var last *ClassifiedError
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := eng.limiter.Enter(ctx, operation); err != nil {
			eng.pool.Recycle(e)
			return nil
		}

		invokeErr := eng.binding.Invoke(ctx, e)
		verdict := Classify(e, invokeErr)

		if eng.cfg.DebugCapture && e.HasResult {
			eng.logger.Debug("gateway response",
				zap.String("operation", operation),
				zap.String("call_id", e.ID),
				zap.String("category", verdict.Category.String()),
				zap.String("body", CaptureResponse(e.ResponseText)))
		}

		switch verdict.Category {
		case CategorySuccess:
			atomic.StoreInt64(&eng.failures, 0)
			if eng.hooks.OnSuccess != nil {
				eng.hooks.OnSuccess(operation)
			}
			return e

		case CategoryBusinessRetryable:
			eng.businessFailure(verdict)
			eng.pool.Recycle(e)
			return nil

		case CategoryAuthRequired:
			eng.authFailure(verdict)
			eng.pool.Recycle(e)
			return nil

		case CategoryDomainError:
			eng.logger.Debug("gateway returned domain error",
				zap.String("operation", operation),
				zap.String("code", verdict.Code),
				zap.String("message", verdict.Message))
			eng.failed(verdict)
			e.SetError()
			return e

		case CategoryNoResponse:
			if eng.logDebounce.TryAcquire("noresp:"+operation, 30*time.Second) {
				eng.logger.Warn("gateway returned no response", zap.String("operation", operation))
			}
			eng.failed(verdict)
			eng.pool.Recycle(e)
			return nil

		case CategoryTransport:
			last = verdict
			if attempt == attempts {
				break
			}
			delay := eng.binding.RetryDelay(attempt, retryIntervalMs)
			eng.logger.Debug("transport failure, retrying",
				zap.String("operation", operation),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.String("error", verdict.Message))
			if err := eng.sleep(ctx, delay); err != nil {
				eng.pool.Recycle(e)
				return nil
			}
			// Clear any partial delivery before the next attempt.
			e.ResponseText = ""
			e.ResponseObject = nil
			e.HasResult = false
			e.HasError = false
		}
	}

	eng.logger.Warn("call exhausted all attempts",
		zap.String("operation", operation),
		zap.Int("attempts", attempts),
		zap.String("error", last.Message))
	eng.failed(last)
	eng.pool.Recycle(e)
	return nil
}

// businessFailure feeds the breaker counter and notifies unless the
// operation is on the silent list. While already offline the cooldown is
// refreshed but notifications and re-auth stay quiet; alert storms during an
// outage help nobody.
func (eng *Engine) businessFailure(verdict *ClassifiedError) {
	eng.failed(verdict)
	if eng.silent.Contains(verdict.Operation) {
		return
	}

	wasOffline := eng.off.IsOffline()
	n := atomic.AddInt64(&eng.failures, 1)

	if !wasOffline {
		eng.notify.CallFailed(verdict.Operation, verdict.Message)
		// 1009 means the gateway is throttling this operation; a fresh
		// session would not help.
		if verdict.Code != OperationSuspendedCode {
			eng.notify.RequestReauth()
		}
	}

	if n >= int64(eng.cfg.FailureThreshold) {
		atomic.StoreInt64(&eng.failures, 0)
		eng.enterOffline("gateway_busy", verdict, wasOffline)
	}
}

// authFailure opens the breaker on the first occurrence, no threshold.
func (eng *Engine) authFailure(verdict *ClassifiedError) {
	eng.failed(verdict)
	wasOffline := eng.off.IsOffline()
	eng.enterOffline("auth_required", verdict, wasOffline)
	if !wasOffline {
		eng.notify.RequestReauth()
	}
}

func (eng *Engine) enterOffline(reason string, verdict *ClassifiedError, wasOffline bool) {
	detail := verdict.Message
	if verdict.Code != "" {
		detail = "code " + verdict.Code + ": " + detail
	}
	eng.off.EnterOffline(eng.cfg.OfflineCooldown, reason, detail)

	snap := eng.off.Snapshot()
	eng.logger.Warn("entering offline cooldown",
		zap.String("reason", reason),
		zap.String("detail", detail),
		zap.Time("until", snap.Until))
	// The status line follows every transition, refreshes included; only
	// the notification is gated on the edge.
	eng.notify.UpdateStatus("Gateway offline until " + snap.Until.Format(time.TimeOnly) + ": " + reason)
	if !wasOffline {
		eng.notify.OfflineEntered(reason, detail, snap.Until)
	}
}

func (eng *Engine) failed(verdict *ClassifiedError) {
	if eng.hooks.OnFailure != nil && verdict != nil {
		eng.hooks.OnFailure(verdict)
	}
}
