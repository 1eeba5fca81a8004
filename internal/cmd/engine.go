package cmd

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/gatelink/gatelink/internal/bridge"
	"github.com/gatelink/gatelink/internal/bridge/gatewayv1"
	"github.com/gatelink/gatelink/internal/bridge/gatewayv2"
	"github.com/gatelink/gatelink/internal/bridge/intervallimit"
	"github.com/gatelink/gatelink/internal/bridge/offline"
	"github.com/gatelink/gatelink/internal/bridge/requests"
	"github.com/gatelink/gatelink/internal/config"
	"github.com/gatelink/gatelink/internal/hostlink"
	"github.com/gatelink/gatelink/internal/hostlink/httpfn"
	"github.com/gatelink/gatelink/internal/notify"
	"github.com/gatelink/gatelink/internal/observability"
)

// logNotifier surfaces engine notifications through the CLI logger. Embedding
// hosts replace this with a real UI notifier.
type logNotifier struct {
	logger interface {
		Info(msg string, fields ...zap.Field)
		Warn(msg string, fields ...zap.Field)
	}
}

func (n logNotifier) UpdateStatusText(text string) {
	n.logger.Info("status", zap.String("text", text))
}

func (n logNotifier) SendErrorNotification(title, body string) {
	n.logger.Warn("notification", zap.String("title", title), zap.String("body", body))
}

// logReauthTrigger records re-auth requests in the log. The CLI has no
// session to recover; embedding hosts install a real recovery hook instead.
type logReauthTrigger struct {
	logger *zap.Logger
}

func (t logReauthTrigger) TriggerReauth() {
	t.logger.Warn("session re-auth requested")
}

// newManager builds the full call stack from the loaded configuration:
// hostlink registry, binding, engine, and the request facade on top.
func newManager(logger *zap.Logger) (*requests.Manager, error) {
	cfg := config.Get()
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	reg := hostlink.Default
	if cfg.Gateway.URL != "" {
		if err := httpfn.Install(reg, httpfn.Config{
			BaseURL: cfg.Gateway.URL,
			Timeout: cfg.Gateway.CallTimeout,
		}); err != nil {
			return nil, fmt.Errorf("install gateway adapter: %w", err)
		}
	}

	var binding bridge.Binding
	switch strings.ToLower(strings.TrimSpace(cfg.Gateway.Generation)) {
	case "legacy":
		binding = gatewayv1.New(reg, logger)
	default:
		b := gatewayv2.New(reg, logger)
		if cfg.Gateway.CompletionWait > 0 {
			b.CompletionWait = cfg.Gateway.CompletionWait
		}
		binding = b
	}

	limiter := intervallimit.New()
	for op, interval := range cfg.Engine.Intervals {
		limiter.Update(op, interval)
	}

	pool := bridge.NewPool(cfg.Engine.PoolCap)
	if cfg.Engine.PoolWarm > 0 {
		pool.WarmUp(cfg.Engine.PoolWarm)
	}

	var opts []notify.Option
	if cfg.Notify.Enabled && observability.CLILogger != nil {
		opts = append(opts, notify.WithNotifier(logNotifier{logger: observability.CLILogger}))
	}
	if cfg.Notify.AutoReauth {
		opts = append(opts, notify.WithReauthTrigger(logReauthTrigger{logger: logger}))
	}
	svc := notify.NewService(logger, opts...)

	eng := bridge.NewEngine(binding, offline.New(), limiter, pool, svc, logger,
		bridge.NewSilentOperations(cfg.Engine.SilentOperations...),
		bridge.EngineConfig{
			FailureThreshold: cfg.Engine.FailureThreshold,
			OfflineCooldown:  cfg.Engine.OfflineCooldown,
			DebugCapture:     cfg.Debug.Enabled,
		})

	return requests.NewManager(eng, logger), nil
}
