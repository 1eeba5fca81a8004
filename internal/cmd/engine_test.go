package cmd

import (
	"context"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gatelink/gatelink/internal/config"
	"github.com/gatelink/gatelink/internal/hostlink"
)

func loadTestConfig(t *testing.T, overrides map[string]any) {
	t.Helper()
	v := viper.New()
	config.SetDefaults(v)
	for key, value := range overrides {
		v.Set(key, value)
	}
	_, err := config.Load(v)
	require.NoError(t, err)
}

// registerAuthFailingGateway installs a host symbol whose every call comes
// back as a dead session.
func registerAuthFailingGateway(t *testing.T) {
	t.Helper()
	hostlink.Default.RegisterInvokeAsync(hostlink.SymbolInvokeAsync,
		func(ctx context.Context, operation, payload string, complete func(string, error)) error {
			complete(`{"error":"401","errorMessage":"login timeout"}`, nil)
			return nil
		})
	t.Cleanup(func() { hostlink.Default.Unregister(hostlink.SymbolInvokeAsync) })
}

func TestNewManagerTriggersReauthWhenEnabled(t *testing.T) {
	loadTestConfig(t, map[string]any{"notify.auto_reauth": true})
	registerAuthFailingGateway(t)

	core, logs := observer.New(zapcore.DebugLevel)
	mgr, err := newManager(zap.New(core))
	require.NoError(t, err)

	require.Empty(t, mgr.Text(context.Background(), "query.balance", "{}"))
	require.Equal(t, 1, logs.FilterMessage("session re-auth requested").Len())
}

func TestNewManagerLeavesReauthOffByDefault(t *testing.T) {
	loadTestConfig(t, nil)
	registerAuthFailingGateway(t)

	core, logs := observer.New(zapcore.DebugLevel)
	mgr, err := newManager(zap.New(core))
	require.NoError(t, err)

	require.Empty(t, mgr.Text(context.Background(), "query.balance", "{}"))
	require.Zero(t, logs.FilterMessage("session re-auth requested").Len())
}
