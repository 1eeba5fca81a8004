package gatewayv1

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gatelink/gatelink/internal/bridge"
	"github.com/gatelink/gatelink/internal/hostlink"
)

func TestLoadFailsWithoutHostSymbol(t *testing.T) {
	b := New(&hostlink.Registry{}, nil)

	err := b.Load()
	require.ErrorIs(t, err, bridge.ErrBindingUnavailable)
	require.False(t, b.Loaded())
}

func TestLoadResolvesAndInvokes(t *testing.T) {
	reg := &hostlink.Registry{}
	reg.RegisterInvoke(hostlink.SymbolInvoke, func(ctx context.Context, operation, payload string) (string, error) {
		return `{"echo":"` + operation + `"}`, nil
	})

	b := New(reg, nil)
	require.NoError(t, b.Load())
	require.True(t, b.Loaded())

	e := bridge.NewCallEntity("query", "{}")
	require.NoError(t, b.Invoke(context.Background(), e))
	require.True(t, e.HasResult)
	require.Equal(t, "query", e.ResponseObject["echo"])
}

func TestInvokeSurfacesHostError(t *testing.T) {
	reg := &hostlink.Registry{}
	reg.RegisterInvoke(hostlink.SymbolInvoke, func(ctx context.Context, operation, payload string) (string, error) {
		return "", errors.New("host exploded")
	})

	b := New(reg, nil)
	require.NoError(t, b.Load())

	e := bridge.NewCallEntity("query", "{}")
	err := b.Invoke(context.Background(), e)
	require.EqualError(t, err, "host exploded")
	require.False(t, e.HasResult)
}

func TestUnloadDropsSymbol(t *testing.T) {
	reg := &hostlink.Registry{}
	reg.RegisterInvoke(hostlink.SymbolInvoke, func(ctx context.Context, operation, payload string) (string, error) {
		return "{}", nil
	})

	b := New(reg, nil)
	require.NoError(t, b.Load())
	b.Unload()
	require.False(t, b.Loaded())

	err := b.Invoke(context.Background(), bridge.NewCallEntity("query", "{}"))
	require.ErrorIs(t, err, bridge.ErrBindingUnavailable)
}

func TestRetryDelayDoubles(t *testing.T) {
	b := New(&hostlink.Registry{}, nil)

	d1 := b.RetryDelay(1, 1000)
	d2 := b.RetryDelay(2, 1000)
	require.GreaterOrEqual(t, d2, d1)
	require.LessOrEqual(t, b.RetryDelay(8, 1000), bridge.LegacyMaxDelay)
}

func TestVersionFallsBackToGeneration(t *testing.T) {
	b := New(&hostlink.Registry{}, nil)
	require.Equal(t, string(bridge.GenerationLegacy), b.Version())

	reg := &hostlink.Registry{}
	reg.RegisterVersion(func() string { return "gw-3.1" })
	require.Equal(t, "gw-3.1", New(reg, nil).Version())
}

func TestGeneration(t *testing.T) {
	require.Equal(t, bridge.GenerationLegacy, New(nil, nil).Generation())
}
