package gatewayv2

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gatelink/gatelink/internal/bridge"
	"github.com/gatelink/gatelink/internal/hostlink"
)

func registryWithAsync(fn hostlink.AsyncFunc) *hostlink.Registry {
	reg := &hostlink.Registry{}
	reg.RegisterInvokeAsync(hostlink.SymbolInvokeAsync, fn)
	return reg
}

func TestLoadFailsWithoutHostSymbol(t *testing.T) {
	b := New(&hostlink.Registry{}, nil)
	require.ErrorIs(t, b.Load(), bridge.ErrBindingUnavailable)
}

func TestCallbackDeliversResult(t *testing.T) {
	reg := registryWithAsync(func(ctx context.Context, operation, payload string, complete func(string, error)) error {
		go complete(`{"value":7}`, nil)
		return nil
	})

	b := New(reg, nil)
	require.NoError(t, b.Load())

	e := bridge.NewCallEntity("query", "{}")
	require.NoError(t, b.Invoke(context.Background(), e))
	require.True(t, e.HasResult)
	require.Equal(t, float64(7), e.ResponseObject["value"])
}

func TestDuplicateCompletionsAreDropped(t *testing.T) {
	reg := registryWithAsync(func(ctx context.Context, operation, payload string, complete func(string, error)) error {
		// A misbehaving host completing twice must not block or panic.
		complete(`{"first":true}`, nil)
		complete(`{"second":true}`, nil)
		return nil
	})

	b := New(reg, nil)
	require.NoError(t, b.Load())

	e := bridge.NewCallEntity("query", "{}")
	require.NoError(t, b.Invoke(context.Background(), e))
	require.Contains(t, e.ResponseObject, "first")
}

func TestCompletionErrorWithoutResponseIsTransport(t *testing.T) {
	reg := registryWithAsync(func(ctx context.Context, operation, payload string, complete func(string, error)) error {
		go complete("", errors.New("gateway hiccup"))
		return nil
	})

	b := New(reg, nil)
	require.NoError(t, b.Load())

	e := bridge.NewCallEntity("query", "{}")
	err := b.Invoke(context.Background(), e)
	require.EqualError(t, err, "gateway hiccup")
	require.False(t, e.HasResult)
}

func TestCompletionErrorWithResponseMarksEntity(t *testing.T) {
	reg := registryWithAsync(func(ctx context.Context, operation, payload string, complete func(string, error)) error {
		go complete(`{"error":"1004","errorMessage":"busy"}`, errors.New("call failed"))
		return nil
	})

	b := New(reg, nil)
	require.NoError(t, b.Load())

	e := bridge.NewCallEntity("query", "{}")
	require.NoError(t, b.Invoke(context.Background(), e))
	require.True(t, e.HasResult)
	require.True(t, e.HasError)
}

func TestBoundedWaitLeavesEntityUnpopulated(t *testing.T) {
	reg := registryWithAsync(func(ctx context.Context, operation, payload string, complete func(string, error)) error {
		// Never completes.
		return nil
	})

	b := New(reg, nil)
	b.CompletionWait = 20 * time.Millisecond
	require.NoError(t, b.Load())

	e := bridge.NewCallEntity("query", "{}")
	require.NoError(t, b.Invoke(context.Background(), e))
	require.False(t, e.HasResult)
	require.False(t, e.HasError)
}

func TestInvokeHonorsContextCancellation(t *testing.T) {
	reg := registryWithAsync(func(ctx context.Context, operation, payload string, complete func(string, error)) error {
		return nil
	})

	b := New(reg, nil)
	require.NoError(t, b.Load())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := b.Invoke(ctx, bridge.NewCallEntity("query", "{}"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestDispatchFailureSurfacedDirectly(t *testing.T) {
	reg := registryWithAsync(func(ctx context.Context, operation, payload string, complete func(string, error)) error {
		return errors.New("dispatch refused")
	})

	b := New(reg, nil)
	require.NoError(t, b.Load())

	err := b.Invoke(context.Background(), bridge.NewCallEntity("query", "{}"))
	require.EqualError(t, err, "dispatch refused")
}

func TestRetryDelayConstant(t *testing.T) {
	b := New(&hostlink.Registry{}, nil)

	require.Equal(t, 1200*time.Millisecond, b.RetryDelay(1, 1200))
	require.Equal(t, 1200*time.Millisecond, b.RetryDelay(5, 1200))
	require.Equal(t, time.Duration(0), b.RetryDelay(2, 0))
	require.GreaterOrEqual(t, b.RetryDelay(1, -1), 600*time.Millisecond)
}

func TestGeneration(t *testing.T) {
	require.Equal(t, bridge.GenerationModern, New(nil, nil).Generation())
}
