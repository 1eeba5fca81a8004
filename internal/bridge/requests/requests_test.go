package requests

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gatelink/gatelink/internal/bridge"
	"github.com/gatelink/gatelink/internal/bridge/intervallimit"
	"github.com/gatelink/gatelink/internal/bridge/offline"
)

// scriptBinding answers each operation from a fixed table.
type scriptBinding struct {
	mu        sync.Mutex
	responses map[string]string
	calls     map[string]int
}

func newScriptBinding() *scriptBinding {
	return &scriptBinding{
		responses: make(map[string]string),
		calls:     make(map[string]int),
	}
}

func (s *scriptBinding) respond(operation, body string) {
	s.mu.Lock()
	s.responses[operation] = body
	s.mu.Unlock()
}

func (s *scriptBinding) callCount(operation string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[operation]
}

func (s *scriptBinding) Generation() bridge.Generation { return bridge.GenerationModern }
func (s *scriptBinding) Version() string               { return "script" }
func (s *scriptBinding) Load() error                   { return nil }
func (s *scriptBinding) Unload()                       {}
func (s *scriptBinding) Loaded() bool                  { return true }

func (s *scriptBinding) Invoke(ctx context.Context, e *bridge.CallEntity) error {
	s.mu.Lock()
	s.calls[e.Operation]++
	body, ok := s.responses[e.Operation]
	s.mu.Unlock()
	if !ok {
		body = `{"ok":true}`
	}
	e.SetResponse(body)
	return nil
}

func (s *scriptBinding) RetryDelay(attempt, retryIntervalMs int) time.Duration {
	return time.Millisecond
}

type managerRig struct {
	m       *Manager
	binding *scriptBinding
	mu      sync.Mutex
	now     time.Time
}

func (r *managerRig) Now() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.now
}

func (r *managerRig) Advance(d time.Duration) {
	r.mu.Lock()
	r.now = r.now.Add(d)
	r.mu.Unlock()
}

func newManagerRig(t *testing.T) *managerRig {
	t.Helper()
	rig := &managerRig{binding: newScriptBinding(), now: time.UnixMilli(1000)}

	off := offline.New()
	off.Clock = rig.Now

	limiter := intervallimit.New()
	limiter.Clock = rig.Now
	limiter.Sleep = func(ctx context.Context, d time.Duration) error {
		rig.Advance(d)
		return ctx.Err()
	}

	eng := bridge.NewEngine(rig.binding, off, limiter, bridge.NewPool(0), nil, zap.NewNop(), nil,
		bridge.EngineConfig{FailureThreshold: 99})
	eng.SetSleep(func(ctx context.Context, d time.Duration) error {
		rig.Advance(d)
		return ctx.Err()
	})

	rig.m = NewManager(eng, zap.NewNop())
	rig.m.Clock = rig.Now
	return rig
}

func TestTextReturnsResponse(t *testing.T) {
	rig := newManagerRig(t)
	rig.binding.respond("query", `{"value":1}`)

	text := rig.m.Text(context.Background(), "query", "{}")
	require.JSONEq(t, `{"value":1}`, text)
}

func TestThrottledCodeSuspendsOperation(t *testing.T) {
	rig := newManagerRig(t)
	rig.binding.respond("query", `{"error":"1009","errorMessage":"operation throttled"}`)

	require.Empty(t, rig.m.Text(context.Background(), "query", "{}"))
	require.Equal(t, 1, rig.binding.callCount("query"))

	// Parked: the binding is not touched again.
	require.Empty(t, rig.m.Text(context.Background(), "query", "{}"))
	require.Equal(t, 1, rig.binding.callCount("query"))

	suspended := rig.m.Suspended()
	require.Contains(t, suspended, "query")

	// Other operations are unaffected.
	rig.binding.respond("other", `{"v":2}`)
	require.NotEmpty(t, rig.m.Text(context.Background(), "other", "{}"))
}

func TestSuspensionExpires(t *testing.T) {
	rig := newManagerRig(t)
	rig.binding.respond("query", `{"error":"1009","errorMessage":"operation throttled"}`)

	require.Empty(t, rig.m.Text(context.Background(), "query", "{}"))

	rig.binding.respond("query", `{"v":3}`)
	rig.Advance(SuspendDuration + time.Second)

	require.NotEmpty(t, rig.m.Text(context.Background(), "query", "{}"))
	require.Empty(t, rig.m.Suspended())
}

func TestStatsAccounting(t *testing.T) {
	rig := newManagerRig(t)
	rig.binding.respond("good", `{"v":1}`)
	rig.binding.respond("bad", `{"error":"2000","errorMessage":"busy"}`)

	ctx := context.Background()
	rig.m.Text(ctx, "good", "{}")
	rig.m.Text(ctx, "good", "{}")
	rig.m.Text(ctx, "bad", "{}")

	stats := rig.m.Stats()
	require.Len(t, stats, 2)
	require.Equal(t, "bad", stats[0].Operation)
	require.Equal(t, int64(1), stats[0].Failures)
	require.Contains(t, stats[0].LastError, "2000")
	require.Equal(t, "good", stats[1].Operation)
	require.Equal(t, int64(2), stats[1].Successes)
}

func TestCachedTextCollapsesRepeatReads(t *testing.T) {
	rig := newManagerRig(t)
	rig.binding.respond("read", `{"v":1}`)

	ctx := context.Background()
	require.NotEmpty(t, rig.m.CachedText(ctx, "read", "{}"))
	require.NotEmpty(t, rig.m.CachedText(ctx, "read", "{}"))
	require.Equal(t, 1, rig.binding.callCount("read"))

	// TTL expiry reaches the binding again.
	rig.Advance(defaultCacheTTL + time.Second)
	require.NotEmpty(t, rig.m.CachedText(ctx, "read", "{}"))
	require.Equal(t, 2, rig.binding.callCount("read"))
}

func TestCachedTextDoesNotCacheFailures(t *testing.T) {
	rig := newManagerRig(t)
	rig.binding.respond("read", `{"error":"2000","errorMessage":"busy"}`)

	ctx := context.Background()
	require.Empty(t, rig.m.CachedText(ctx, "read", "{}"))
	require.Empty(t, rig.m.CachedText(ctx, "read", "{}"))
	require.Equal(t, 2, rig.binding.callCount("read"))
}

func TestDomainErrorResponseIsDeliveredButNotCached(t *testing.T) {
	rig := newManagerRig(t)
	rig.binding.respond("order.submit", `{"resultCode":"INSUFFICIENT_FUNDS","errorMessage":"insufficient funds"}`)

	ctx := context.Background()
	require.Contains(t, rig.m.Text(ctx, "order.submit", "{}"), "INSUFFICIENT_FUNDS")

	// The caller sees the gateway's answer, but error responses never enter
	// the cache.
	require.Contains(t, rig.m.CachedText(ctx, "order.submit", "{}"), "INSUFFICIENT_FUNDS")
	require.Contains(t, rig.m.CachedText(ctx, "order.submit", "{}"), "INSUFFICIENT_FUNDS")
	require.Equal(t, 3, rig.binding.callCount("order.submit"))

	stats := rig.m.Stats()
	require.Len(t, stats, 1)
	require.Equal(t, int64(3), stats[0].Failures)
	require.Contains(t, stats[0].LastError, "INSUFFICIENT_FUNDS")
}

func TestBatchPreservesOrder(t *testing.T) {
	rig := newManagerRig(t)
	rig.binding.respond("a", `{"op":"a"}`)
	rig.binding.respond("b", `{"op":"b"}`)
	rig.binding.respond("c", `{"op":"c"}`)

	calls := []Call{
		{Operation: "a", Payload: "{}"},
		{Operation: "b", Payload: "{}"},
		{Operation: "c", Payload: "{}"},
	}
	results := rig.m.Batch(context.Background(), calls, 2)

	require.Len(t, results, 3)
	require.JSONEq(t, `{"op":"a"}`, results[0].Text)
	require.JSONEq(t, `{"op":"b"}`, results[1].Text)
	require.JSONEq(t, `{"op":"c"}`, results[2].Text)
}

func TestBatchEmptyInput(t *testing.T) {
	rig := newManagerRig(t)
	require.Empty(t, rig.m.Batch(context.Background(), nil, 4))
}

func TestEntityRoundTrip(t *testing.T) {
	rig := newManagerRig(t)
	rig.binding.respond("query", `{"v":9}`)

	e := rig.m.Entity(context.Background(), "query", "{}")
	require.NotNil(t, e)
	require.Equal(t, float64(9), e.ResponseObject["v"])
	rig.m.Recycle(e)
}
