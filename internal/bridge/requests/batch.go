package requests

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/gatelink/gatelink/internal/bridge"
)

// Call is one entry in a batch.
type Call struct {
	Operation string
	Payload   string

	// Attempts and RetryIntervalMs default to the engine defaults when zero
	// and DefaultRetryIntervalMs respectively.
	Attempts        int
	RetryIntervalMs int
}

// BatchResult pairs a call with its outcome. Text is "" when the call
// failed; per the engine contract there is no error to propagate.
type BatchResult struct {
	Call Call
	Text string
}

// Batch executes calls concurrently, at most limit in flight, and returns
// results in input order. A non-positive limit runs the calls sequentially.
// The per-operation interval limiter still applies inside the engine, so a
// batch of identical operations serializes there regardless of limit.
func (m *Manager) Batch(ctx context.Context, calls []Call, limit int) []BatchResult {
	results := make([]BatchResult, len(calls))
	if len(calls) == 0 {
		return results
	}
	if limit <= 0 {
		limit = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, call := range calls {
		g.Go(func() error {
			attempts := call.Attempts
			if attempts <= 0 {
				attempts = bridge.DefaultAttempts
			}
			retryInterval := call.RetryIntervalMs
			if retryInterval == 0 {
				retryInterval = bridge.DefaultRetryIntervalMs
			}
			results[i] = BatchResult{
				Call: call,
				Text: m.TextWith(gctx, call.Operation, call.Payload, attempts, retryInterval),
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
