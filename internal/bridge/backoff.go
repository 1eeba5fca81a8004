package bridge

import (
	"context"
	"math/rand"
	"time"
)

// jitterMaxMs bounds the random component added to every backoff base.
const jitterMaxMs = 400

// RetryBase computes the backoff base for a configured retry interval:
// max(retryIntervalMs, MinRetryBaseMs) plus jitter. Both generations build
// their delays from this.
func RetryBase(retryIntervalMs int) time.Duration {
	base := retryIntervalMs
	if base < MinRetryBaseMs {
		base = MinRetryBaseMs
	}
	return time.Duration(base+rand.Intn(jitterMaxMs)) * time.Millisecond
}

// LegacyRetryDelay doubles the base per completed attempt, capping both the
// shift count and the resulting delay. attempt is 1-based.
func LegacyRetryDelay(attempt int, retryIntervalMs int) time.Duration {
	d := RetryBase(retryIntervalMs)

	shift := attempt - 1
	if shift > 4 {
		shift = 4
	}
	d <<= shift

	if d > LegacyMaxDelay {
		d = LegacyMaxDelay
	}
	return d
}

// ModernRetryDelay is constant across attempts: negative selects the
// jittered default, zero disables the delay, positive is taken as-is.
func ModernRetryDelay(retryIntervalMs int) time.Duration {
	switch {
	case retryIntervalMs < 0:
		return RetryBase(DefaultRetryIntervalMs)
	case retryIntervalMs == 0:
		return 0
	default:
		return time.Duration(retryIntervalMs) * time.Millisecond
	}
}

// SleepFunc abstracts the retry sleep so tests can run without wall time.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
