package bridge

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRetryBaseFloorsSmallIntervals(t *testing.T) {
	for i := 0; i < 50; i++ {
		d := RetryBase(100)
		require.GreaterOrEqual(t, d, 600*time.Millisecond)
		require.Less(t, d, time.Duration(600+jitterMaxMs)*time.Millisecond)
	}
}

func TestRetryBaseUsesExplicitInterval(t *testing.T) {
	for i := 0; i < 50; i++ {
		d := RetryBase(2000)
		require.GreaterOrEqual(t, d, 2*time.Second)
		require.Less(t, d, time.Duration(2000+jitterMaxMs)*time.Millisecond)
	}
}

func TestLegacyRetryDelayDoublesPerAttempt(t *testing.T) {
	d1 := LegacyRetryDelay(1, 1000)
	d2 := LegacyRetryDelay(2, 1000)
	d3 := LegacyRetryDelay(3, 1000)

	require.GreaterOrEqual(t, d1, time.Second)
	require.GreaterOrEqual(t, d2, 2*time.Second)
	require.GreaterOrEqual(t, d3, 4*time.Second)
}

func TestLegacyRetryDelayCapped(t *testing.T) {
	for attempt := 1; attempt <= 10; attempt++ {
		require.LessOrEqual(t, LegacyRetryDelay(attempt, 14000), LegacyMaxDelay)
	}
}

func TestModernRetryDelaySemantics(t *testing.T) {
	// Negative selects the jittered default.
	d := ModernRetryDelay(-1)
	require.GreaterOrEqual(t, d, 600*time.Millisecond)

	// Zero disables the delay.
	require.Equal(t, time.Duration(0), ModernRetryDelay(0))

	// Positive is explicit.
	require.Equal(t, 1200*time.Millisecond, ModernRetryDelay(1200))
}

func TestSleepReturnsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Sleep(ctx, time.Hour)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSleepZeroIsImmediate(t *testing.T) {
	require.NoError(t, Sleep(context.Background(), 0))
}
