package bridge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCaptureRequestTruncates(t *testing.T) {
	long := strings.Repeat("a", 2000)
	got := CaptureRequest(long)
	require.Len(t, got, captureRequestMax)
}

func TestCaptureResponseTruncates(t *testing.T) {
	long := strings.Repeat("b", 10000)
	got := CaptureResponse(long)
	require.Len(t, got, captureResponseMax)
}

func TestCaptureKeepsShortPayloadsIntact(t *testing.T) {
	require.Equal(t, `{"a":1}`, CaptureRequest(`{"a":1}`))
	require.Equal(t, `{"b":2}`, CaptureResponse(`{"b":2}`))
}

func TestCaptureFlattensNewlines(t *testing.T) {
	require.Equal(t, "a b", CaptureRequest("a\nb\n"))
}
