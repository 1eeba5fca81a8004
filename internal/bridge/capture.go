package bridge

import "strings"

// Debug capture caps. Request payloads and responses are truncated before
// they reach log lines so a single verbose call cannot flood the sink.
const (
	captureRequestMax  = 1024
	captureResponseMax = 4096
)

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// CaptureRequest returns the loggable form of a request payload.
func CaptureRequest(payload string) string {
	return truncate(safeOneLine(payload), captureRequestMax)
}

// CaptureResponse returns the loggable form of a raw response.
func CaptureResponse(text string) string {
	return truncate(safeOneLine(text), captureResponseMax)
}

func safeOneLine(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
}
