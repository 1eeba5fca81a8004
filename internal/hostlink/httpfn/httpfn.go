// Package httpfn registers hostlink symbols backed by an HTTP gateway. It
// exists for the diagnostic CLI: with a gateway URL configured, the full
// engine can be exercised end to end without an embedding host.
package httpfn

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gatelink/gatelink/internal/hostlink"
)

// Config selects the gateway endpoint and client behavior.
type Config struct {
	// BaseURL receives POSTed calls. Empty disables registration.
	BaseURL string

	// Timeout bounds a single HTTP exchange.
	Timeout time.Duration
}

type callBody struct {
	Operation string `json:"operation"`
	Payload   string `json:"payload"`
}

// Install registers synchronous, async, and version symbols on the registry,
// all backed by the configured endpoint. Returns an error when the config is
// unusable.
func Install(reg *hostlink.Registry, cfg Config) error {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return fmt.Errorf("httpfn: base URL required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := &http.Client{Timeout: timeout}

	call := func(ctx context.Context, operation, payload string) (string, error) {
		body, err := json.Marshal(callBody{Operation: operation, Payload: payload})
		if err != nil {
			return "", fmt.Errorf("httpfn: encode request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/call", bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("httpfn: build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return "", fmt.Errorf("httpfn: %w", err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("httpfn: read response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("httpfn: gateway returned %d", resp.StatusCode)
		}
		return string(raw), nil
	}

	reg.RegisterInvoke(hostlink.SymbolInvoke, call)

	reg.RegisterInvokeAsync(hostlink.SymbolInvokeAsync, func(ctx context.Context, operation, payload string, complete func(string, error)) error {
		go func() {
			complete(call(ctx, operation, payload))
		}()
		return nil
	})

	reg.RegisterVersion(func() string {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/version", nil)
		if err != nil {
			return ""
		}
		resp, err := client.Do(req)
		if err != nil {
			return ""
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return ""
		}
		raw, err := io.ReadAll(io.LimitReader(resp.Body, 256))
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(raw))
	})

	return nil
}
