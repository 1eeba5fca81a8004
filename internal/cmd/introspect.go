package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gatelink/gatelink/internal/config"
	"github.com/gatelink/gatelink/internal/output"
)

var introspectServer string

// serverBase resolves the introspection server base URL from the flag or the
// loaded configuration.
func serverBase() string {
	base := strings.TrimSpace(introspectServer)
	if base == "" {
		cfg := config.Get()
		host := "localhost"
		port := 8080
		if cfg != nil {
			if cfg.Server.Host != "" {
				host = cfg.Server.Host
			}
			if cfg.Server.Port != 0 {
				port = cfg.Server.Port
			}
		}
		base = fmt.Sprintf("http://%s:%d", host, port)
	}
	return strings.TrimRight(base, "/")
}

var introspectClient = &http.Client{Timeout: 10 * time.Second}

// fetchServerJSON GETs one introspection endpoint and decodes the body.
func fetchServerJSON(ctx context.Context, path string, v any) error {
	url := serverBase() + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := introspectClient.Do(req)
	if err != nil {
		return fmt.Errorf("query %s: %w (is the server running?)", url, err)
	}
	defer resp.Body.Close() // nolint:errcheck // read-only body

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("query %s: unexpected status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// printStructured fetches one introspection endpoint and re-renders the raw
// response as JSON or YAML, preserving wire field names.
func printStructured(cmd *cobra.Command, path string, format output.Format) error {
	var raw map[string]any
	if err := fetchServerJSON(cmd.Context(), path, &raw); err != nil {
		return err
	}
	rendered, err := output.RenderStructured(format, raw)
	if err != nil {
		return err
	}
	fmt.Println(rendered)
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&introspectServer, "server", "", "introspection server base URL (default from config)")
}
