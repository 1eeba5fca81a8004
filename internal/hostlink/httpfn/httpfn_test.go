package httpfn

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gatelink/gatelink/internal/hostlink"
)

func newGatewayStub(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/call", func(w http.ResponseWriter, r *http.Request) {
		var body callBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"echo":"` + body.Operation + `"}`))
	})
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("gw-test\n"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestInstallRequiresBaseURL(t *testing.T) {
	var reg hostlink.Registry
	require.Error(t, Install(&reg, Config{}))
}

func TestSyncCallRoundTrip(t *testing.T) {
	srv := newGatewayStub(t)

	var reg hostlink.Registry
	require.NoError(t, Install(&reg, Config{BaseURL: srv.URL}))

	fn, err := reg.ResolveInvoke(hostlink.SymbolInvoke)
	require.NoError(t, err)

	resp, err := fn(context.Background(), "query", "{}")
	require.NoError(t, err)
	require.JSONEq(t, `{"echo":"query"}`, resp)
}

func TestAsyncCallDeliversThroughCallback(t *testing.T) {
	srv := newGatewayStub(t)

	var reg hostlink.Registry
	require.NoError(t, Install(&reg, Config{BaseURL: srv.URL}))

	fn, err := reg.ResolveInvokeAsync(hostlink.SymbolInvokeAsync)
	require.NoError(t, err)

	done := make(chan string, 1)
	require.NoError(t, fn(context.Background(), "query", "{}", func(resp string, err error) {
		require.NoError(t, err)
		done <- resp
	}))

	select {
	case resp := <-done:
		require.JSONEq(t, `{"echo":"query"}`, resp)
	case <-time.After(5 * time.Second):
		t.Fatal("callback never fired")
	}
}

func TestVersionReporter(t *testing.T) {
	srv := newGatewayStub(t)

	var reg hostlink.Registry
	require.NoError(t, Install(&reg, Config{BaseURL: srv.URL}))
	require.Equal(t, "gw-test", reg.Version())
}
