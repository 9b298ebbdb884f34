package network

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"stockpulse/src/logger"
	"stockpulse/src/models"
)

// -----------------------------------------------------------------------------

func newTestManager() *NetworkManager {
	cfg := &models.MConfig{
		LogLevel: "ERROR",
		Network: models.MNetworkConfig{
			RequestTimeout: 5,
			UserAgent:      "StockPulse/1.0",
		},
	}
	return NewNetworkManager(cfg, logger.NewLogger(cfg.LogLevel, "NetworkManager"))
}

// -----------------------------------------------------------------------------

func TestGet_AppendsQueryParamsAndUserAgent(t *testing.T) {
	var gotQuery map[string][]string
	var gotUserAgent string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotUserAgent = r.Header.Get("User-Agent")
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	nm := newTestManager()
	body, err := nm.Get(t.Context(), srv.URL, map[string]string{
		"function": "GLOBAL_QUOTE",
		"symbol":   "AAPL",
	})
	require.NoError(t, err)
	require.JSONEq(t, `{"ok": true}`, string(body))
	require.Equal(t, []string{"GLOBAL_QUOTE"}, gotQuery["function"])
	require.Equal(t, []string{"AAPL"}, gotQuery["symbol"])
	require.Equal(t, "StockPulse/1.0", gotUserAgent)
}

func TestGet_NonOKStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	nm := newTestManager()
	_, err := nm.Get(t.Context(), srv.URL, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "503")
}

func TestGet_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	nm := newTestManager()
	_, err := nm.Get(t.Context(), srv.URL, nil)
	require.Error(t, err)
}
