package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consilium-ai/consilium-go/internal/config"
)

func newTestClient(serverURL string) *Client {
	return NewClient(&config.MarketDataConfig{ServiceURL: serverURL, Timeout: 5})
}

func TestRecentCloses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/closes/SPY", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"symbol":"SPY","closes":[100.5,101.2,102.0]}`))
	}))
	defer server.Close()

	closes, err := newTestClient(server.URL).RecentCloses(context.Background(), "SPY", 100)
	require.NoError(t, err)
	assert.Equal(t, []float64{100.5, 101.2, 102.0}, closes)
}

func TestRecentClosesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).RecentCloses(context.Background(), "SPY", 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestRecentClosesMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"symbol": "SPY", "closes": "oops"`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).RecentCloses(context.Background(), "SPY", 100)
	assert.Error(t, err)
}

func TestRecentClosesEmptySeries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"symbol":"SPY","closes":[]}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).RecentCloses(context.Background(), "SPY", 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no closes")
}
