package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	err error
}

func (s *stubChecker) HealthCheck(ctx context.Context) error { return s.err }

func healthRouter(h *HealthHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", h.Health)
	return r
}

func TestHealthAllBackendsHealthy(t *testing.T) {
	h := NewHealthHandler(&stubChecker{}, &stubChecker{})

	w := httptest.NewRecorder()
	healthRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "healthy", resp.Services["database"])
	assert.Equal(t, "healthy", resp.Services["redis"])
	assert.NotEmpty(t, resp.Uptime)
}

func TestHealthDisabledBackendsAreNotFailures(t *testing.T) {
	h := NewHealthHandler(nil, nil)

	w := httptest.NewRecorder()
	healthRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "disabled", resp.Services["database"])
}

func TestHealthUnhealthyBackendDegradesStatus(t *testing.T) {
	h := NewHealthHandler(&stubChecker{err: errors.New("connection refused")}, nil)

	w := httptest.NewRecorder()
	healthRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Contains(t, resp.Services["database"], "unhealthy")
}
