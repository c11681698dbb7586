package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthRouter(am *AuthMiddleware) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", am.RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"client_id": c.GetString("client_id")})
	})
	return r
}

func TestRequireAuthValidToken(t *testing.T) {
	am := NewAuthMiddleware("test-secret")
	token, err := am.GenerateToken("analyst-1", time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	setupAuthRouter(am).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "analyst-1")
}

func TestRequireAuthMissingHeader(t *testing.T) {
	am := NewAuthMiddleware("test-secret")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	setupAuthRouter(am).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Authorization header required")
}

func TestRequireAuthMalformedHeader(t *testing.T) {
	am := NewAuthMiddleware("test-secret")

	for _, header := range []string{"Bearer", "Basic abc", "Bearer "} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", header)
		setupAuthRouter(am).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
}

func TestRequireAuthExpiredToken(t *testing.T) {
	am := NewAuthMiddleware("test-secret")
	token, err := am.GenerateToken("analyst-1", -time.Minute)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	setupAuthRouter(am).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Token expired")
}

func TestRequireAuthWrongSecret(t *testing.T) {
	other := NewAuthMiddleware("other-secret")
	token, err := other.GenerateToken("analyst-1", time.Hour)
	require.NoError(t, err)

	am := NewAuthMiddleware("test-secret")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	setupAuthRouter(am).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid token")
}

func TestValidateTokenRoundTrip(t *testing.T) {
	am := NewAuthMiddleware("test-secret")
	token, err := am.GenerateToken("analyst-1", time.Hour)
	require.NoError(t, err)

	claims, err := am.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "analyst-1", claims.ClientID)
}

func TestRequireAuthBearerPrefixCaseInsensitive(t *testing.T) {
	am := NewAuthMiddleware("test-secret")
	token, err := am.GenerateToken("analyst-1", time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "bearer "+token)
	setupAuthRouter(am).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
