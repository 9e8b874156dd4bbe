package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	a := New("secret", time.Hour, 4) // low cost to keep the test fast

	hash, err := a.HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	assert.True(t, a.CheckPassword("secret1", hash))
	assert.False(t, a.CheckPassword("wrong", hash))
}

func TestTokenRoundTrip(t *testing.T) {
	a := New("secret", time.Hour, 4)

	token, err := a.GenerateToken("user-1", "ann@example.com")
	require.NoError(t, err)

	claims, err := a.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "ann@example.com", claims.Email)
}

func TestTokenExpired(t *testing.T) {
	a := New("secret", -time.Minute, 4)

	token, err := a.GenerateToken("user-1", "ann@example.com")
	require.NoError(t, err)

	_, err = a.ParseToken(token)
	assert.Error(t, err)
}

func TestTokenWrongSecret(t *testing.T) {
	a := New("secret", time.Hour, 4)
	b := New("other-secret", time.Hour, 4)

	token, err := a.GenerateToken("user-1", "ann@example.com")
	require.NoError(t, err)

	_, err = b.ParseToken(token)
	assert.Error(t, err)
}

func middlewareRouter(a *Auth) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", a.Middleware(), func(c *gin.Context) {
		claims := Identity(c)
		c.JSON(http.StatusOK, gin.H{"userId": claims.UserID})
	})
	return router
}

func TestMiddlewareMissingToken(t *testing.T) {
	router := middlewareRouter(New("secret", time.Hour, 4))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "not-a-bearer-header")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMiddlewareInvalidToken(t *testing.T) {
	router := middlewareRouter(New("secret", time.Hour, 4))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMiddlewareValidToken(t *testing.T) {
	a := New("secret", time.Hour, 4)
	router := middlewareRouter(a)

	token, err := a.GenerateToken("user-1", "ann@example.com")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-1")
}
