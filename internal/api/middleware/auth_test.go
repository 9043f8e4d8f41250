package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dating-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, userID uint) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func newTestRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id")})
	})
	return r
}

func TestRequireAuthAcceptsBearerToken(t *testing.T) {
	auth := services.NewAuthService(nil, testSecret, time.Hour)
	r := newTestRouter(NewAuthMiddleware(auth).RequireAuth())

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, 42))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"42"`)
}

func TestRequireAuthRejectsMissingHeader(t *testing.T) {
	auth := services.NewAuthService(nil, testSecret, time.Hour)
	r := newTestRouter(NewAuthMiddleware(auth).RequireAuth())

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthRejectsForgedToken(t *testing.T) {
	auth := services.NewAuthService(nil, testSecret, time.Hour)
	r := newTestRouter(NewAuthMiddleware(auth).RequireAuth())

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "other-secret", 42))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWSAuthReadsQueryToken(t *testing.T) {
	auth := services.NewAuthService(nil, testSecret, time.Hour)
	r := newTestRouter(NewAuthMiddleware(auth).WSAuth())

	req := httptest.NewRequest(http.MethodGet, "/protected?token="+signToken(t, testSecret, 7), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"7"`)
}

func TestWSAuthRejectsMissingToken(t *testing.T) {
	auth := services.NewAuthService(nil, testSecret, time.Hour)
	r := newTestRouter(NewAuthMiddleware(auth).WSAuth())

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
