package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-secret"

func init() { gin.SetMode(gin.TestMode) }

func signToken(t *testing.T, secret, role string, ttl time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id":  "u-1",
		"username": "alice",
		"role":     role,
		"exp":      time.Now().Add(ttl).Unix(),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func protectedEngine() *gin.Engine {
	r := gin.New()
	r.GET("/p", JWTAuth(testSecret), RequireRole("owner", "staff"), func(c *gin.Context) {
		c.String(http.StatusOK, GetClaims(c).Username)
	})
	return r
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	r := protectedEngine()

	w := get(r, "/p", signToken(t, testSecret, "staff", time.Hour))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, get(r, "/p", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/p", signToken(t, "other-secret", "staff", time.Hour)).Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/p", signToken(t, testSecret, "staff", -time.Minute)).Code)
}

func TestRequireRole(t *testing.T) {
	r := protectedEngine()
	assert.Equal(t, http.StatusOK, get(r, "/p", signToken(t, testSecret, "owner", time.Hour)).Code)
	assert.Equal(t, http.StatusForbidden, get(r, "/p", signToken(t, testSecret, "guest", time.Hour)).Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := get(r, "/", "")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestRecoveryAndErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery(), ErrorHandler())
	r.GET("/panic", func(*gin.Context) { panic("boom") })
	r.GET("/err", func(c *gin.Context) { _ = c.Error(assert.AnError) })

	w := get(r, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")

	w = get(r, "/err", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}

func TestIPLimiter_Window(t *testing.T) {
	l := &ipLimiter{name: "test", limit: 2, window: time.Minute, clients: make(map[string]*windowCounter)}
	now := time.Now()

	ok, _ := l.allow("1.1.1.1", now)
	assert.True(t, ok)
	ok, _ = l.allow("1.1.1.1", now)
	assert.True(t, ok)
	ok, _ = l.allow("1.1.1.1", now)
	assert.False(t, ok)

	ok, _ = l.allow("2.2.2.2", now)
	assert.True(t, ok)

	ok, _ = l.allow("1.1.1.1", now.Add(2*time.Minute))
	assert.True(t, ok)
}

func TestCORS_Preflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestJWTAuth_RejectsOtherAlgorithmsAndSchemes(t *testing.T) {
	r := protectedEngine()

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"role": "owner",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/p", hs512).Code)

	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Authorization", "Basic "+signToken(t, testSecret, "owner", time.Hour))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
