package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newCommonRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(mw)
	router.POST("/api/v1/transactions/:id/update", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
	})
	return router
}

func serve(router *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCORS_AllowedOrigin(t *testing.T) {
	cfg := CORSConfig{
		AllowOrigins:     []string{"https://dashboard.example.com"},
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           time.Hour,
	}
	router := newCommonRouter(CORSWithConfig(cfg))

	w := serve(router, http.MethodPost, "/api/v1/transactions/tx-1/update", map[string]string{
		"Origin": "https://dashboard.example.com",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://dashboard.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "X-Request-ID", w.Header().Get("Access-Control-Expose-Headers"))
	assert.Equal(t, "3600", w.Header().Get("Access-Control-Max-Age"))
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"https://dashboard.example.com"}
	router := newCommonRouter(CORSWithConfig(cfg))

	w := serve(router, http.MethodPost, "/api/v1/transactions/tx-1/update", map[string]string{
		"Origin": "https://evil.example.com",
	})

	// The request still executes; the browser enforces the missing header.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_EmptyOriginListRejectsAll(t *testing.T) {
	router := newCommonRouter(CORS())

	w := serve(router, http.MethodPost, "/api/v1/transactions/tx-1/update", map[string]string{
		"Origin": "https://dashboard.example.com",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Wildcard(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"*"}
	router := newCommonRouter(CORSWithConfig(cfg))

	w := serve(router, http.MethodPost, "/api/v1/transactions/tx-1/update", map[string]string{
		"Origin": "https://anywhere.example.com",
	})

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	// Credentials must never accompany a wildcard origin.
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_Preflight(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"https://dashboard.example.com"}
	router := newCommonRouter(CORSWithConfig(cfg))

	w := serve(router, http.MethodOptions, "/api/v1/transactions/tx-1/update", map[string]string{
		"Origin":                        "https://dashboard.example.com",
		"Access-Control-Request-Method": "POST",
	})

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://dashboard.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestCORS_PreflightDisallowedOriginStill204(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"https://dashboard.example.com"}
	router := newCommonRouter(CORSWithConfig(cfg))

	w := serve(router, http.MethodOptions, "/api/v1/transactions/tx-1/update", map[string]string{
		"Origin": "https://evil.example.com",
	})

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestID_Generated(t *testing.T) {
	router := newCommonRouter(RequestID())

	w := serve(router, http.MethodPost, "/api/v1/transactions/tx-1/update", nil)

	id := w.Header().Get("X-Request-ID")
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
}

func TestRequestID_Propagated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	var inContext string
	router.POST("/api/v1/transactions/:id/update", func(c *gin.Context) {
		inContext = c.GetString("request_id")
		c.Status(http.StatusOK)
	})

	w := serve(router, http.MethodPost, "/api/v1/transactions/tx-1/update", map[string]string{
		"X-Request-ID": "caller-supplied-id",
	})

	assert.Equal(t, "caller-supplied-id", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "caller-supplied-id", inContext)
}

func TestSecureHeaders(t *testing.T) {
	router := newCommonRouter(Secure())

	w := serve(router, http.MethodPost, "/api/v1/transactions/tx-1/update", nil)

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "frame-ancestors 'none'")
}
