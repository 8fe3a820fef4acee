package logger

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(handler gin.HandlerFunc, middleware ...gin.HandlerFunc) *httptest.ResponseRecorder {
	engine := gin.New()
	engine.Use(middleware...)
	engine.POST("/api/v1/transactions/:id/update", handler)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/transactions/abc/update?expand=events", nil)
	engine.ServeHTTP(w, req)
	return w
}

func TestGinMiddleware_LogsRequestLine(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferedLogger(&buf)

	w := performRequest(func(c *gin.Context) {
		c.Status(http.StatusOK)
	}, GinMiddleware(log))

	assert.Equal(t, http.StatusOK, w.Code)
	out := buf.String()
	assert.Contains(t, out, "HTTP Request")
	assert.Contains(t, out, "/api/v1/transactions/abc/update")
	assert.Contains(t, out, "POST")
	assert.Contains(t, out, "expand=events")
}

func TestGinMiddleware_PlantsLoggerInBothContexts(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferedLogger(&buf)

	var fromGin, fromRequest *zap.Logger
	performRequest(func(c *gin.Context) {
		fromGin = GetGinLogger(c)
		fromRequest = FromContext(c.Request.Context())
		c.Status(http.StatusOK)
	}, GinMiddleware(log))

	require.NotNil(t, fromGin)
	assert.Same(t, fromGin, fromRequest)
}

func TestGinMiddleware_WarnsOnClientError(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferedLogger(&buf)

	performRequest(func(c *gin.Context) {
		c.Status(http.StatusForbidden)
	}, GinMiddleware(log))

	assert.Contains(t, buf.String(), `"level":"warn"`)
}

func TestGinMiddleware_ErrorsOnServerError(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferedLogger(&buf)

	performRequest(func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	}, GinMiddleware(log))

	assert.Contains(t, buf.String(), `"level":"error"`)
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferedLogger(&buf)

	w := performRequest(func(c *gin.Context) {
		panic("ledger exploded")
	}, Recovery(log))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	out := buf.String()
	assert.Contains(t, out, "Panic recovered")
	assert.Contains(t, out, "ledger exploded")
}

func TestGetGinLogger_OutsideRequestIsNop(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	log := GetGinLogger(c)
	require.NotNil(t, log)
	log.Info("must not panic")
}
