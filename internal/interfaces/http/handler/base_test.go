package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/as-ga/saleor/internal/domain/payment"
	"github.com/as-ga/saleor/internal/domain/shared"
	"github.com/as-ga/saleor/internal/interfaces/http/dto"
	"github.com/as-ga/saleor/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/api/v1/transactions", nil)
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetRequestID(t *testing.T) {
	c, _ := newTestContext(t)
	assert.Empty(t, getRequestID(c))

	// Header value is the fallback
	c.Request.Header.Set(RequestIDKey, "header-id")
	assert.Equal(t, "header-id", getRequestID(c))

	// A value placed by the middleware wins over the inbound header
	c.Set(RequestIDKey, "ctx-id")
	assert.Equal(t, "ctx-id", getRequestID(c))
}

func TestGetRequestor(t *testing.T) {
	c, _ := newTestContext(t)

	_, err := getRequestor(c)
	assert.Error(t, err)

	want := payment.AppRequestor(uuid.New())
	c.Set(middleware.RequestorKey, want)

	got, err := getRequestor(c)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestBaseHandlerSuccess(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(t)

	h.Success(c, map[string]string{"status": "CHARGED"})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
}

func TestBaseHandlerErrorHelpers(t *testing.T) {
	tests := []struct {
		name       string
		send       func(h *BaseHandler, c *gin.Context)
		wantStatus int
		wantCode   string
	}{
		{
			name:       "bad request",
			send:       func(h *BaseHandler, c *gin.Context) { h.BadRequest(c, "malformed id") },
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeBadRequest,
		},
		{
			name:       "unauthorized",
			send:       func(h *BaseHandler, c *gin.Context) { h.Unauthorized(c, "missing token") },
			wantStatus: http.StatusUnauthorized,
			wantCode:   dto.ErrCodeUnauthorized,
		},
		{
			name:       "forbidden",
			send:       func(h *BaseHandler, c *gin.Context) { h.Forbidden(c, "not your transaction") },
			wantStatus: http.StatusForbidden,
			wantCode:   dto.ErrCodeForbidden,
		},
		{
			name:       "internal",
			send:       func(h *BaseHandler, c *gin.Context) { h.InternalError(c, "boom") },
			wantStatus: http.StatusInternalServerError,
			wantCode:   dto.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			c, w := newTestContext(t)

			tt.send(h, c)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestBaseHandlerErrorCarriesRequestID(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(t)
	c.Set(RequestIDKey, "req-42")

	h.BadRequest(c, "nope")

	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "req-42", resp.Error.RequestID)
}

func TestBaseHandlerValidationError(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(t)

	h.ValidationError(c, []dto.ValidationDetail{
		{Field: "externalUrl", Message: "must be an absolute URL"},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "externalUrl", resp.Error.Details[0].Field)
}

func TestBaseHandlerHandleError(t *testing.T) {
	t.Run("nil error writes nothing", func(t *testing.T) {
		h := &BaseHandler{}
		c, w := newTestContext(t)

		h.HandleError(c, nil)

		assert.Empty(t, w.Body.String())
	})

	t.Run("domain error keeps its code", func(t *testing.T) {
		h := &BaseHandler{}
		c, w := newTestContext(t)

		h.HandleError(c, shared.ErrNotFound)

		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
	})

	t.Run("wrapped domain error is unwrapped", func(t *testing.T) {
		h := &BaseHandler{}
		c, w := newTestContext(t)

		h.HandleError(c, fmt.Errorf("loading transaction: %w", shared.ErrConcurrencyConflict))

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("unknown error is shielded as 500", func(t *testing.T) {
		h := &BaseHandler{}
		c, w := newTestContext(t)

		h.HandleError(c, fmt.Errorf("driver: connection reset"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeInternal, resp.Error.Code)
		// Internal details never leak to the caller
		assert.NotContains(t, resp.Error.Message, "connection reset")
	})
}
