package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbeauty/backend/internal/domain/shared"
	"github.com/tbeauty/backend/internal/interfaces/http/dto"
	"github.com/tbeauty/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		c.Request.Header.Set("Content-Type", "application/json")
	}
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestBaseHandlerSuccess(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(http.MethodGet, "/", "")

	h.Success(c, map[string]string{"sku": "LIP-001"})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
	assert.Equal(t, "LIP-001", resp.Data.(map[string]interface{})["sku"])
}

func TestBaseHandlerSuccessList(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(http.MethodGet, "/", "")

	h.SuccessList(c, "payments", []string{"PAY-2026-00001", "PAY-2026-00002"}, 12, 2, 5)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]interface{})
	assert.Len(t, data["payments"], 2)
	assert.EqualValues(t, 12, data["total"])
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(12), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 5, resp.Meta.PageSize)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}

func TestBaseHandlerCreatedAndNoContent(t *testing.T) {
	h := &BaseHandler{}

	c, w := newTestContext(http.MethodPost, "/", "")
	h.Created(c, gin.H{"id": "1"})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decodeResponse(t, w).Success)

	c, w = newTestContext(http.MethodDelete, "/", "")
	h.NoContent(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestBaseHandlerHandleError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedErr  string
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"already exists", shared.ErrAlreadyExists, http.StatusConflict, dto.ErrCodeConflict},
		{"invalid input", shared.ErrInvalidInput, http.StatusBadRequest, dto.ErrCodeBadRequest},
		{"invalid state", shared.NewInvalidStateError("Cannot ship order in pending status"), http.StatusUnprocessableEntity, dto.ErrCodeInvalidState},
		{"concurrent modification", shared.ErrConcurrencyConflict, http.StatusConflict, dto.ErrCodeConcurrencyConflict},
		{"insufficient stock", shared.ErrInsufficientStock, http.StatusUnprocessableEntity, dto.ErrCodeInsufficientStock},
		{"wrapped domain error", fmt.Errorf("confirm: %w", shared.ErrNotFound), http.StatusNotFound, dto.ErrCodeNotFound},
		{"plain error", assert.AnError, http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			c, w := newTestContext(http.MethodGet, "/", "")
			c.Set(middleware.RequestIDKey, "req-42")

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.expectedCode, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.expectedErr, resp.Error.Code)
			assert.Equal(t, "req-42", resp.Error.RequestID)
		})
	}

	t.Run("internal errors hide their cause", func(t *testing.T) {
		h := &BaseHandler{}
		c, w := newTestContext(http.MethodGet, "/", "")
		h.HandleError(c, fmt.Errorf("pq: connection refused"))

		resp := decodeResponse(t, w)
		assert.NotContains(t, resp.Error.Message, "pq")
		assert.Len(t, c.Errors, 1)
	})

	t.Run("validation fields become details", func(t *testing.T) {
		h := &BaseHandler{}
		c, w := newTestContext(http.MethodPost, "/", "")
		h.HandleError(c, shared.NewValidationError(
			shared.FieldError{Field: "customer_id", Reason: "required"},
			shared.FieldError{Field: "items", Reason: "required"},
		))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "customer_id is required, items is required", resp.Error.Message)
		assert.Equal(t, []dto.ValidationDetail{
			{Field: "customer_id", Reason: "required"},
			{Field: "items", Reason: "required"},
		}, resp.Error.Details)
	})

	t.Run("nil writes nothing", func(t *testing.T) {
		h := &BaseHandler{}
		c, w := newTestContext(http.MethodGet, "/", "")
		h.HandleError(c, nil)
		assert.Empty(t, w.Body.String())
	})
}

type bindTarget struct {
	Quantity int    `json:"quantity" binding:"required,min=1"`
	Reason   string `json:"reason" binding:"max=5"`
}

func TestBaseHandlerBindError(t *testing.T) {
	require.NoError(t, middleware.SetupValidator())

	tests := []struct {
		name         string
		body         string
		expectedCode int
		expectedMsg  string
	}{
		{"empty body", "", http.StatusBadRequest, "Request body is empty"},
		{"truncated json", `{"quantity":`, http.StatusBadRequest, "Request body is not valid JSON"},
		{"malformed json", `{"quantity":}`, http.StatusBadRequest, "Request body is not valid JSON"},
		{"wrong type", `{"quantity":"two"}`, http.StatusBadRequest, "quantity has the wrong type"},
		{"validation", `{"quantity":0,"reason":"too long"}`, http.StatusUnprocessableEntity,
			"quantity is required, reason is longer than 5 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			c, w := newTestContext(http.MethodPost, "/", tt.body)
			var req bindTarget
			err := c.ShouldBindJSON(&req)
			require.Error(t, err)

			h.BindError(c, err)

			assert.Equal(t, tt.expectedCode, w.Code)
			assert.Equal(t, tt.expectedMsg, decodeResponse(t, w).Error.Message)
		})
	}
}

func TestBaseHandlerPathUUID(t *testing.T) {
	h := &BaseHandler{}

	c, w := newTestContext(http.MethodGet, "/orders/x", "")
	c.Params = gin.Params{{Key: "id", Value: "x"}}
	_, ok := h.pathUUID(c, "id")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "id is not a valid UUID", decodeResponse(t, w).Error.Message)

	c, _ = newTestContext(http.MethodGet, "/", "")
	c.Params = gin.Params{{Key: "id", Value: "7f0c1f0e-6f57-4d5c-9a39-5b0f1d3f5e11"}}
	id, ok := h.pathUUID(c, "id")
	assert.True(t, ok)
	assert.Equal(t, "7f0c1f0e-6f57-4d5c-9a39-5b0f1d3f5e11", id.String())
}
