package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respond(fn func(c *gin.Context)) (*httptest.ResponseRecorder, *gin.Context, APIError) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	fn(c)

	var body APIError
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, c, body
}

func TestResponses(t *testing.T) {
	cases := []struct {
		name   string
		fn     func(c *gin.Context)
		status int
		code   string
	}{
		{"unauthorized", func(c *gin.Context) { Unauthorized(c, "") }, http.StatusUnauthorized, ErrCodeUnauthorized},
		{"forbidden", func(c *gin.Context) { Forbidden(c, "") }, http.StatusForbidden, ErrCodeForbidden},
		{"not found", func(c *gin.Context) { NotFound(c, "") }, http.StatusNotFound, ErrCodeNotFound},
		{"bad request", func(c *gin.Context) { BadRequest(c, "") }, http.StatusBadRequest, ErrCodeInvalidInput},
		{"conflict", func(c *gin.Context) { Conflict(c, "") }, http.StatusConflict, ErrCodeConflict},
		{"invalid state", func(c *gin.Context) { InvalidState(c, "") }, http.StatusConflict, ErrCodeInvalidState},
		{"internal", func(c *gin.Context) { InternalError(c, "") }, http.StatusInternalServerError, ErrCodeInternalError},
		{"unavailable", func(c *gin.Context) { ServiceUnavailable(c, "") }, http.StatusServiceUnavailable, ErrCodeServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, c, body := respond(tc.fn)
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.code, body.Code)
			assert.NotEmpty(t, body.Message)
			assert.True(t, c.IsAborted())
		})
	}
}

func TestBadRequestWithDetails(t *testing.T) {
	w, _, body := respond(func(c *gin.Context) {
		BadRequestWithDetails(c, "Validation failed", map[string]string{"title": "required"})
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Validation failed", body.Message)
	assert.Equal(t, map[string]string{"title": "required"}, body.Details)
}

func TestMessageOverridesFallback(t *testing.T) {
	_, _, body := respond(func(c *gin.Context) { NotFound(c, "Task not found") })
	assert.Equal(t, "Task not found", body.Message)

	_, _, body = respond(func(c *gin.Context) { BadRequest(c, "") })
	assert.Nil(t, body.Details)
}
