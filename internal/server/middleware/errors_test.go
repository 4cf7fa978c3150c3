package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FormaKit/Backend/internal/apperr"
	"github.com/FormaKit/Backend/internal/server/respond"
)

func boundaryRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(zap.NewNop()), ErrorBoundary(zap.NewNop()))
	r.GET("/x", handler)
	return r
}

func TestErrorBoundarySerializesAppErrors(t *testing.T) {
	r := boundaryRouter(func(c *gin.Context) {
		abort(c, apperr.NotFound("User not found"))
	})

	w := doGet(r, "/x")

	assert.Equal(t, http.StatusNotFound, w.Code)
	var env respond.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "User not found", env.Error.Message)
	assert.Equal(t, apperr.CodeNotFound, env.Error.Code)
	assert.False(t, env.Timestamp.IsZero())
}

func TestErrorBoundaryHidesUnknownErrors(t *testing.T) {
	r := boundaryRouter(func(c *gin.Context) {
		abort(c, errors.New("pq: connection refused"))
	})

	w := doGet(r, "/x")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestRecoveryConvertsPanics(t *testing.T) {
	r := boundaryRouter(func(c *gin.Context) {
		panic("boom")
	})

	w := doGet(r, "/x")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), apperr.CodeInternal)
	assert.NotContains(t, w.Body.String(), "boom")
}
