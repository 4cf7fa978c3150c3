package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FormaKit/Backend/internal/apperr"
	"github.com/FormaKit/Backend/internal/server/respond"
)

// ErrorBoundary is the single place errors become responses. Handlers and
// guards record errors with c.Error and abort; known application errors are
// serialized with their declared status, anything else becomes a generic 500
// logged server-side without leaking internals to the client.
func ErrorBoundary(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			respond.Error(c, appErr.Status, respond.ErrorBody{
				Message: appErr.Message,
				Code:    appErr.Code,
				Details: appErr.Details,
			})
			return
		}
		logger.Error("unexpected error",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		respond.Error(c, http.StatusInternalServerError, respond.ErrorBody{
			Message: "Internal server error",
			Code:    apperr.CodeInternal,
		})
	}
}

// Recovery converts panics into the generic 500 envelope after logging them.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		logger.Error("panic recovered",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Any("panic", recovered),
		)
		respond.Error(c, http.StatusInternalServerError, respond.ErrorBody{
			Message: "Internal server error",
			Code:    apperr.CodeInternal,
		})
		c.Abort()
	})
}

// abort records err for the boundary and stops the handler chain.
func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
