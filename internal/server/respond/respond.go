// Package respond writes the response envelope shared by every endpoint:
// {success, data?, error?, meta?, timestamp}.
package respond

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the error half of the envelope.
type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// Envelope is the response shape for every JSON endpoint.
type Envelope struct {
	Success   bool       `json:"success"`
	Data      any        `json:"data,omitempty"`
	Error     *ErrorBody `json:"error,omitempty"`
	Meta      any        `json:"meta,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// OK writes a success envelope with the given status and data.
func OK(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{Success: true, Data: data, Timestamp: time.Now().UTC()})
}

// OKMeta writes a success envelope with data and meta (e.g. pagination).
func OKMeta(c *gin.Context, status int, data, meta any) {
	c.JSON(status, Envelope{Success: true, Data: data, Meta: meta, Timestamp: time.Now().UTC()})
}

// NoContent writes a bare 204 with no body.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error writes an error envelope with the given status.
func Error(c *gin.Context, status int, body ErrorBody) {
	c.JSON(status, Envelope{Success: false, Error: &body, Timestamp: time.Now().UTC()})
}
