// Package response writes the JSON envelope every endpoint answers with:
// {"success": bool, "message": string, "data": any, "requestID": string}
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Envelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Data      any    `json:"data,omitempty"`
	RequestID string `json:"requestID,omitempty"`
}

func requestID(c *gin.Context) string {
	return c.GetString("requestID")
}

// OK replies with a successful envelope
func OK(c *gin.Context, code int, message string, data any) {
	c.JSON(code, Envelope{
		Success:   true,
		Message:   message,
		Data:      data,
		RequestID: requestID(c),
	})
}

// Fail replies with a failed envelope carrying a message meant for the user
func Fail(c *gin.Context, code int, message string) {
	c.JSON(code, Envelope{
		Success:   false,
		Message:   message,
		RequestID: requestID(c),
	})
}

// FailWith is Fail with a data payload, e.g. the IDs of a conflicting record
func FailWith(c *gin.Context, code int, message string, data any) {
	c.JSON(code, Envelope{
		Success:   false,
		Message:   message,
		Data:      data,
		RequestID: requestID(c),
	})
}

// Abort is Fail for middleware
func Abort(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, Envelope{
		Success:   false,
		Message:   message,
		RequestID: requestID(c),
	})
}

// Internal logs err and replies with a generic 500. The error text never
// reaches the client, the request ID is enough to find the log line.
func Internal(c *gin.Context, logMsg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err), zap.String("requestID", requestID(c)))
	zap.L().Error(logMsg, fields...)

	Fail(c, http.StatusInternalServerError, "Internal server error")
}
