package middleware

import (
	"bitwise74/conference-api/internal/policy"
	"bitwise74/conference-api/pkg/response"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewPolicyMiddleware checks the caller's role against the route table. It
// must run after the auth middleware.
func NewPolicyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		method := c.Request.Method

		if !policy.Known(method, route) {
			zap.L().Error("Route has no policy entry",
				zap.String("route", policy.Key(method, route)),
				zap.String("requestID", c.GetString("requestID")))

			response.Abort(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		if !policy.Allowed(GetPrincipal(c).Role, method, route) {
			response.Abort(c, http.StatusForbidden, "You are not allowed to do this")
			return
		}

		c.Next()
	}
}
