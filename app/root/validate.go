package root

import (
	"bitwise74/conference-api/pkg/middleware"
	"bitwise74/conference-api/pkg/response"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Validate answers 200 with the caller's identity if the auth middleware let
// the request through
func Validate(c *gin.Context) {
	p := middleware.GetPrincipal(c)

	response.OK(c, http.StatusOK, "", gin.H{
		"userID": p.UserID,
		"role":   p.Role,
	})
}
