package user

import (
	"bitwise74/conference-api/internal"
	"bitwise74/conference-api/internal/model"
	"bitwise74/conference-api/pkg/middleware"
	"bitwise74/conference-api/pkg/response"
	"net/http"

	"github.com/gin-gonic/gin"
)

// UserFetch returns the calling user
func UserFetch(c *gin.Context, d *internal.Deps) {
	p := middleware.GetPrincipal(c)

	var user model.User
	if err := d.DB.Where("id = ?", p.UserID).First(&user).Error; err != nil {
		response.Internal(c, "Failed to fetch user", err)
		return
	}

	response.OK(c, http.StatusOK, "", user)
}
