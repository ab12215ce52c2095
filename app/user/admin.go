package user

import (
	"bitwise74/conference-api/app/common"
	"bitwise74/conference-api/internal"
	"bitwise74/conference-api/internal/model"
	"bitwise74/conference-api/pkg/middleware"
	"bitwise74/conference-api/pkg/response"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UserList lists accounts by role. Editors only see reviewers.
func UserList(c *gin.Context, d *internal.Deps) {
	p := middleware.GetPrincipal(c)
	role := model.Role(c.Query("role"))

	if role != "" && !role.Valid() {
		response.Fail(c, http.StatusBadRequest, "Invalid role")
		return
	}

	if !p.IsAdmin() {
		if role != "" && role != model.RoleReviewer {
			response.Fail(c, http.StatusForbidden, "Editors can only list reviewers")
			return
		}
		role = model.RoleReviewer
	}

	limit, offset := common.Page(c)

	q := d.DB.Model(&model.User{}).Order("created_at DESC").Limit(limit).Offset(offset)
	if role != "" {
		q = q.Where("role = ?", role)
	}

	var users []model.User
	if err := q.Find(&users).Error; err != nil {
		response.Internal(c, "Failed to list users", err)
		return
	}

	response.OK(c, http.StatusOK, "", users)
}

type roleBody struct {
	Role model.Role `json:"role"`
}

func UserSetRole(c *gin.Context, d *internal.Deps) {
	p := middleware.GetPrincipal(c)
	userID := c.Param("id")

	var data roleBody
	if err := c.ShouldBindJSON(&data); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !data.Role.Valid() {
		response.Fail(c, http.StatusBadRequest, "Invalid role")
		return
	}

	if userID == p.UserID {
		response.Fail(c, http.StatusBadRequest, "You can't change your own role")
		return
	}

	res := d.DB.Model(&model.User{}).Where("id = ?", userID).Update("role", data.Role)
	if res.Error != nil {
		response.Internal(c, "Failed to update role", res.Error)
		return
	}

	if res.RowsAffected == 0 {
		response.Fail(c, http.StatusNotFound, "User not found")
		return
	}

	middleware.EvictPrincipal(d.Principals, userID)

	response.OK(c, http.StatusOK, "Role updated", gin.H{"userID": userID, "role": data.Role})
}

// UserDelete removes an account for good. Papers it submitted stay.
func UserDelete(c *gin.Context, d *internal.Deps) {
	p := middleware.GetPrincipal(c)
	userID := c.Param("id")

	if userID == p.UserID {
		response.Fail(c, http.StatusBadRequest, "You can't delete your own account")
		return
	}

	var deleted int64

	err := d.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&model.VerificationToken{}).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", userID).Delete(&model.ResendRequest{}).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", userID).Delete(&model.User{})
		deleted = res.RowsAffected
		return res.Error
	})
	if err != nil {
		response.Internal(c, "Failed to delete user", err)
		return
	}

	if deleted == 0 {
		response.Fail(c, http.StatusNotFound, "User not found")
		return
	}

	middleware.EvictPrincipal(d.Principals, userID)

	response.OK(c, http.StatusOK, "User deleted", nil)
}
