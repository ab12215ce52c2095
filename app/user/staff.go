package user

import (
	"bitwise74/conference-api/internal"
	"bitwise74/conference-api/internal/model"
	"bitwise74/conference-api/internal/service"
	"bitwise74/conference-api/pkg/middleware"
	"bitwise74/conference-api/pkg/response"
	"bitwise74/conference-api/pkg/validators"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"
)

const tempPasswordCharset = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

type staffBody struct {
	Email    string     `json:"email"`
	Username string     `json:"username"`
	Role     model.Role `json:"role"`
}

// StaffCreate creates a verified Editor or Reviewer account and mails the
// generated password. Editors may only create Reviewers.
func StaffCreate(c *gin.Context, d *internal.Deps) {
	p := middleware.GetPrincipal(c)

	var data staffBody
	if err := c.ShouldBindJSON(&data); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if data.Role != model.RoleEditor && data.Role != model.RoleReviewer {
		response.Fail(c, http.StatusBadRequest, "Role must be Editor or Reviewer")
		return
	}

	if !p.IsAdmin() && data.Role != model.RoleReviewer {
		response.Fail(c, http.StatusForbidden, "Editors can only create reviewer accounts")
		return
	}

	data.Email = validators.NormalizeEmail(data.Email)

	if err := validators.EmailValidator(data.Email); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := validators.UsernameValidator(data.Username); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	password, err := gonanoid.Generate(tempPasswordCharset, 12)
	if err != nil {
		response.Internal(c, "Failed to generate password", err)
		return
	}

	hash, err := d.Argon.GenerateFromPassword(password)
	if err != nil {
		response.Internal(c, "Failed to hash password", err)
		return
	}

	userID, err := newUserID()
	if err != nil {
		response.Internal(c, "Failed to generate user ID", err)
		return
	}

	user := &model.User{
		ID:           userID,
		Email:        data.Email,
		Username:     data.Username,
		PasswordHash: hash,
		Role:         data.Role,
		Verified:     true,
		TempPassword: password,
	}

	err = d.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		if err := d.Outbox.Enqueue(tx, service.StaffCredentialsMail(d.Settings.Links, user, password)); err != nil {
			return err
		}

		return tx.Model(user).Update("temp_password", "").Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			response.Fail(c, http.StatusConflict, "This email is already registered")
			return
		}

		response.Internal(c, "Failed to create staff account", err)
		return
	}

	response.OK(c, http.StatusCreated, "Account created, credentials were sent by mail", gin.H{
		"userID": userID,
		"role":   data.Role,
	})
}
