package user

import (
	"bitwise74/conference-api/internal"
	"bitwise74/conference-api/internal/model"
	"bitwise74/conference-api/pkg/response"
	"bitwise74/conference-api/pkg/validators"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type registerBody struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserRegister creates an Author account that has to be verified by mail
func UserRegister(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data registerBody
	if err := c.ShouldBindJSON(&data); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	data.Email = validators.NormalizeEmail(data.Email)

	if err := validators.EmailValidator(data.Email); err != nil {
		zap.L().Debug("Invalid email", zap.Error(err), zap.String("requestID", requestID))

		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := validators.UsernameValidator(data.Username); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := validators.PasswordValidator(data.Password); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	var found int64

	err := d.DB.
		Model(&model.User{}).
		Where("email = ?", data.Email).
		Count(&found).
		Error
	if err != nil {
		response.Internal(c, "Failed to check if user is registered", err)
		return
	}

	if found > 0 {
		response.Fail(c, http.StatusConflict, "This email is already registered. Please login or use a different email")
		return
	}

	hash, err := d.Argon.GenerateFromPassword(data.Password)
	if err != nil {
		response.Internal(c, "Failed to hash password", err)
		return
	}

	userID, err := newUserID()
	if err != nil {
		response.Internal(c, "Failed to generate user ID", err)
		return
	}

	expiry := time.Now().Add(unverifiedTTL)
	user := &model.User{
		ID:           userID,
		Email:        data.Email,
		Username:     data.Username,
		PasswordHash: hash,
		Role:         model.RoleAuthor,
		ExpiresAt:    &expiry,
	}

	err = d.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		return issueVerification(tx, d, user)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			response.Fail(c, http.StatusConflict, "This email is already registered. Please login or use a different email")
			return
		}

		response.Internal(c, "Failed to create user", err)
		return
	}

	c.SetCookie("user_id", userID, int(unverifiedTTL.Seconds()), "/", "", d.Settings.Links.SSL, false)

	response.OK(c, http.StatusCreated, "Account created. Check your inbox to verify your email", gin.H{
		"userID": userID,
	})
}
