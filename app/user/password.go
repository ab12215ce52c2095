package user

import (
	"bitwise74/conference-api/internal"
	"bitwise74/conference-api/internal/model"
	"bitwise74/conference-api/internal/service"
	"bitwise74/conference-api/pkg/response"
	"bitwise74/conference-api/pkg/security"
	"bitwise74/conference-api/pkg/validators"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const forgotGeneric = "If the account exists a reset code was sent"

// PasswordForgot mails a six digit reset code. Earlier unused codes stop working.
func PasswordForgot(c *gin.Context, d *internal.Deps) {
	var data emailBody
	if err := c.ShouldBindJSON(&data); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	var user model.User

	err := d.DB.Where("email = ?", validators.NormalizeEmail(data.Email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.OK(c, http.StatusOK, forgotGeneric, nil)
			return
		}

		response.Internal(c, "Failed to look up user", err)
		return
	}

	now := time.Now()
	expireAt := now.Add(resetCodeTTL)
	cleanAt := now.Add(tokenCleanupTime)

	code, token, err := security.MakeResetCode(&security.VerificationTokenOpts{
		UserID:    user.ID,
		Purpose:   model.PurposePasswordReset,
		ExpiresAt: &expireAt,
		CleanupAt: &cleanAt,
	})
	if err != nil {
		response.Internal(c, "Failed to generate reset code", err)
		return
	}

	err = d.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&model.VerificationToken{}).
			Where("user_id = ? AND purpose = ? AND used = ?", user.ID, model.PurposePasswordReset, false).
			Updates(map[string]any{"used": true, "used_at": now}).
			Error
		if err != nil {
			return err
		}

		if err := tx.Create(token).Error; err != nil {
			return err
		}

		return d.Outbox.Enqueue(tx, service.ResetCodeMail(user.Email, code))
	})
	if err != nil {
		response.Internal(c, "Failed to store reset code", err)
		return
	}

	response.OK(c, http.StatusOK, forgotGeneric, nil)
}

type resetBody struct {
	Email    string `json:"email"`
	OTP      string `json:"otp"`
	Password string `json:"password"`
}

func PasswordReset(c *gin.Context, d *internal.Deps) {
	var data resetBody
	if err := c.ShouldBindJSON(&data); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if data.OTP == "" {
		response.Fail(c, http.StatusBadRequest, "No reset code provided")
		return
	}

	if err := validators.PasswordValidator(data.Password); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	var user model.User

	err := d.DB.Where("email = ?", validators.NormalizeEmail(data.Email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Fail(c, http.StatusBadRequest, "Code expired or invalid")
			return
		}

		response.Internal(c, "Failed to look up user", err)
		return
	}

	now := time.Now()

	var token model.VerificationToken

	err = d.DB.
		Where("user_id = ? AND token = ? AND purpose = ? AND used = ? AND expires_at > ?",
			user.ID, security.HashResetCode(user.ID, data.OTP), model.PurposePasswordReset, false, now).
		First(&token).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Fail(c, http.StatusBadRequest, "Code expired or invalid")
			return
		}

		response.Internal(c, "Failed to look up reset code", err)
		return
	}

	hash, err := d.Argon.GenerateFromPassword(data.Password)
	if err != nil {
		response.Internal(c, "Failed to hash password", err)
		return
	}

	err = d.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.VerificationToken{}).
			Where("id = ? AND used = ?", token.ID, false).
			Updates(map[string]any{"used": true, "used_at": now})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			return errTokenUsed
		}

		return tx.Model(&model.User{}).
			Where("id = ?", user.ID).
			Update("password_hash", hash).
			Error
	})
	if err != nil {
		if errors.Is(err, errTokenUsed) {
			response.Fail(c, http.StatusBadRequest, "Code expired or invalid")
			return
		}

		response.Internal(c, "Failed to reset password", err)
		return
	}

	response.OK(c, http.StatusOK, "Password changed. You can log in now", nil)
}
