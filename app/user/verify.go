package user

import (
	"bitwise74/conference-api/internal"
	"bitwise74/conference-api/internal/model"
	"bitwise74/conference-api/pkg/response"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type verifyBody struct {
	UserID string `json:"userID"`
	Token  string `json:"token"`
}

// UserVerify confirms an email address. The user row is only written once the
// token checked out.
func UserVerify(c *gin.Context, d *internal.Deps) {
	var data verifyBody
	if err := c.ShouldBindJSON(&data); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if data.Token == "" {
		response.Fail(c, http.StatusBadRequest, "No verification token provided")
		return
	}

	if data.UserID == "" {
		response.Fail(c, http.StatusBadRequest, "No user ID provided")
		return
	}

	var token model.VerificationToken

	err := d.DB.
		Where("user_id = ? AND token = ? AND purpose = ?", data.UserID, data.Token, model.PurposeEmailVerify).
		First(&token).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Fail(c, http.StatusBadRequest, "Token expired or invalid")
			return
		}

		response.Internal(c, "Failed to get verification token record", err)
		return
	}

	if token.Used {
		response.Fail(c, http.StatusBadRequest, "Token was used already")
		return
	}

	now := time.Now()
	if token.ExpiresAt.Before(now) {
		response.Fail(c, http.StatusBadRequest, "Token expired")
		return
	}

	err = d.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.VerificationToken{}).
			Where("id = ? AND used = ?", token.ID, false).
			Updates(map[string]any{
				"used":    true,
				"used_at": now,
			})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			return errTokenUsed
		}

		return tx.Model(&model.User{}).
			Where("id = ?", data.UserID).
			Updates(map[string]any{
				"verified":   true,
				"expires_at": nil,
			}).Error
	})
	if err != nil {
		if errors.Is(err, errTokenUsed) {
			response.Fail(c, http.StatusBadRequest, "Token was used already")
			return
		}

		response.Internal(c, "Failed to update user and token in transaction", err)
		return
	}

	response.OK(c, http.StatusOK, "User validated successfully", nil)
}

var errTokenUsed = errors.New("token used")
