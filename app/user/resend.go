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
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type emailBody struct {
	Email string `json:"email"`
}

const resendGeneric = "If the account exists and isn't verified yet a new link was sent"

// UserResend sends a new verification link, at most once per cool-down
func UserResend(c *gin.Context, d *internal.Deps) {
	var data emailBody
	if err := c.ShouldBindJSON(&data); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	var user model.User

	err := d.DB.
		Preload("ResendRequest").
		Where("email = ?", validators.NormalizeEmail(data.Email)).
		First(&user).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.OK(c, http.StatusOK, resendGeneric, nil)
			return
		}

		response.Internal(c, "Failed to look up user", err)
		return
	}

	if user.Verified {
		response.OK(c, http.StatusOK, resendGeneric, nil)
		return
	}

	now := time.Now()
	if r := user.ResendRequest; r != nil && now.Sub(r.LastResend) < resendCooldown {
		response.Fail(c, http.StatusTooManyRequests, "Please wait a minute before requesting another link")
		return
	}

	err = d.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"last_resend": now,
				"count":       gorm.Expr("count + 1"),
			}),
		}).Create(&model.ResendRequest{
			UserID:     user.ID,
			LastResend: now,
			Count:      1,
		}).Error
		if err != nil {
			return err
		}

		return issueVerification(tx, d, &user)
	})
	if err != nil {
		response.Internal(c, "Failed to resend verification mail", err)
		return
	}

	response.OK(c, http.StatusOK, resendGeneric, nil)
}
