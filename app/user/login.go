package user

import (
	"bitwise74/conference-api/internal"
	"bitwise74/conference-api/internal/model"
	"bitwise74/conference-api/pkg/response"
	"bitwise74/conference-api/pkg/security"
	"bitwise74/conference-api/pkg/validators"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func UserLogin(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data loginBody
	if err := c.ShouldBindJSON(&data); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request body")

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if data.Email == "" {
		response.Fail(c, http.StatusBadRequest, "Email field can't be empty")
		return
	}

	if data.Password == "" {
		response.Fail(c, http.StatusBadRequest, "Password field can't be empty")
		return
	}

	var user model.User

	err := d.DB.Where("email = ?", validators.NormalizeEmail(data.Email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Fail(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		response.Internal(c, "Failed to look up user", err)
		return
	}

	ok, err := d.Argon.VerifyPasswd(data.Password, user.PasswordHash)
	if err != nil {
		response.Internal(c, "Failed to verify password", err)
		return
	}

	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if d.Argon.NeedsRehash(user.PasswordHash) {
		rehash(d, &user, data.Password)
	}

	// Unverified accounts get a new link instead of a token
	if !user.Verified {
		err := d.DB.Transaction(func(tx *gorm.DB) error {
			return issueVerification(tx, d, &user)
		})
		if err != nil {
			response.Internal(c, "Failed to issue verification token", err)
			return
		}

		response.FailWith(c, http.StatusOK, "Please verify your email. A new verification link was sent", gin.H{
			"needsVerification": true,
			"userID":            user.ID,
		})
		return
	}

	authToken, err := security.IssueToken(d.Settings.JWTSecret, user.ID, string(user.Role), d.Settings.JWTTTL)
	if err != nil {
		response.Internal(c, "Failed to generate JWT auth token", err)
		return
	}

	setAuthCookies(c, d, user.ID, authToken)

	response.OK(c, http.StatusOK, "Logged in", gin.H{
		"token":    authToken,
		"userID":   user.ID,
		"role":     user.Role,
		"username": user.Username,
	})
}

// rehash stores the password with the current argon parameters. Failing is
// not fatal, the old hash keeps working.
func rehash(d *internal.Deps, user *model.User, password string) {
	hash, err := d.Argon.GenerateFromPassword(password)
	if err == nil {
		err = d.DB.
			Model(&model.User{}).
			Where("id = ? AND password_hash = ?", user.ID, user.PasswordHash).
			Update("password_hash", hash).
			Error
	}

	if err != nil {
		zap.L().Warn("Failed to upgrade password hash", zap.String("userID", user.ID), zap.Error(err))
	}
}
