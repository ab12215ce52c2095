package user

import (
	"bitwise74/conference-api/internal"
	"bitwise74/conference-api/internal/model"
	"bitwise74/conference-api/internal/service"
	"bitwise74/conference-api/pkg/security"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"
)

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

const (
	verifyTokenTTL   = 30 * time.Minute
	tokenCleanupTime = 24 * time.Hour * 60
	unverifiedTTL    = 24 * time.Hour * 7
	resetCodeTTL     = 10 * time.Minute
	resendCooldown   = time.Minute
)

func newUserID() (string, error) {
	return gonanoid.Generate(charset, 16)
}

// issueVerification stores a fresh verification token for u and queues the
// mail carrying it, both using tx
func issueVerification(tx *gorm.DB, d *internal.Deps, u *model.User) error {
	expireAt := time.Now().Add(verifyTokenTTL)
	cleanAt := time.Now().Add(tokenCleanupTime)

	t, err := security.MakeVerificationToken(&security.VerificationTokenOpts{
		UserID:    u.ID,
		Purpose:   model.PurposeEmailVerify,
		ExpiresAt: &expireAt,
		CleanupAt: &cleanAt,
	})
	if err != nil {
		return err
	}

	if err := tx.Create(t).Error; err != nil {
		return err
	}

	return d.Outbox.Enqueue(tx, service.VerificationMail(d.Settings.Links, u.Email, t))
}

func setAuthCookies(c cookieSetter, d *internal.Deps, userID, token string) {
	maxAge := int(d.Settings.JWTTTL.Seconds())
	ssl := d.Settings.Links.SSL

	c.SetCookie("user_id", userID, maxAge, "/", "", ssl, false)
	c.SetCookie("auth_token", token, maxAge, "/", "", ssl, true)
	c.SetCookie("logged_in", "1", maxAge, "/", "", ssl, false)
}

type cookieSetter interface {
	SetCookie(name, value string, maxAge int, path, domain string, secure, httpOnly bool)
}
