package model

import "time"

const (
	PurposeEmailVerify   = "email_verify"
	PurposePasswordReset = "password_reset"
)

// VerificationToken backs both email verification links and password reset
// codes. Reset codes are stored hashed, never in the clear.
type VerificationToken struct {
	ID        int    `gorm:"primaryKey;autoincrement"`
	UserID    string `gorm:"index"`
	Token     string `gorm:"uniqueIndex"`
	Purpose   string `gorm:"index"`
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
	CleanupAt *time.Time
	Used      bool
}
