package model

import "time"

// ResendRequest throttles verification mail resends per user
type ResendRequest struct {
	ID         int    `gorm:"primaryKey;autoIncrement"`
	UserID     string `gorm:"uniqueIndex"`
	LastResend time.Time
	Count      int
}
