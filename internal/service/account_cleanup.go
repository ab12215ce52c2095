package service

import (
	"bitwise74/conference-api/internal/model"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AccountCleanup deletes accounts that never verified their email before
// ExpiresAt passed, together with their tokens and resend counters
func AccountCleanup(db *gorm.DB, now time.Time) (int, error) {
	var toCleanUserIDs []string

	err := db.
		Model(&model.User{}).
		Where("verified = ? AND expires_at IS NOT NULL AND expires_at < ?", false, now).
		Pluck("id", &toCleanUserIDs).
		Error
	if err != nil {
		return 0, err
	}

	if len(toCleanUserIDs) == 0 {
		return 0, nil
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		return multierr.Combine(
			tx.Where("user_id IN ?", toCleanUserIDs).Delete(&model.VerificationToken{}).Error,
			tx.Where("user_id IN ?", toCleanUserIDs).Delete(&model.ResendRequest{}).Error,
			tx.Where("id IN ?", toCleanUserIDs).Delete(&model.User{}).Error,
		)
	})
	if err != nil {
		return 0, err
	}

	zap.L().Debug("Account cleanup finished", zap.Int("deleted", len(toCleanUserIDs)))

	return len(toCleanUserIDs), nil
}
