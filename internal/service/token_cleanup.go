package service

import (
	"bitwise74/conference-api/internal/model"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TokenCleanup deletes verification tokens that expired or that were used and
// reached their cleanup time
func TokenCleanup(db *gorm.DB, now time.Time) (int, error) {
	var toCleanIDs []int

	err := db.
		Model(&model.VerificationToken{}).
		Where("expires_at < ? OR (used = ? AND cleanup_at < ?)", now, true, now).
		Pluck("id", &toCleanIDs).
		Error
	if err != nil {
		return 0, err
	}

	if len(toCleanIDs) == 0 {
		return 0, nil
	}

	zap.L().Debug("Cleaning up expired tokens", zap.Int("count", len(toCleanIDs)))

	err = db.
		Where("id IN ?", toCleanIDs).
		Delete(&model.VerificationToken{}).
		Error
	if err != nil {
		return 0, err
	}

	return len(toCleanIDs), nil
}
