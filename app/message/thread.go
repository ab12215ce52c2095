package message

import (
	"bitwise74/conference-api/internal/model"
	"bitwise74/conference-api/internal/policy"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// threadKey identifies a thread. Unused parts stay at their zero value.
type threadKey struct {
	Kind       model.ThreadKind
	PaperID    uint
	ReviewerID string
	OwnerID    string
}

func (k threadKey) where(db *gorm.DB) *gorm.DB {
	return db.Where("kind = ? AND paper_id = ? AND reviewer_id = ? AND owner_id = ?",
		k.Kind, k.PaperID, k.ReviewerID, k.OwnerID)
}

// findThread loads a thread with its messages in append order. A missing
// thread is not an error.
func findThread(db *gorm.DB, k threadKey) (*model.Thread, error) {
	var t model.Thread

	err := k.where(db).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		First(&t).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &t, nil
}

// appendMessage creates the thread if needed, stores the message and bumps
// the thread's activity time. Must run inside a transaction.
func appendMessage(tx *gorm.DB, k threadKey, participants model.Thread, sender policy.Principal, text string) (*model.Thread, *model.Message, error) {
	now := time.Now()

	t := participants
	t.Kind = k.Kind
	t.PaperID = k.PaperID
	t.ReviewerID = k.ReviewerID
	t.OwnerID = k.OwnerID
	t.LastActivityAt = now

	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&t).Error; err != nil {
		return nil, nil, err
	}

	if err := k.where(tx).First(&t).Error; err != nil {
		return nil, nil, err
	}

	msg := &model.Message{
		ThreadID:   t.ID,
		SenderRole: sender.Role,
		SenderID:   sender.UserID,
		Text:       text,
	}

	if err := tx.Create(msg).Error; err != nil {
		return nil, nil, err
	}

	if err := tx.Model(&t).Update("last_activity_at", now).Error; err != nil {
		return nil, nil, err
	}

	return &t, msg, nil
}
