package service

import (
	"bitwise74/conference-api/internal/model"
	"bitwise74/conference-api/internal/workflow"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrConflict is returned when a paper changed between being read and written
var ErrConflict = errors.New("paper was modified concurrently")

// Advance applies ev to p and persists the new status together with extra
// column updates. The write only lands if the row still has the status and
// lock version p was read with, so racing writers can't both succeed.
func Advance(tx *gorm.DB, p *model.Paper, ev workflow.Event, extra map[string]any) error {
	next, err := workflow.Next(p.Status, ev)
	if err != nil {
		return err
	}

	updates := map[string]any{
		"status":       next,
		"lock_version": gorm.Expr("lock_version + 1"),
	}
	for k, v := range extra {
		updates[k] = v
	}

	res := tx.
		Model(&model.Paper{}).
		Where("id = ? AND status = ? AND lock_version = ?", p.ID, p.Status, p.LockVersion).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update paper, %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return ErrConflict
	}

	p.Status = next
	p.LockVersion++

	return nil
}

// LoadPaper fetches a paper with its assignments and versions
func LoadPaper(db *gorm.DB, id any) (*model.Paper, error) {
	var p model.Paper

	err := db.
		Preload("ReviewAssignments", func(db *gorm.DB) *gorm.DB {
			return db.Order("round ASC, id ASC")
		}).
		Preload("Versions", func(db *gorm.DB) *gorm.DB {
			return db.Order("version ASC")
		}).
		First(&p, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}

	return &p, nil
}
