package review

import (
	"bitwise74/conference-api/internal/model"
	"errors"

	"gorm.io/gorm"
)

// currentAssignment finds the caller's assignment in the paper's active round
func currentAssignment(p *model.Paper, reviewerID string) *model.ReviewAssignment {
	for _, a := range p.CurrentAssignments() {
		if a.ReviewerID == reviewerID {
			return &a
		}
	}

	return nil
}

func findReview(db *gorm.DB, paperID uint, reviewerID string, round int) (*model.Review, error) {
	var r model.Review

	err := db.
		Table(model.ReviewTableFor(round)).
		Where("paper_id = ? AND reviewer_id = ? AND round = ?", paperID, reviewerID, round).
		First(&r).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &r, nil
}

// saveReview inserts r or overwrites the caller's earlier review of the same round
func saveReview(tx *gorm.DB, r *model.Review) error {
	table := model.ReviewTableFor(r.Round)

	existing, err := findReview(tx, r.PaperID, r.ReviewerID, r.Round)
	if err != nil {
		return err
	}

	if existing == nil {
		return tx.Table(table).Create(r).Error
	}

	r.ID = existing.ID
	r.CreatedAt = existing.CreatedAt

	return tx.Table(table).Save(r).Error
}
