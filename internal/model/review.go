package model

import (
	"bitwise74/conference-api/internal/workflow"
	"time"
)

const (
	ReviewPending   = "Pending"
	ReviewSubmitted = "Submitted"

	// Round 1 reviews and re-reviews are kept apart
	ReviewTable   = "reviewer_reviews"
	ReReviewTable = "re_reviews"
)

// Review is one reviewer's verdict on one paper for one round. Ratings go from 1 to 5.
type Review struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	PaperID    uint   `gorm:"uniqueIndex:,composite:review;not null" json:"paperId"`
	ReviewerID string `gorm:"uniqueIndex:,composite:review;index;not null" json:"reviewerId"`
	Round      int    `gorm:"uniqueIndex:,composite:review;not null" json:"round"`

	Originality int `json:"originality"`
	Relevance   int `json:"relevance"`
	Technical   int `json:"technical"`
	Clarity     int `json:"clarity"`
	Overall     int `json:"overall"`

	Comments       string                  `json:"comments"`
	Strengths      string                  `json:"strengths"`
	Weaknesses     string                  `json:"weaknesses"`
	Recommendation workflow.Recommendation `json:"recommendation"`
	Status         string                  `gorm:"not null" json:"status"`

	SubmittedAt *time.Time `json:"submittedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Index names are derived from the table name since both review tables
// share this struct
func (Review) TableName() string {
	return ReviewTable
}

// ReviewTableFor picks the table holding reviews of the given round
func ReviewTableFor(round int) string {
	if round <= 1 {
		return ReviewTable
	}

	return ReReviewTable
}
