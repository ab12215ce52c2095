package model

import (
	"bitwise74/conference-api/internal/workflow"
	"time"
)

const (
	AssignmentPending   = "Pending"
	AssignmentSubmitted = "Submitted"
)

type Paper struct {
	ID           uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	SubmissionID string      `gorm:"uniqueIndex;not null" json:"submissionId"` // Human readable, category prefixed
	Title        string      `gorm:"not null" json:"title"`
	AuthorID     string      `gorm:"index;not null" json:"authorId"`
	AuthorName   string      `json:"authorName"`
	AuthorEmail  string      `gorm:"index" json:"authorEmail"`
	Category     string      `gorm:"index" json:"category"`
	Abstract     string      `json:"abstract"`
	Keywords     StringSlice `json:"keywords"`
	FileURL      string      `json:"fileUrl"`
	FileKey      string      `json:"fileKey"`

	Status         workflow.Status `gorm:"index;not null" json:"status"`
	EditorID       *string         `gorm:"index" json:"editorId,omitempty"`
	ReviewRound    int             `gorm:"not null;default:1" json:"reviewRound"`
	FinalDecision  string          `json:"finalDecision,omitempty"`
	EditorComments string          `json:"editorComments,omitempty"`

	// Bumped on every write. Writers must present the value they read.
	LockVersion int `gorm:"not null;default:1" json:"lockVersion"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	ReviewAssignments []ReviewAssignment `gorm:"foreignKey:PaperID;constraint:OnDelete:CASCADE" json:"reviewAssignments,omitempty"`
	Versions          []PaperVersion     `gorm:"foreignKey:PaperID;constraint:OnDelete:CASCADE" json:"versions,omitempty"`
}

// ReviewAssignment links a reviewer to a paper for one review round
type ReviewAssignment struct {
	ID             uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	PaperID        uint       `gorm:"uniqueIndex:idx_assignment;not null" json:"paperId"`
	ReviewerID     string     `gorm:"uniqueIndex:idx_assignment;index;not null" json:"reviewerId"`
	Round          int        `gorm:"uniqueIndex:idx_assignment;not null" json:"round"`
	Deadline       time.Time  `json:"deadline"`
	Status         string     `gorm:"index;not null" json:"status"`
	ReminderCount  int        `json:"reminderCount"`
	LastRemindedAt *time.Time `json:"lastRemindedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	SubmittedAt    *time.Time `json:"submittedAt,omitempty"`
}

// PaperVersion rows are only ever appended
type PaperVersion struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PaperID   uint      `gorm:"uniqueIndex:idx_paper_version;not null" json:"paperId"`
	Version   int       `gorm:"uniqueIndex:idx_paper_version;not null" json:"version"`
	FileURL   string    `json:"fileUrl"`
	FileKey   string    `json:"fileKey"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserSubmission enforces one paper per author email
type UserSubmission struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	SubmissionID string    `gorm:"not null" json:"submissionId"`
	BookingID    string    `gorm:"not null" json:"bookingId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SubmissionCounter hands out sequence numbers per submission ID prefix
type SubmissionCounter struct {
	Prefix string `gorm:"primaryKey"`
	Seq    int    `gorm:"not null"`
}

// CurrentAssignments returns the assignments of the paper's active round
func (p *Paper) CurrentAssignments() []ReviewAssignment {
	out := make([]ReviewAssignment, 0, len(p.ReviewAssignments))
	for _, a := range p.ReviewAssignments {
		if a.Round == p.ReviewRound {
			out = append(out, a)
		}
	}

	return out
}

// AssignedReviewers lists the reviewer IDs of the active round
func (p *Paper) AssignedReviewers() []string {
	cur := p.CurrentAssignments()
	ids := make([]string, len(cur))
	for i, a := range cur {
		ids[i] = a.ReviewerID
	}

	return ids
}
