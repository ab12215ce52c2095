package model

import "time"

const (
	CopyrightPending  = "Pending"
	CopyrightUploaded = "Uploaded"
	CopyrightApproved = "Approved"
	CopyrightRejected = "Rejected"
)

// Copyright exists once per accepted paper
type Copyright struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SubmissionID string    `gorm:"uniqueIndex;not null" json:"submissionId"`
	PaperID      uint      `gorm:"index;not null" json:"paperId"`
	AuthorID     string    `gorm:"index;not null" json:"authorId"`
	FormURL      string    `json:"formUrl,omitempty"`
	FormKey      string    `json:"formKey,omitempty"`
	Status       string    `gorm:"not null" json:"status"`
	AdminComment string    `json:"adminComment,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// SelectedUser is written when an admin approves a copyright form
type SelectedUser struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SubmissionID string    `gorm:"uniqueIndex;not null" json:"submissionId"`
	PaperID      uint      `json:"paperId"`
	AuthorID     string    `json:"authorId"`
	AuthorName   string    `json:"authorName"`
	AuthorEmail  string    `json:"authorEmail"`
	Title        string    `json:"title"`
	Category     string    `json:"category"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
