package model

import "time"

const (
	PaymentSubmitted = "Submitted"
	PaymentVerified  = "Verified"
	PaymentRejected  = "Rejected"
)

type Payment struct {
	ID             uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	PaperID        uint       `gorm:"index;not null" json:"paperId"`
	SubmissionID   string     `gorm:"index;not null" json:"submissionId"`
	AuthorID       string     `gorm:"index;not null" json:"authorId"`
	MembershipID   string     `json:"membershipId,omitempty"`
	MembershipType string     `json:"membershipType"`
	Amount         float64    `json:"amount"`
	Currency       string     `json:"currency"`
	TransactionRef string     `json:"transactionRef"`
	ProofURL       string     `json:"proofUrl"`
	ProofKey       string     `json:"proofKey"`
	Status         string     `gorm:"index;not null" json:"status"`
	AdminComment   string     `json:"adminComment,omitempty"`
	VerifiedAt     *time.Time `json:"verifiedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Registration is the final attendee record, created once a payment is verified
type Registration struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SubmissionID   string    `gorm:"uniqueIndex;not null" json:"submissionId"`
	PaperID        uint      `json:"paperId"`
	AuthorID       string    `gorm:"index" json:"authorId"`
	PaymentID      uint      `json:"paymentId"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	MembershipType string    `json:"membershipType"`
	RegisteredAt   time.Time `json:"registeredAt"`
}
