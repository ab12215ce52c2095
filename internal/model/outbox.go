package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	OutboxPending = "pending"
	OutboxSent    = "sent"
	OutboxDead    = "dead"

	OutboxKindMail = "mail"
)

type MailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// OutboxMessage is a side effect recorded in the same transaction as the
// write that caused it and delivered later by the dispatcher.
type OutboxMessage struct {
	ID            string                          `gorm:"primaryKey" json:"id"`
	Kind          string                          `gorm:"not null" json:"kind"`
	Payload       datatypes.JSONType[MailPayload] `json:"payload"`
	Status        string                          `gorm:"index:idx_outbox_due;not null" json:"status"`
	Attempts      int                             `json:"attempts"`
	NextAttemptAt time.Time                       `gorm:"index:idx_outbox_due" json:"nextAttemptAt"`
	LastError     string                          `json:"lastError,omitempty"`
	SentAt        *time.Time                      `json:"sentAt,omitempty"`
	CreatedAt     time.Time                       `json:"createdAt"`
	UpdatedAt     time.Time                       `json:"updatedAt"`
}
