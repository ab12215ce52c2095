package model

import "time"

type ThreadKind string

const (
	ThreadPaper     ThreadKind = "paper"     // author <-> editor
	ThreadReviewer  ThreadKind = "reviewer"  // editor <-> reviewer
	ThreadCopyright ThreadKind = "copyright" // author <-> admin
	ThreadSupport   ThreadKind = "support"   // any user <-> admin
)

func (k ThreadKind) Valid() bool {
	return k == ThreadPaper || k == ThreadReviewer || k == ThreadCopyright || k == ThreadSupport
}

// Thread is the container for an append-only list of messages. The
// participant columns that matter depend on the kind.
type Thread struct {
	ID             uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Kind           ThreadKind `gorm:"uniqueIndex:idx_thread;not null" json:"kind"`
	PaperID        uint       `gorm:"uniqueIndex:idx_thread" json:"paperId,omitempty"`
	ReviewerID     string     `gorm:"uniqueIndex:idx_thread" json:"reviewerId,omitempty"`
	OwnerID        string     `gorm:"uniqueIndex:idx_thread" json:"ownerId,omitempty"` // Support threads only
	AuthorID       string     `json:"authorId,omitempty"`
	EditorID       string     `json:"editorId,omitempty"`
	LastActivityAt time.Time  `gorm:"index" json:"lastActivityAt"`
	CreatedAt      time.Time  `json:"createdAt"`

	Messages []Message `gorm:"foreignKey:ThreadID;constraint:OnDelete:CASCADE" json:"messages,omitempty"`
}

type Message struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ThreadID   uint      `gorm:"index;not null" json:"threadId"`
	SenderRole Role      `json:"senderRole"`
	SenderID   string    `json:"senderId"`
	Text       string    `gorm:"not null" json:"text"`
	CreatedAt  time.Time `json:"createdAt"`
}
