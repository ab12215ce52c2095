// Package model defines database models
package model

import "time"

type Role string

const (
	RoleAuthor   Role = "Author"
	RoleEditor   Role = "Editor"
	RoleReviewer Role = "Reviewer"
	RoleAdmin    Role = "Admin"
)

func (r Role) Valid() bool {
	return r == RoleAuthor || r == RoleEditor || r == RoleReviewer || r == RoleAdmin
}

type User struct {
	ID           string     `gorm:"primaryKey" json:"id"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	Username     string     `gorm:"not null" json:"username"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Role         Role       `gorm:"index;not null" json:"role"`
	Verified     bool       `gorm:"default:false" json:"verified"`
	ExpiresAt    *time.Time `json:"-"` // Unverified accounts are removed after this

	// Only set between creating a staff account and queueing the credentials mail
	TempPassword string `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	VerificationTokens []VerificationToken `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	ResendRequest      *ResendRequest      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
