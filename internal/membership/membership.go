// Package membership looks up society memberships kept in a separate database.
// Membership type decides the conference fee.
package membership

import (
	"context"
	"errors"
	"strings"
	"time"
)

var ErrNotFound = errors.New("membership not found")

type Member struct {
	ID         string     `bson:"membershipId" json:"membershipId"`
	Name       string     `bson:"name" json:"name"`
	Email      string     `bson:"email" json:"email"`
	Type       string     `bson:"type" json:"type"`
	ValidUntil *time.Time `bson:"validUntil,omitempty" json:"validUntil,omitempty"`
}

// Expired reports whether the membership lapsed before t. Memberships
// without an end date never expire.
func (m *Member) Expired(t time.Time) bool {
	return m.ValidUntil != nil && m.ValidUntil.Before(t)
}

type Directory interface {
	Lookup(ctx context.Context, id string) (*Member, error)
}

// StaticDirectory serves members from memory
type StaticDirectory map[string]Member

func (s StaticDirectory) Lookup(_ context.Context, id string) (*Member, error) {
	m, ok := s[strings.TrimSpace(id)]
	if !ok {
		return nil, ErrNotFound
	}

	return &m, nil
}

// FeeSchedule maps membership types to the registration fee. Types are
// matched case insensitively and unknown types pay Default.
type FeeSchedule struct {
	Default  float64
	ByType   map[string]float64
	Currency string
}

// NonMember is the membership type of authors without a membership ID
const NonMember = "Non-member"

func (f FeeSchedule) Fee(membershipType string) float64 {
	for t, fee := range f.ByType {
		if strings.EqualFold(t, membershipType) {
			return fee
		}
	}

	return f.Default
}
