package policy

import (
	"bitwise74/conference-api/internal/model"
	"slices"
)

// Principal is the authenticated caller
type Principal struct {
	UserID string
	Role   model.Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == model.RoleAdmin
}

// OwnsPaper holds for the submitting author
func OwnsPaper(p Principal, paper *model.Paper) bool {
	return p.IsAdmin() || paper.AuthorID == p.UserID
}

// EditsPaper holds for the editor the paper is assigned to
func EditsPaper(p Principal, paper *model.Paper) bool {
	if p.IsAdmin() {
		return true
	}

	return p.Role == model.RoleEditor && paper.EditorID != nil && *paper.EditorID == p.UserID
}

// ReviewsPaper holds for reviewers with an assignment on the paper in any round
func ReviewsPaper(p Principal, paper *model.Paper) bool {
	if p.IsAdmin() {
		return true
	}

	if p.Role != model.RoleReviewer {
		return false
	}

	return slices.ContainsFunc(paper.ReviewAssignments, func(a model.ReviewAssignment) bool {
		return a.ReviewerID == p.UserID
	})
}

// CanSeePaper is the union of the above
func CanSeePaper(p Principal, paper *model.Paper) bool {
	return OwnsPaper(p, paper) || EditsPaper(p, paper) || ReviewsPaper(p, paper)
}
