package policy

import (
	"bitwise74/conference-api/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowed(t *testing.T) {
	assert.True(t, Allowed(model.RoleAuthor, "POST", "/api/papers"))
	assert.False(t, Allowed(model.RoleReviewer, "POST", "/api/papers"))

	assert.True(t, Allowed(model.RoleEditor, "POST", "/api/papers/:id/reviewers"))
	assert.True(t, Allowed(model.RoleAdmin, "post", "/api/papers/:id/reviewers"))
	assert.False(t, Allowed(model.RoleAuthor, "POST", "/api/papers/:id/reviewers"))

	assert.True(t, Allowed(model.RoleReviewer, "POST", "/api/reviews/:paperID"))
	assert.False(t, Allowed(model.RoleEditor, "POST", "/api/reviews/:paperID"))

	assert.False(t, Allowed(model.RoleAdmin, "GET", "/api/nope"))
	assert.False(t, Known("GET", "/api/nope"))
}

func TestEveryRuleHasARole(t *testing.T) {
	for k, roles := range Rules {
		assert.NotEmpty(t, roles, k)
		for _, r := range roles {
			assert.True(t, r.Valid(), k)
		}
	}
}

func TestOwnership(t *testing.T) {
	editorID := "ed-1"
	paper := &model.Paper{
		AuthorID:    "au-1",
		EditorID:    &editorID,
		ReviewRound: 1,
		ReviewAssignments: []model.ReviewAssignment{
			{ReviewerID: "rv-1", Round: 1},
		},
	}

	author := Principal{UserID: "au-1", Role: model.RoleAuthor}
	other := Principal{UserID: "au-2", Role: model.RoleAuthor}
	editor := Principal{UserID: "ed-1", Role: model.RoleEditor}
	otherEditor := Principal{UserID: "ed-2", Role: model.RoleEditor}
	reviewer := Principal{UserID: "rv-1", Role: model.RoleReviewer}
	admin := Principal{UserID: "ad-1", Role: model.RoleAdmin}

	assert.True(t, OwnsPaper(author, paper))
	assert.False(t, OwnsPaper(other, paper))
	assert.True(t, EditsPaper(editor, paper))
	assert.False(t, EditsPaper(otherEditor, paper))
	assert.True(t, ReviewsPaper(reviewer, paper))
	assert.False(t, ReviewsPaper(editor, paper))

	for _, p := range []Principal{author, editor, reviewer, admin} {
		assert.True(t, CanSeePaper(p, paper))
	}
	assert.False(t, CanSeePaper(other, paper))
	assert.False(t, CanSeePaper(otherEditor, paper))
}
