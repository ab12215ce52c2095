package testutil

import (
	"bitwise74/conference-api/internal/model"
	"bitwise74/conference-api/internal/workflow"
	"bitwise74/conference-api/pkg/util"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// SeedPaper stores a paper by author in status without going through the
// submission handler
func (e *Env) SeedPaper(t *testing.T, author *model.User, status workflow.Status) *model.Paper {
	t.Helper()

	p := &model.Paper{
		SubmissionID: fmt.Sprintf("ML-%s", util.RandStr(6)),
		Title:        "Sparse attention for long documents",
		AuthorID:     author.ID,
		AuthorName:   author.Username,
		AuthorEmail:  author.Email,
		Category:     "Machine Learning",
		FileURL:      "http://files.test/papers/seed.pdf",
		FileKey:      "papers/seed.pdf",
		Status:       status,
		ReviewRound:  1,
		LockVersion:  1,
	}
	require.NoError(t, e.DB.Create(p).Error)

	return p
}

// SetEditor assigns editor to p directly in the database
func (e *Env) SetEditor(t *testing.T, p *model.Paper, editor *model.User) {
	t.Helper()

	require.NoError(t, e.DB.Model(p).Update("editor_id", editor.ID).Error)
	p.EditorID = &editor.ID
}

// SeedAssignments puts p under review with one pending assignment per reviewer
// in the paper's current round
func (e *Env) SeedAssignments(t *testing.T, p *model.Paper, deadline time.Time, reviewers ...*model.User) []model.ReviewAssignment {
	t.Helper()

	out := make([]model.ReviewAssignment, len(reviewers))
	for i, r := range reviewers {
		out[i] = model.ReviewAssignment{
			PaperID:    p.ID,
			ReviewerID: r.ID,
			Round:      p.ReviewRound,
			Deadline:   deadline,
			Status:     model.AssignmentPending,
		}
	}
	require.NoError(t, e.DB.Create(&out).Error)

	require.NoError(t, e.DB.Model(p).Update("status", workflow.StatusUnderReview).Error)
	p.Status = workflow.StatusUnderReview

	return out
}

// Reload reads p back from the database
func (e *Env) Reload(t *testing.T, p *model.Paper) *model.Paper {
	t.Helper()

	var out model.Paper
	require.NoError(t, e.DB.Where("id = ?", p.ID).First(&out).Error)

	return &out
}
