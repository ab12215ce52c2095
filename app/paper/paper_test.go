package paper_test

import (
	"bitwise74/conference-api/internal/model"
	"bitwise74/conference-api/internal/testutil"
	"bitwise74/conference-api/internal/workflow"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type submitted struct {
	Paper     model.Paper `json:"paper"`
	BookingID string      `json:"bookingId"`
}

func submit(t *testing.T, e *testutil.Env, author *model.User, category string) submitted {
	t.Helper()

	w := e.Multipart(t, "POST", "/api/papers", e.Token(t, author), map[string]string{
		"title":    "Learning to rank reviewers",
		"category": category,
		"abstract": "We rank reviewers.",
		"keywords": "ranking, Ranking, reviewers",
	}, testutil.PDF)
	testutil.Status(t, http.StatusCreated, w)

	var out submitted
	testutil.Decode(t, w, &out)

	return out
}

func TestSubmitPaper(t *testing.T) {
	e := testutil.New(t)
	author := e.SeedUser(t, model.RoleAuthor, "author@example.com")

	out := submit(t, e, author, "machine learning")

	assert.Equal(t, "ML-0001", out.Paper.SubmissionID)
	assert.Equal(t, "Machine Learning", out.Paper.Category)
	assert.Equal(t, workflow.StatusSubmitted, out.Paper.Status)
	assert.Equal(t, model.StringSlice{"ranking", "reviewers"}, out.Paper.Keywords)
	assert.True(t, strings.HasPrefix(out.BookingID, "BK-"))
	assert.True(t, e.Storage.Has(out.Paper.FileKey))

	var versions []model.PaperVersion
	require.NoError(t, e.DB.Where("paper_id = ?", out.Paper.ID).Find(&versions).Error)
	require.Len(t, versions, 1)
	assert.Equal(t, 1, versions[0].Version)

	assert.Len(t, e.QueuedTo(t, author.Email), 1)
}

func TestSubmitTwiceReturnsExistingIDs(t *testing.T) {
	e := testutil.New(t)
	author := e.SeedUser(t, model.RoleAuthor, "author@example.com")

	first := submit(t, e, author, "Networks")

	w := e.Multipart(t, "POST", "/api/papers", e.Token(t, author), map[string]string{
		"title":    "Another one",
		"category": "Networks",
	}, testutil.PDF)
	testutil.Status(t, http.StatusBadRequest, w)

	var data struct {
		SubmissionID string `json:"submissionId"`
		BookingID    string `json:"bookingId"`
	}
	testutil.Decode(t, w, &data)
	assert.Equal(t, first.Paper.SubmissionID, data.SubmissionID)
	assert.Equal(t, first.BookingID, data.BookingID)

	var count int64
	require.NoError(t, e.DB.Model(&model.Paper{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
	assert.Equal(t, 1, e.Storage.Len())
}

func TestSubmissionIDsAreSequentialPerCategory(t *testing.T) {
	e := testutil.New(t)

	seen := map[string]bool{}
	for i := range 3 {
		author := e.SeedUser(t, model.RoleAuthor, fmt.Sprintf("cv%d@example.com", i))
		id := submit(t, e, author, "Computer Vision").Paper.SubmissionID

		assert.Equal(t, fmt.Sprintf("CV-%04d", i+1), id)
		assert.False(t, seen[id])
		seen[id] = true
	}

	other := e.SeedUser(t, model.RoleAuthor, "net@example.com")
	assert.Equal(t, "NET-0001", submit(t, e, other, "Networks").Paper.SubmissionID)
}

func TestSubmitRejectsBadInput(t *testing.T) {
	e := testutil.New(t)
	author := e.SeedUser(t, model.RoleAuthor, "author@example.com")
	token := e.Token(t, author)

	w := e.Multipart(t, "POST", "/api/papers", token, map[string]string{
		"title":    "Not a pdf",
		"category": "Networks",
	}, []byte("just some plain text"))
	testutil.Status(t, http.StatusBadRequest, w)

	w = e.Multipart(t, "POST", "/api/papers", token, map[string]string{
		"title":    "Unknown category",
		"category": "Astrology",
	}, testutil.PDF)
	testutil.Status(t, http.StatusBadRequest, w)

	w = e.Multipart(t, "POST", "/api/papers", token, map[string]string{
		"title":    "No file",
		"category": "Networks",
	}, nil)
	testutil.Status(t, http.StatusBadRequest, w)

	assert.Equal(t, 0, e.Storage.Len())

	reviewer := e.SeedUser(t, model.RoleReviewer, "rev@example.com")
	w = e.Multipart(t, "POST", "/api/papers", e.Token(t, reviewer), map[string]string{
		"title":    "Wrong role",
		"category": "Networks",
	}, testutil.PDF)
	testutil.Status(t, http.StatusForbidden, w)
}

func TestAssignReviewers(t *testing.T) {
	e := testutil.New(t)
	admin := e.SeedUser(t, model.RoleAdmin, "admin@example.com")
	editor := e.SeedUser(t, model.RoleEditor, "editor@example.com")
	author := e.SeedUser(t, model.RoleAuthor, "author@example.com")
	r1 := e.SeedUser(t, model.RoleReviewer, "r1@example.com")
	r2 := e.SeedUser(t, model.RoleReviewer, "r2@example.com")

	p := e.SeedPaper(t, author, workflow.StatusSubmitted)
	path := fmt.Sprintf("/api/papers/%d", p.ID)

	// Only the assigned editor may pick reviewers
	w := e.Do(t, "POST", path+"/reviewers", e.Token(t, editor), gin.H{"reviewerIDs": []string{r1.ID}})
	testutil.Status(t, http.StatusForbidden, w)

	w = e.Do(t, "POST", path+"/editor", e.Token(t, admin), gin.H{"editorID": editor.ID})
	testutil.Status(t, http.StatusOK, w)
	assert.Equal(t, workflow.StatusEditorAssigned, e.Reload(t, p).Status)

	// Authors aren't reviewers
	w = e.Do(t, "POST", path+"/reviewers", e.Token(t, editor), gin.H{"reviewerIDs": []string{author.ID}})
	testutil.Status(t, http.StatusBadRequest, w)

	before := time.Now()

	w = e.Do(t, "POST", path+"/reviewers", e.Token(t, editor), gin.H{
		"reviewerIDs": []string{r1.ID, r2.ID, r1.ID},
	})
	testutil.Status(t, http.StatusOK, w)

	var out struct {
		Status      workflow.Status          `json:"status"`
		Round       int                      `json:"round"`
		Assignments []model.ReviewAssignment `json:"assignments"`
	}
	testutil.Decode(t, w, &out)
	assert.Equal(t, workflow.StatusUnderReview, out.Status)
	assert.Equal(t, 1, out.Round)
	assert.Len(t, out.Assignments, 2)

	var rows []model.ReviewAssignment
	require.NoError(t, e.DB.Where("paper_id = ?", p.ID).Find(&rows).Error)
	require.Len(t, rows, 2)

	want := before.Add(3 * 24 * time.Hour)
	for _, a := range rows {
		assert.Equal(t, model.AssignmentPending, a.Status)
		assert.WithinDuration(t, want, a.Deadline, time.Minute)
	}

	assert.Len(t, e.QueuedTo(t, r1.Email), 1)
	assert.Len(t, e.QueuedTo(t, r2.Email), 1)

	// Assigning the same reviewer again adds nothing
	w = e.Do(t, "POST", path+"/reviewers", e.Token(t, editor), gin.H{"reviewerIDs": []string{r2.ID}, "deadlineDays": 5})
	testutil.Status(t, http.StatusOK, w)

	var count int64
	require.NoError(t, e.DB.Model(&model.ReviewAssignment{}).Where("paper_id = ?", p.ID).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestEditUsesLockVersion(t *testing.T) {
	e := testutil.New(t)
	author := e.SeedUser(t, model.RoleAuthor, "author@example.com")
	p := e.SeedPaper(t, author, workflow.StatusSubmitted)
	path := fmt.Sprintf("/api/papers/%d", p.ID)
	token := e.Token(t, author)

	w := e.Do(t, "PATCH", path, token, gin.H{"title": "New title", "lockVersion": 1})
	testutil.Status(t, http.StatusOK, w)

	got := e.Reload(t, p)
	assert.Equal(t, "New title", got.Title)
	assert.Equal(t, 2, got.LockVersion)

	// Stale version
	w = e.Do(t, "PATCH", path, token, gin.H{"title": "Stale", "lockVersion": 1})
	testutil.Status(t, http.StatusConflict, w)

	other := e.SeedUser(t, model.RoleAuthor, "other@example.com")
	w = e.Do(t, "PATCH", path, e.Token(t, other), gin.H{"title": "Mine now", "lockVersion": 2})
	testutil.Status(t, http.StatusForbidden, w)
}

func TestRevisionAndDecision(t *testing.T) {
	e := testutil.New(t)
	editor := e.SeedUser(t, model.RoleEditor, "editor@example.com")
	author := e.SeedUser(t, model.RoleAuthor, "author@example.com")

	p := e.SeedPaper(t, author, workflow.StatusReviewReceived)
	e.SetEditor(t, p, editor)
	path := fmt.Sprintf("/api/papers/%d", p.ID)

	w := e.Do(t, "POST", path+"/decision", e.Token(t, editor), gin.H{"decision": "Maybe"})
	testutil.Status(t, http.StatusBadRequest, w)

	w = e.Do(t, "POST", path+"/revision-request", e.Token(t, editor), gin.H{"comments": "Please expand section 3"})
	testutil.Status(t, http.StatusOK, w)
	assert.Equal(t, workflow.StatusRevisionRequested, e.Reload(t, p).Status)

	w = e.Multipart(t, "POST", path+"/revisions", e.Token(t, author), map[string]string{"note": "Expanded"}, testutil.PDF)
	testutil.Status(t, http.StatusCreated, w)

	got := e.Reload(t, p)
	assert.Equal(t, workflow.StatusRevisionSubmitted, got.Status)
	assert.NotEqual(t, p.FileKey, got.FileKey)

	w = e.Do(t, "POST", path+"/decision", e.Token(t, editor), gin.H{"decision": "Accept", "comments": "Well done"})
	testutil.Status(t, http.StatusOK, w)

	got = e.Reload(t, p)
	assert.Equal(t, workflow.StatusAccepted, got.Status)
	assert.Equal(t, "Accept", got.FinalDecision)

	// Accepted is final
	w = e.Do(t, "POST", path+"/decision", e.Token(t, editor), gin.H{"decision": "Reject"})
	testutil.Status(t, http.StatusConflict, w)
}

func TestManualReminder(t *testing.T) {
	e := testutil.New(t)
	editor := e.SeedUser(t, model.RoleEditor, "editor@example.com")
	author := e.SeedUser(t, model.RoleAuthor, "author@example.com")
	rev := e.SeedUser(t, model.RoleReviewer, "rev@example.com")

	p := e.SeedPaper(t, author, workflow.StatusEditorAssigned)
	e.SetEditor(t, p, editor)
	e.SeedAssignments(t, p, time.Now().Add(-time.Hour), rev)

	path := fmt.Sprintf("/api/papers/%d/reminders/%s", p.ID, rev.ID)

	for want := 1; want <= 2; want++ {
		w := e.Do(t, "POST", path, e.Token(t, editor), nil)
		testutil.Status(t, http.StatusOK, w)

		var out struct {
			ReminderCount int `json:"reminderCount"`
		}
		testutil.Decode(t, w, &out)
		assert.Equal(t, want, out.ReminderCount)
	}

	assert.Len(t, e.QueuedTo(t, rev.Email), 2)

	w := e.Do(t, "POST", fmt.Sprintf("/api/papers/%d/reminders/%s", p.ID, author.ID), e.Token(t, editor), nil)
	testutil.Status(t, http.StatusNotFound, w)
}

func TestCategoriesArePublic(t *testing.T) {
	e := testutil.New(t)

	w := e.Do(t, "GET", "/api/papers/categories", "", nil)
	testutil.Status(t, http.StatusOK, w)

	var out []struct {
		Name   string `json:"name"`
		Prefix string `json:"prefix"`
	}
	testutil.Decode(t, w, &out)
	require.Len(t, out, 3)
	assert.Equal(t, "ML", out[0].Prefix)
}
