package copyright_test

import (
	"bitwise74/conference-api/internal/model"
	"bitwise74/conference-api/internal/testutil"
	"bitwise74/conference-api/internal/workflow"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyrightNeedsAcceptedPaper(t *testing.T) {
	e := testutil.New(t)
	author := e.SeedUser(t, model.RoleAuthor, "author@example.com")
	p := e.SeedPaper(t, author, workflow.StatusUnderReview)

	w := e.Do(t, "GET", fmt.Sprintf("/api/copyright/%d", p.ID), e.Token(t, author), nil)
	testutil.Status(t, http.StatusConflict, w)

	other := e.SeedUser(t, model.RoleAuthor, "other@example.com")
	accepted := e.SeedPaper(t, author, workflow.StatusAccepted)

	w = e.Do(t, "GET", fmt.Sprintf("/api/copyright/%d", accepted.ID), e.Token(t, other), nil)
	testutil.Status(t, http.StatusForbidden, w)
}

func TestApproveTwiceSelectsOnce(t *testing.T) {
	e := testutil.New(t)
	admin := e.SeedUser(t, model.RoleAdmin, "admin@example.com")
	author := e.SeedUser(t, model.RoleAuthor, "author@example.com")
	p := e.SeedPaper(t, author, workflow.StatusAccepted)

	path := fmt.Sprintf("/api/copyright/%d", p.ID)
	token := e.Token(t, author)
	adminToken := e.Token(t, admin)

	// Nothing to review before a form exists
	w := e.Do(t, "POST", path+"/review", adminToken, gin.H{"status": "Approved"})
	testutil.Status(t, http.StatusNotFound, w)

	w = e.Do(t, "GET", path, token, nil)
	testutil.Status(t, http.StatusOK, w)

	var cr model.Copyright
	testutil.Decode(t, w, &cr)
	assert.Equal(t, model.CopyrightPending, cr.Status)

	w = e.Do(t, "POST", path+"/review", adminToken, gin.H{"status": "Approved"})
	testutil.Status(t, http.StatusConflict, w)

	w = e.Multipart(t, "POST", path+"/form", token, nil, testutil.PDF)
	testutil.Status(t, http.StatusOK, w)

	for range 2 {
		w = e.Do(t, "POST", path+"/review", adminToken, gin.H{"status": "Approved", "comment": "Thanks"})
		testutil.Status(t, http.StatusOK, w)
	}

	var selected []model.SelectedUser
	require.NoError(t, e.DB.Find(&selected).Error)
	require.Len(t, selected, 1)
	assert.Equal(t, p.SubmissionID, selected[0].SubmissionID)
	assert.Equal(t, author.Email, selected[0].AuthorEmail)

	var rows int64
	require.NoError(t, e.DB.Model(&model.Copyright{}).Count(&rows).Error)
	assert.EqualValues(t, 1, rows)

	// Approved forms are final
	w = e.Do(t, "POST", path+"/review", adminToken, gin.H{"status": "Rejected"})
	testutil.Status(t, http.StatusConflict, w)

	w = e.Multipart(t, "POST", path+"/form", token, nil, testutil.PDF)
	testutil.Status(t, http.StatusConflict, w)

	w = e.Do(t, "GET", "/api/selected", adminToken, nil)
	testutil.Status(t, http.StatusOK, w)
}

func TestRejectedFormCanBeReplaced(t *testing.T) {
	e := testutil.New(t)
	admin := e.SeedUser(t, model.RoleAdmin, "admin@example.com")
	author := e.SeedUser(t, model.RoleAuthor, "author@example.com")
	p := e.SeedPaper(t, author, workflow.StatusAccepted)

	path := fmt.Sprintf("/api/copyright/%d", p.ID)
	token := e.Token(t, author)

	testutil.Status(t, http.StatusOK, e.Multipart(t, "POST", path+"/form", token, nil, testutil.PDF))
	assert.Equal(t, 1, e.Storage.Len())

	w := e.Do(t, "POST", path+"/review", e.Token(t, admin), gin.H{"status": "Rejected", "comment": "Unsigned"})
	testutil.Status(t, http.StatusOK, w)

	testutil.Status(t, http.StatusOK, e.Multipart(t, "POST", path+"/form", token, nil, testutil.PDF))

	// The first form was replaced, not kept
	assert.Equal(t, 1, e.Storage.Len())

	var cr model.Copyright
	require.NoError(t, e.DB.Where("submission_id = ?", p.SubmissionID).First(&cr).Error)
	assert.Equal(t, model.CopyrightUploaded, cr.Status)
	assert.Empty(t, cr.AdminComment)

	var selected int64
	require.NoError(t, e.DB.Model(&model.SelectedUser{}).Count(&selected).Error)
	assert.Zero(t, selected)
}
