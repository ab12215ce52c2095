package message_test

import (
	"bitwise74/conference-api/internal/model"
	"bitwise74/conference-api/internal/testutil"
	"bitwise74/conference-api/internal/workflow"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaperThread(t *testing.T) {
	e := testutil.New(t)
	author := e.SeedUser(t, model.RoleAuthor, "author@example.com")
	editor := e.SeedUser(t, model.RoleEditor, "editor@example.com")
	outsider := e.SeedUser(t, model.RoleAuthor, "outsider@example.com")

	p := e.SeedPaper(t, author, workflow.StatusEditorAssigned)
	e.SetEditor(t, p, editor)

	path := fmt.Sprintf("/api/threads/paper/%d", p.ID)

	// Reading before anyone wrote returns an empty thread
	w := e.Do(t, "GET", path, e.Token(t, author), nil)
	testutil.Status(t, http.StatusOK, w)

	var empty model.Thread
	testutil.Decode(t, w, &empty)
	assert.Empty(t, empty.Messages)

	w = e.Do(t, "POST", path+"/messages", e.Token(t, author), gin.H{"text": "Is the format fine?"})
	testutil.Status(t, http.StatusCreated, w)

	w = e.Do(t, "POST", path+"/messages", e.Token(t, editor), gin.H{"text": "Yes"})
	testutil.Status(t, http.StatusCreated, w)

	w = e.Do(t, "GET", path, e.Token(t, editor), nil)
	testutil.Status(t, http.StatusOK, w)

	var thread model.Thread
	testutil.Decode(t, w, &thread)
	require.Len(t, thread.Messages, 2)
	assert.Equal(t, "Is the format fine?", thread.Messages[0].Text)
	assert.Equal(t, model.RoleAuthor, thread.Messages[0].SenderRole)
	assert.Equal(t, model.RoleEditor, thread.Messages[1].SenderRole)

	var threads int64
	require.NoError(t, e.DB.Model(&model.Thread{}).Count(&threads).Error)
	assert.EqualValues(t, 1, threads)

	// Each side is told about the other's message
	assert.Len(t, e.QueuedTo(t, editor.Email), 1)
	assert.Len(t, e.QueuedTo(t, author.Email), 1)

	w = e.Do(t, "GET", path, e.Token(t, outsider), nil)
	testutil.Status(t, http.StatusForbidden, w)

	w = e.Do(t, "POST", path+"/messages", e.Token(t, outsider), gin.H{"text": "hi"})
	testutil.Status(t, http.StatusForbidden, w)
}

func TestThreadRejectsBadInput(t *testing.T) {
	e := testutil.New(t)
	author := e.SeedUser(t, model.RoleAuthor, "author@example.com")
	p := e.SeedPaper(t, author, workflow.StatusSubmitted)
	token := e.Token(t, author)

	w := e.Do(t, "GET", fmt.Sprintf("/api/threads/gossip/%d", p.ID), token, nil)
	testutil.Status(t, http.StatusBadRequest, w)

	w = e.Do(t, "POST", fmt.Sprintf("/api/threads/paper/%d/messages", p.ID), token, gin.H{"text": "   "})
	testutil.Status(t, http.StatusBadRequest, w)

	w = e.Do(t, "GET", "/api/threads/paper/999", token, nil)
	testutil.Status(t, http.StatusNotFound, w)
}

func TestReviewerThread(t *testing.T) {
	e := testutil.New(t)
	author := e.SeedUser(t, model.RoleAuthor, "author@example.com")
	editor := e.SeedUser(t, model.RoleEditor, "editor@example.com")
	r1 := e.SeedUser(t, model.RoleReviewer, "r1@example.com")
	r2 := e.SeedUser(t, model.RoleReviewer, "r2@example.com")

	p := e.SeedPaper(t, author, workflow.StatusEditorAssigned)
	e.SetEditor(t, p, editor)
	e.SeedAssignments(t, p, time.Now().Add(72*time.Hour), r1)

	path := fmt.Sprintf("/api/threads/reviewer/%d", p.ID)

	w := e.Do(t, "POST", path+"/messages", e.Token(t, r1), gin.H{"text": "Section 4 is missing a figure"})
	testutil.Status(t, http.StatusCreated, w)

	w = e.Do(t, "POST", path+"/messages", e.Token(t, editor), gin.H{"text": "Thanks", "reviewerID": r1.ID})
	testutil.Status(t, http.StatusCreated, w)

	w = e.Do(t, "GET", path+"?reviewerID="+r1.ID, e.Token(t, editor), nil)
	testutil.Status(t, http.StatusOK, w)

	var thread model.Thread
	testutil.Decode(t, w, &thread)
	assert.Len(t, thread.Messages, 2)
	assert.Equal(t, r1.ID, thread.ReviewerID)

	// Unassigned reviewers and authors stay out
	w = e.Do(t, "GET", path, e.Token(t, r2), nil)
	testutil.Status(t, http.StatusForbidden, w)

	w = e.Do(t, "GET", path+"?reviewerID="+r1.ID, e.Token(t, author), nil)
	testutil.Status(t, http.StatusForbidden, w)

	w = e.Do(t, "GET", path+"?reviewerID="+r2.ID, e.Token(t, editor), nil)
	testutil.Status(t, http.StatusNotFound, w)
}

func TestSupport(t *testing.T) {
	e := testutil.New(t)
	admin := e.SeedUser(t, model.RoleAdmin, "admin@example.com")
	author := e.SeedUser(t, model.RoleAuthor, "author@example.com")
	token := e.Token(t, author)

	w := e.Do(t, "POST", "/api/support/messages", token, gin.H{"text": "I can't upload my paper"})
	testutil.Status(t, http.StatusCreated, w)

	w = e.Do(t, "GET", "/api/support/threads", token, nil)
	testutil.Status(t, http.StatusForbidden, w)

	w = e.Do(t, "GET", "/api/support/threads", e.Token(t, admin), nil)
	testutil.Status(t, http.StatusOK, w)

	var threads []model.Thread
	testutil.Decode(t, w, &threads)
	require.Len(t, threads, 1)
	assert.Equal(t, author.ID, threads[0].OwnerID)

	w = e.Do(t, "POST", "/api/support/threads/"+author.ID+"/messages", e.Token(t, admin), gin.H{"text": "Try a smaller file"})
	testutil.Status(t, http.StatusCreated, w)

	w = e.Do(t, "POST", "/api/support/threads/nobody/messages", e.Token(t, admin), gin.H{"text": "hello"})
	testutil.Status(t, http.StatusNotFound, w)

	w = e.Do(t, "GET", "/api/support", token, nil)
	testutil.Status(t, http.StatusOK, w)

	var thread model.Thread
	testutil.Decode(t, w, &thread)
	require.Len(t, thread.Messages, 2)
	assert.Equal(t, model.RoleAdmin, thread.Messages[1].SenderRole)

	assert.Len(t, e.QueuedTo(t, author.Email), 1)
}
