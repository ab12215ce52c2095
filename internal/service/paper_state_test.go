package service_test

import (
	"bitwise74/conference-api/internal/model"
	"bitwise74/conference-api/internal/service"
	"bitwise74/conference-api/internal/testutil"
	"bitwise74/conference-api/internal/workflow"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedPaper(t *testing.T, db *gorm.DB, status workflow.Status) *model.Paper {
	t.Helper()

	p := &model.Paper{
		SubmissionID: "NET-0001",
		Title:        "Congestion control at the edge",
		AuthorID:     "author-1",
		Category:     "Networks",
		Status:       status,
		ReviewRound:  1,
		LockVersion:  1,
	}
	require.NoError(t, db.Create(p).Error)

	return p
}

func TestAdvanceBumpsLockVersion(t *testing.T) {
	db := testutil.NewDB(t)
	p := seedPaper(t, db, workflow.StatusSubmitted)

	require.NoError(t, service.Advance(db, p, workflow.EventAssignEditor, map[string]any{"editor_id": "editor-1"}))
	assert.Equal(t, workflow.StatusEditorAssigned, p.Status)
	assert.Equal(t, 2, p.LockVersion)

	got, err := service.LoadPaper(db, p.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusEditorAssigned, got.Status)
	assert.Equal(t, 2, got.LockVersion)
	require.NotNil(t, got.EditorID)
	assert.Equal(t, "editor-1", *got.EditorID)
}

func TestAdvanceRejectsIllegalTransition(t *testing.T) {
	db := testutil.NewDB(t)
	p := seedPaper(t, db, workflow.StatusSubmitted)

	err := service.Advance(db, p, workflow.EventAccept, nil)
	require.ErrorIs(t, err, workflow.ErrIllegalTransition)
	assert.Equal(t, workflow.StatusSubmitted, p.Status)
	assert.Equal(t, 1, p.LockVersion)
}

func TestAdvanceWithStaleCopyConflicts(t *testing.T) {
	db := testutil.NewDB(t)
	p := seedPaper(t, db, workflow.StatusReviewReceived)

	stale := *p

	require.NoError(t, service.Advance(db, p, workflow.EventAccept, nil))

	err := service.Advance(db, &stale, workflow.EventReject, nil)
	require.ErrorIs(t, err, service.ErrConflict)

	got, err := service.LoadPaper(db, p.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusAccepted, got.Status)
}

func TestConcurrentDecisionsOnlyOneWins(t *testing.T) {
	db := testutil.NewDB(t)
	p := seedPaper(t, db, workflow.StatusReviewReceived)

	events := []workflow.Event{workflow.EventAccept, workflow.EventReject, workflow.EventAccept, workflow.EventReject}
	errs := make([]error, len(events))

	var wg sync.WaitGroup
	for i, ev := range events {
		wg.Add(1)
		go func() {
			defer wg.Done()

			cp := *p
			errs[i] = service.Advance(db, &cp, ev, nil)
		}()
	}
	wg.Wait()

	won := 0
	for _, err := range errs {
		if err == nil {
			won++
			continue
		}
		assert.ErrorIs(t, err, service.ErrConflict)
	}
	assert.Equal(t, 1, won)

	got, err := service.LoadPaper(db, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.LockVersion)
}
