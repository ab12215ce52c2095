package service_test

import (
	"bitwise74/conference-api/internal/model"
	"bitwise74/conference-api/internal/service"
	"bitwise74/conference-api/internal/testutil"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestEnqueueSkipsMailsWithoutRecipient(t *testing.T) {
	db := testutil.NewDB(t)
	o := service.NewOutbox(db, &testutil.RecordingMailer{}, service.OutboxOpts{})

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return o.Enqueue(tx,
			service.Mail{To: "a@example.com", Subject: "one"},
			service.Mail{Subject: "nobody"},
		)
	}))
	require.NoError(t, o.Enqueue(db))

	out, err := o.List(context.Background(), model.OutboxPending, 10)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "one", out[0].Payload.Data().Subject)
}

func TestEnqueueRollsBackWithTransaction(t *testing.T) {
	db := testutil.NewDB(t)
	o := service.NewOutbox(db, &testutil.RecordingMailer{}, service.OutboxOpts{})

	boom := errors.New("boom")
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := o.Enqueue(tx, service.Mail{To: "a@example.com"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	out, err := o.List(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDispatchDueDelivers(t *testing.T) {
	db := testutil.NewDB(t)
	mailer := &testutil.RecordingMailer{}
	o := service.NewOutbox(db, mailer, service.OutboxOpts{Workers: 2})

	require.NoError(t, o.Enqueue(db,
		service.Mail{To: "a@example.com", Subject: "a"},
		service.Mail{To: "b@example.com", Subject: "b"},
		service.Mail{To: "c@example.com", Subject: "c"},
	))

	n, err := o.DispatchDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, mailer.Count())

	// Sent messages are not delivered again
	n, err = o.DispatchDue(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 3, mailer.Count())

	sent, err := o.List(context.Background(), model.OutboxSent, 10)
	require.NoError(t, err)
	assert.Len(t, sent, 3)
	for _, m := range sent {
		assert.NotNil(t, m.SentAt)
		assert.Equal(t, 1, m.Attempts)
	}
}

func TestFailedDeliveryBacksOff(t *testing.T) {
	db := testutil.NewDB(t)
	mailer := &testutil.RecordingMailer{Fail: true}
	o := service.NewOutbox(db, mailer, service.OutboxOpts{MaxAttempts: 3})

	require.NoError(t, o.Enqueue(db, service.Mail{To: "a@example.com"}))

	n, err := o.DispatchDue(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	pending, err := o.List(context.Background(), model.OutboxPending, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].Attempts)
	assert.NotEmpty(t, pending[0].LastError)

	// Not due again until the backoff passes
	n, err = o.DispatchDue(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	var msg model.OutboxMessage
	require.NoError(t, db.First(&msg).Error)
	assert.Equal(t, 1, msg.Attempts)
}

func TestDeadMessageRetry(t *testing.T) {
	db := testutil.NewDB(t)
	mailer := &testutil.RecordingMailer{Fail: true}
	o := service.NewOutbox(db, mailer, service.OutboxOpts{MaxAttempts: 1})

	require.NoError(t, o.Enqueue(db, service.Mail{To: "a@example.com", Subject: "hi"}))

	_, err := o.DispatchDue(context.Background())
	require.NoError(t, err)

	dead, err := o.List(context.Background(), model.OutboxDead, 10)
	require.NoError(t, err)
	require.Len(t, dead, 1)

	require.ErrorIs(t, o.Retry(context.Background(), "missing"), service.ErrOutboxNotDead)
	require.NoError(t, o.Retry(context.Background(), dead[0].ID))
	require.ErrorIs(t, o.Retry(context.Background(), dead[0].ID), service.ErrOutboxNotDead)

	mailer.Fail = false

	n, err := o.DispatchDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var msg model.OutboxMessage
	require.NoError(t, db.Where("id = ?", dead[0].ID).First(&msg).Error)
	assert.Equal(t, model.OutboxSent, msg.Status)
	assert.Equal(t, 1, msg.Attempts)
}
