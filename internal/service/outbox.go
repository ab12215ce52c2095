package service

import (
	"bitwise74/conference-api/internal/model"
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	outboxBatch      = 50
	outboxBaseDelay  = 30 * time.Second
	outboxMaxBackoff = time.Hour
)

var ErrOutboxNotDead = errors.New("only dead messages can be retried")

type OutboxOpts struct {
	Workers     int
	MaxAttempts int
}

// Outbox stores side effects next to the write that caused them and delivers
// them in the background. A message is retried with exponential backoff and
// parked as dead once it runs out of attempts.
type Outbox struct {
	db          *gorm.DB
	mailer      Mailer
	workers     int
	maxAttempts int
	now         func() time.Time
}

func NewOutbox(db *gorm.DB, mailer Mailer, o OutboxOpts) *Outbox {
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 5
	}

	return &Outbox{
		db:          db,
		mailer:      mailer,
		workers:     o.Workers,
		maxAttempts: o.MaxAttempts,
		now:         time.Now,
	}
}

// Enqueue records mails using tx, so they are only sent if tx commits
func (o *Outbox) Enqueue(tx *gorm.DB, mails ...Mail) error {
	if len(mails) == 0 {
		return nil
	}

	now := o.now()
	rows := make([]model.OutboxMessage, 0, len(mails))

	for _, m := range mails {
		if m.To == "" {
			continue
		}

		rows = append(rows, model.OutboxMessage{
			ID:            uuid.NewString(),
			Kind:          model.OutboxKindMail,
			Payload:       datatypes.NewJSONType(m),
			Status:        model.OutboxPending,
			NextAttemptAt: now,
		})
	}

	if len(rows) == 0 {
		return nil
	}

	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to enqueue mail, %w", err)
	}

	return nil
}

// DispatchDue delivers every message whose next attempt is due and returns
// how many were sent
func (o *Outbox) DispatchDue(ctx context.Context) (int, error) {
	var due []model.OutboxMessage

	err := o.db.WithContext(ctx).
		Where("status = ? AND next_attempt_at <= ?", model.OutboxPending, o.now()).
		Order("next_attempt_at").
		Limit(outboxBatch).
		Find(&due).
		Error
	if err != nil {
		return 0, fmt.Errorf("failed to load due outbox messages, %w", err)
	}

	var sent atomic.Int32
	p := pool.New().WithMaxGoroutines(o.workers)

	for i := range due {
		msg := &due[i]
		p.Go(func() {
			if o.deliver(ctx, msg) {
				sent.Add(1)
			}
		})
	}
	p.Wait()

	return int(sent.Load()), nil
}

func (o *Outbox) deliver(ctx context.Context, msg *model.OutboxMessage) bool {
	sendErr := o.mailer.Send(ctx, msg.Payload.Data())
	now := o.now()

	updates := map[string]any{"attempts": msg.Attempts + 1}
	if sendErr == nil {
		updates["status"] = model.OutboxSent
		updates["sent_at"] = now
		updates["last_error"] = ""
	} else {
		updates["last_error"] = sendErr.Error()

		if msg.Attempts+1 >= o.maxAttempts {
			updates["status"] = model.OutboxDead
			zap.L().Error("Outbox message is dead after max attempts",
				zap.String("id", msg.ID),
				zap.String("to", msg.Payload.Data().To),
				zap.Error(sendErr))
		} else {
			updates["next_attempt_at"] = now.Add(backoff(msg.Attempts + 1))
			zap.L().Warn("Outbox delivery failed, will retry",
				zap.String("id", msg.ID),
				zap.Int("attempt", msg.Attempts+1),
				zap.Error(sendErr))
		}
	}

	err := o.db.
		Model(&model.OutboxMessage{}).
		Where("id = ? AND status = ? AND attempts = ?", msg.ID, model.OutboxPending, msg.Attempts).
		Updates(updates).
		Error
	if err != nil {
		zap.L().Error("Failed to update outbox message", zap.String("id", msg.ID), zap.Error(err))
	}

	return sendErr == nil && err == nil
}

func backoff(attempt int) time.Duration {
	d := outboxBaseDelay << (attempt - 1)
	if d <= 0 || d > outboxMaxBackoff {
		return outboxMaxBackoff
	}

	return d
}

// Retry puts a dead message back in the queue with a fresh set of attempts
func (o *Outbox) Retry(ctx context.Context, id string) error {
	res := o.db.WithContext(ctx).
		Model(&model.OutboxMessage{}).
		Where("id = ? AND status = ?", id, model.OutboxDead).
		Updates(map[string]any{
			"status":          model.OutboxPending,
			"attempts":        0,
			"next_attempt_at": o.now(),
		})
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return ErrOutboxNotDead
	}

	return nil
}

// Run dispatches on every tick until ctx is cancelled
func (o *Outbox) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	zap.L().Debug("Outbox dispatcher attached", zap.Duration("tick_every", every))

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := o.DispatchDue(ctx)
			if err != nil {
				zap.L().Error("Outbox dispatch failed", zap.Error(err))
				continue
			}

			if n > 0 {
				zap.L().Debug("Outbox dispatched messages", zap.Int("sent", n))
			}
		}
	}
}

// List returns messages in status, newest first. An empty status lists all.
func (o *Outbox) List(ctx context.Context, status string, limit int) ([]model.OutboxMessage, error) {
	var out []model.OutboxMessage

	q := o.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}

	return out, nil
}
