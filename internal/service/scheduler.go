package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SchedulerOpts struct {
	// Cron spec of the overdue review sweep
	ReminderSpec string
}

// NewScheduler registers the maintenance jobs. The caller starts and stops
// the returned cron.
func NewScheduler(db *gorm.DB, o *Outbox, opts SchedulerOpts) (*cron.Cron, error) {
	if opts.ReminderSpec == "" {
		opts.ReminderSpec = "@hourly"
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	jobs := []struct {
		name string
		spec string
		fn   func(time.Time) (int, error)
	}{
		{"token_cleanup", "@daily", func(now time.Time) (int, error) { return TokenCleanup(db, now) }},
		{"account_cleanup", "@daily", func(now time.Time) (int, error) { return AccountCleanup(db, now) }},
		{"review_reminders", opts.ReminderSpec, func(now time.Time) (int, error) { return ReviewReminderSweep(db, o, now) }},
	}

	for _, j := range jobs {
		if _, err := c.AddFunc(j.spec, func() {
			n, err := j.fn(time.Now())
			if err != nil {
				zap.L().Error("Scheduled job failed", zap.String("job", j.name), zap.Error(err))
				return
			}

			zap.L().Debug("Scheduled job finished", zap.String("job", j.name), zap.Int("affected", n))
		}); err != nil {
			return nil, err
		}

		zap.L().Debug("Scheduled job attached", zap.String("job", j.name), zap.String("spec", j.spec))
	}

	return c, nil
}

// StopScheduler waits for running jobs or gives up when ctx ends
func StopScheduler(ctx context.Context, c *cron.Cron) {
	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
	}
}
