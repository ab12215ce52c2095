package service

import (
	"bitwise74/conference-api/internal/model"
	"bitwise74/conference-api/internal/workflow"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Automatic reminders for one assignment are at least this far apart
const ReminderGap = 24 * time.Hour

type overdueAssignment struct {
	AssignmentID  uint
	Deadline      time.Time
	Title         string
	SubmissionID  string
	ReviewerEmail string
}

// RemindReviewer bumps the reminder counter of an assignment and queues the
// reminder mail. With notBefore set the write only happens if the previous
// reminder is older than notBefore, which keeps overlapping sweeps from
// reminding twice. Reports whether a reminder was queued.
func RemindReviewer(tx *gorm.DB, o *Outbox, assignmentID uint, p *model.Paper, email string, deadline time.Time, now time.Time, notBefore *time.Time) (bool, error) {
	q := tx.
		Model(&model.ReviewAssignment{}).
		Where("id = ? AND status = ?", assignmentID, model.AssignmentPending)
	if notBefore != nil {
		q = q.Where("last_reminded_at IS NULL OR last_reminded_at < ?", *notBefore)
	}

	res := q.Updates(map[string]any{
		"reminder_count":   gorm.Expr("reminder_count + 1"),
		"last_reminded_at": now,
	})
	if res.Error != nil {
		return false, fmt.Errorf("failed to update assignment, %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return false, nil
	}

	if err := o.Enqueue(tx, ReviewReminderMail(email, p, deadline)); err != nil {
		return false, err
	}

	return true, nil
}

// ReviewReminderSweep queues reminders for every pending assignment of the
// current round whose deadline has passed
func ReviewReminderSweep(db *gorm.DB, o *Outbox, now time.Time) (int, error) {
	var rows []overdueAssignment

	cutoff := now.Add(-ReminderGap)

	err := db.
		Table("review_assignments AS a").
		Select("a.id AS assignment_id, a.deadline, p.title, p.submission_id, u.email AS reviewer_email").
		Joins("JOIN papers p ON p.id = a.paper_id AND p.review_round = a.round").
		Joins("JOIN users u ON u.id = a.reviewer_id").
		Where("a.status = ? AND a.deadline < ? AND p.status = ?", model.AssignmentPending, now, workflow.StatusUnderReview).
		Where("a.last_reminded_at IS NULL OR a.last_reminded_at < ?", cutoff).
		Scan(&rows).
		Error
	if err != nil {
		return 0, fmt.Errorf("failed to query overdue assignments, %w", err)
	}

	sent := 0
	for _, r := range rows {
		p := &model.Paper{Title: r.Title, SubmissionID: r.SubmissionID}

		err := db.Transaction(func(tx *gorm.DB) error {
			ok, err := RemindReviewer(tx, o, r.AssignmentID, p, r.ReviewerEmail, r.Deadline, now, &cutoff)
			if ok {
				sent++
			}
			return err
		})
		if err != nil {
			zap.L().Error("Failed to queue review reminder", zap.Uint("assignment", r.AssignmentID), zap.Error(err))
		}
	}

	return sent, nil
}
