package paper

import (
	"bitwise74/conference-api/app/common"
	"bitwise74/conference-api/internal"
	"bitwise74/conference-api/internal/model"
	"bitwise74/conference-api/internal/policy"
	"bitwise74/conference-api/internal/service"
	"bitwise74/conference-api/internal/workflow"
	"bitwise74/conference-api/pkg/middleware"
	"bitwise74/conference-api/pkg/response"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const maxDeadlineDays = 60

type reviewersBody struct {
	ReviewerIDs  []string `json:"reviewerIDs"`
	DeadlineDays int      `json:"deadlineDays"`
}

// PaperAssignReviewers adds reviewers to the paper's review round and moves
// it to Under Review. A paper coming back from a revision starts a new round.
func PaperAssignReviewers(c *gin.Context, d *internal.Deps) {
	paper, ok := common.LoadPaper(c, d, "id")
	if !ok {
		return
	}

	if !policy.EditsPaper(middleware.GetPrincipal(c), paper) {
		response.Fail(c, http.StatusForbidden, "You are not the editor of this paper")
		return
	}

	var data reviewersBody
	if err := c.ShouldBindJSON(&data); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if data.DeadlineDays == 0 {
		data.DeadlineDays = d.Settings.DeadlineDays
	}

	if data.DeadlineDays < 1 || data.DeadlineDays > maxDeadlineDays {
		response.Fail(c, http.StatusBadRequest, "Deadline must be between 1 and 60 days")
		return
	}

	ids := slices.Compact(slices.Sorted(slices.Values(data.ReviewerIDs)))
	ids = slices.DeleteFunc(ids, func(id string) bool { return id == "" })
	if len(ids) == 0 {
		response.Fail(c, http.StatusBadRequest, "No reviewers provided")
		return
	}

	if !workflow.Can(paper.Status, workflow.EventAssignReviewers) {
		response.Fail(c, http.StatusConflict, "Reviewers can't be assigned in status "+string(paper.Status))
		return
	}

	var reviewers []model.User

	err := d.DB.
		Where("id IN ? AND role = ?", ids, model.RoleReviewer).
		Find(&reviewers).
		Error
	if err != nil {
		response.Internal(c, "Failed to look up reviewers", err)
		return
	}

	if len(reviewers) != len(ids) {
		response.Fail(c, http.StatusBadRequest, "Every assignee must be an existing reviewer")
		return
	}

	round := paper.ReviewRound
	if paper.Status == workflow.StatusRevisionSubmitted {
		round++
	}

	assigned := make(map[string]bool)
	for _, a := range paper.ReviewAssignments {
		if a.Round == round {
			assigned[a.ReviewerID] = true
		}
	}

	deadline := time.Now().Add(time.Duration(data.DeadlineDays) * 24 * time.Hour)
	created := make([]model.ReviewAssignment, 0, len(reviewers))
	mails := make([]service.Mail, 0, len(reviewers))

	for _, r := range reviewers {
		if assigned[r.ID] {
			continue
		}

		created = append(created, model.ReviewAssignment{
			PaperID:    paper.ID,
			ReviewerID: r.ID,
			Round:      round,
			Deadline:   deadline,
			Status:     model.AssignmentPending,
		})
		mails = append(mails, service.ReviewerAssignedMail(r.Email, paper, deadline))
	}

	err = d.DB.Transaction(func(tx *gorm.DB) error {
		err := service.Advance(tx, paper, workflow.EventAssignReviewers, map[string]any{"review_round": round})
		if err != nil {
			return err
		}

		if len(created) > 0 {
			if err := tx.Create(&created).Error; err != nil {
				return err
			}
		}

		return d.Outbox.Enqueue(tx, mails...)
	})
	if err != nil {
		common.WorkflowError(c, err)
		return
	}

	paper.ReviewRound = round

	response.OK(c, http.StatusOK, "Reviewers assigned", gin.H{
		"status":      paper.Status,
		"round":       round,
		"assignments": created,
	})
}
