package paper

import (
	"bitwise74/conference-api/app/common"
	"bitwise74/conference-api/internal"
	"bitwise74/conference-api/internal/model"
	"bitwise74/conference-api/internal/policy"
	"bitwise74/conference-api/internal/service"
	"bitwise74/conference-api/pkg/middleware"
	"bitwise74/conference-api/pkg/response"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PaperRemindReviewer nudges a reviewer of the current round who hasn't submitted yet
func PaperRemindReviewer(c *gin.Context, d *internal.Deps) {
	paper, ok := common.LoadPaper(c, d, "id")
	if !ok {
		return
	}

	if !policy.EditsPaper(middleware.GetPrincipal(c), paper) {
		response.Fail(c, http.StatusForbidden, "You are not the editor of this paper")
		return
	}

	reviewerID := c.Param("reviewerID")

	var assignment *model.ReviewAssignment
	for _, a := range paper.CurrentAssignments() {
		if a.ReviewerID == reviewerID {
			assignment = &a
			break
		}
	}

	if assignment == nil {
		response.Fail(c, http.StatusNotFound, "The reviewer isn't assigned to this paper")
		return
	}

	if assignment.Status != model.AssignmentPending {
		response.Fail(c, http.StatusConflict, "The reviewer already submitted")
		return
	}

	email := common.UserEmail(d.DB, reviewerID)
	if email == "" {
		response.Fail(c, http.StatusNotFound, "Reviewer not found")
		return
	}

	var sent bool

	err := d.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		sent, err = service.RemindReviewer(tx, d.Outbox, assignment.ID, paper, email, assignment.Deadline, time.Now(), nil)
		return err
	})
	if err != nil {
		response.Internal(c, "Failed to queue reminder", err)
		return
	}

	if !sent {
		response.Fail(c, http.StatusConflict, "The reviewer already submitted")
		return
	}

	response.OK(c, http.StatusOK, "Reminder sent", gin.H{
		"reminderCount": assignment.ReminderCount + 1,
	})
}
