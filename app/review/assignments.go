package review

import (
	"bitwise74/conference-api/internal"
	"bitwise74/conference-api/internal/workflow"
	"bitwise74/conference-api/pkg/middleware"
	"bitwise74/conference-api/pkg/response"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type assignmentView struct {
	AssignmentID  uint            `json:"assignmentId"`
	PaperID       uint            `json:"paperId"`
	SubmissionID  string          `json:"submissionId"`
	Title         string          `json:"title"`
	Category      string          `json:"category"`
	Abstract      string          `json:"abstract"`
	FileURL       string          `json:"fileUrl"`
	PaperStatus   workflow.Status `json:"paperStatus"`
	Round         int             `json:"round"`
	Status        string          `json:"status"`
	Deadline      time.Time       `json:"deadline"`
	ReminderCount int             `json:"reminderCount"`
}

// ReviewAssignments lists the caller's assignments of every paper's current round
func ReviewAssignments(c *gin.Context, d *internal.Deps) {
	p := middleware.GetPrincipal(c)

	var out []assignmentView

	err := d.DB.
		Table("review_assignments AS a").
		Select(`a.id AS assignment_id, a.paper_id, p.submission_id, p.title, p.category, p.abstract,
			p.file_url, p.status AS paper_status, a.round, a.status, a.deadline, a.reminder_count`).
		Joins("JOIN papers p ON p.id = a.paper_id AND p.review_round = a.round").
		Where("a.reviewer_id = ?", p.UserID).
		Order("a.deadline ASC").
		Scan(&out).
		Error
	if err != nil {
		response.Internal(c, "Failed to fetch assignments", err)
		return
	}

	if out == nil {
		out = []assignmentView{}
	}

	response.OK(c, http.StatusOK, "", out)
}
