package copyright

import (
	"bitwise74/conference-api/app/common"
	"bitwise74/conference-api/internal"
	"bitwise74/conference-api/internal/model"
	"bitwise74/conference-api/internal/service"
	"bitwise74/conference-api/pkg/response"
	"bitwise74/conference-api/pkg/validators"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errNoForm = errors.New("no form uploaded")

type reviewBody struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

// CopyrightReview approves or rejects an uploaded form. Approval adds the
// author to the selected users, once per submission no matter how often it
// is repeated.
func CopyrightReview(c *gin.Context, d *internal.Deps) {
	paper, ok := common.LoadPaper(c, d, "paperID")
	if !ok {
		return
	}

	var data reviewBody
	if err := c.ShouldBindJSON(&data); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if data.Status != model.CopyrightApproved && data.Status != model.CopyrightRejected {
		response.Fail(c, http.StatusBadRequest, "Status must be Approved or Rejected")
		return
	}

	if err := validators.TextValidator(data.Comment); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	var cr model.Copyright

	err := d.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("submission_id = ?", paper.SubmissionID).
			First(&cr).
			Error
		if err != nil {
			return err
		}

		allowed := cr.Status == model.CopyrightUploaded ||
			(cr.Status == model.CopyrightApproved && data.Status == model.CopyrightApproved)
		if !allowed {
			return errNoForm
		}

		err = tx.Model(&cr).Updates(map[string]any{
			"status":        data.Status,
			"admin_comment": data.Comment,
		}).Error
		if err != nil {
			return err
		}

		cr.Status = data.Status
		cr.AdminComment = data.Comment

		if data.Status == model.CopyrightApproved {
			now := time.Now()

			err = tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "submission_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"paper_id", "author_id", "author_name", "author_email", "title", "category", "updated_at"}),
			}).Create(&model.SelectedUser{
				SubmissionID: paper.SubmissionID,
				PaperID:      paper.ID,
				AuthorID:     paper.AuthorID,
				AuthorName:   paper.AuthorName,
				AuthorEmail:  paper.AuthorEmail,
				Title:        paper.Title,
				Category:     paper.Category,
				CreatedAt:    now,
				UpdatedAt:    now,
			}).Error
			if err != nil {
				return err
			}
		}

		return d.Outbox.Enqueue(tx, service.CopyrightDecisionMail(paper.AuthorEmail, &cr))
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			response.Fail(c, http.StatusNotFound, "No copyright record for this paper")
		case errors.Is(err, errNoForm):
			response.Fail(c, http.StatusConflict, "There is no uploaded form to review")
		default:
			response.Internal(c, "Failed to review copyright form", err)
		}
		return
	}

	response.OK(c, http.StatusOK, "Copyright form "+data.Status, cr)
}
