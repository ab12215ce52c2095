package paper

import (
	"bitwise74/conference-api/app/common"
	"bitwise74/conference-api/internal"
	"bitwise74/conference-api/internal/model"
	"bitwise74/conference-api/internal/service"
	"bitwise74/conference-api/internal/workflow"
	"bitwise74/conference-api/pkg/middleware"
	"bitwise74/conference-api/pkg/response"
	"bitwise74/conference-api/pkg/validators"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"
)

const bookingCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

type submitForm struct {
	Title    string `form:"title"`
	Category string `form:"category"`
	Abstract string `form:"abstract"`
	Keywords string `form:"keywords"`
}

func duplicateSubmission(c *gin.Context, s *model.UserSubmission) {
	response.FailWith(c, http.StatusBadRequest, "You have already submitted a paper", gin.H{
		"submissionId": s.SubmissionID,
		"bookingId":    s.BookingID,
	})
}

// PaperSubmit accepts a new manuscript. Each author email may submit once.
func PaperSubmit(c *gin.Context, d *internal.Deps) {
	p := middleware.GetPrincipal(c)

	var form submitForm
	if err := c.ShouldBind(&form); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	form.Title = strings.TrimSpace(form.Title)
	if err := validators.TitleValidator(form.Title); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	category, err := validators.CategoryValidator(form.Category, d.Settings.Categories)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	var author model.User
	if err := d.DB.Where("id = ?", p.UserID).First(&author).Error; err != nil {
		response.Internal(c, "Failed to load author", err)
		return
	}

	var existing model.UserSubmission

	err = d.DB.Where("email = ?", author.Email).First(&existing).Error
	if err == nil {
		duplicateSubmission(c, &existing)
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		response.Internal(c, "Failed to check for earlier submissions", err)
		return
	}

	obj, ok := common.Upload(c, d, "file", "papers", validators.PDFOnly)
	if !ok {
		return
	}

	bookingID, err := gonanoid.Generate(bookingCharset, 10)
	if err != nil {
		service.Discard(d.Storage, obj.Key)
		response.Internal(c, "Failed to generate booking ID", err)
		return
	}
	bookingID = "BK-" + bookingID

	paper := &model.Paper{
		Title:       form.Title,
		AuthorID:    author.ID,
		AuthorName:  author.Username,
		AuthorEmail: author.Email,
		Category:    category,
		Abstract:    strings.TrimSpace(form.Abstract),
		Keywords:    model.ParseStringSlice(form.Keywords),
		FileURL:     obj.URL,
		FileKey:     obj.Key,
		Status:      workflow.StatusSubmitted,
		ReviewRound: 1,
		LockVersion: 1,
	}

	err = d.DB.Transaction(func(tx *gorm.DB) error {
		id, err := service.NextSubmissionID(tx, category)
		if err != nil {
			return err
		}
		paper.SubmissionID = id

		if err := tx.Create(paper).Error; err != nil {
			return err
		}

		err = tx.Create(&model.PaperVersion{
			PaperID: paper.ID,
			Version: 1,
			FileURL: obj.URL,
			FileKey: obj.Key,
			Note:    "Initial submission",
		}).Error
		if err != nil {
			return err
		}

		err = tx.Create(&model.UserSubmission{
			Email:        author.Email,
			SubmissionID: paper.SubmissionID,
			BookingID:    bookingID,
		}).Error
		if err != nil {
			return err
		}

		return d.Outbox.Enqueue(tx, service.SubmissionReceivedMail(paper, bookingID))
	})
	if err != nil {
		service.Discard(d.Storage, obj.Key)

		// Lost a race against another submission with the same email
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if d.DB.Where("email = ?", author.Email).First(&existing).Error == nil {
				duplicateSubmission(c, &existing)
				return
			}
		}

		response.Internal(c, "Failed to save submission", err)
		return
	}

	response.OK(c, http.StatusCreated, "Paper submitted", gin.H{
		"paper":     paper,
		"bookingId": bookingID,
	})
}
