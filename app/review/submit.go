package review

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
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	errNotUnderReview   = errors.New("paper is not under review")
	errAlreadySubmitted = errors.New("review already submitted")
)

type reviewBody struct {
	validators.Ratings
	Comments       string `json:"comments"`
	Strengths      string `json:"strengths"`
	Weaknesses     string `json:"weaknesses"`
	Recommendation string `json:"recommendation"`
}

func (b *reviewBody) validate(draft bool) error {
	if err := validators.RatingsValidator(b.Ratings, draft); err != nil {
		return err
	}

	if err := validators.RecommendationValidator(b.Recommendation, draft); err != nil {
		return err
	}

	for _, t := range []string{b.Comments, b.Strengths, b.Weaknesses} {
		if err := validators.TextValidator(t); err != nil {
			return err
		}
	}

	return nil
}

func (b *reviewBody) toModel(paperID uint, reviewerID string, round int) *model.Review {
	return &model.Review{
		PaperID:        paperID,
		ReviewerID:     reviewerID,
		Round:          round,
		Originality:    b.Originality,
		Relevance:      b.Relevance,
		Technical:      b.Technical,
		Clarity:        b.Clarity,
		Overall:        b.Overall,
		Comments:       b.Comments,
		Strengths:      b.Strengths,
		Weaknesses:     b.Weaknesses,
		Recommendation: workflow.Recommendation(b.Recommendation),
	}
}

// ReviewSaveDraft stores an unfinished review. Ratings may still be missing.
func ReviewSaveDraft(c *gin.Context, d *internal.Deps) {
	p := middleware.GetPrincipal(c)

	paper, ok := common.LoadPaper(c, d, "paperID")
	if !ok {
		return
	}

	if currentAssignment(paper, p.UserID) == nil {
		response.Fail(c, http.StatusForbidden, "You are not assigned to review this paper")
		return
	}

	var data reviewBody
	if err := c.ShouldBindJSON(&data); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := data.validate(true); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	r := data.toModel(paper.ID, p.UserID, paper.ReviewRound)
	r.Status = model.ReviewPending

	err := d.DB.Transaction(func(tx *gorm.DB) error {
		locked, err := lockPaper(tx, paper.ID)
		if err != nil {
			return err
		}

		if locked.Status != workflow.StatusUnderReview {
			return errNotUnderReview
		}

		existing, err := findReview(tx, paper.ID, p.UserID, paper.ReviewRound)
		if err != nil {
			return err
		}

		if existing != nil && existing.Status == model.ReviewSubmitted {
			return errAlreadySubmitted
		}

		return saveReview(tx, r)
	})
	if err != nil {
		reviewError(c, err)
		return
	}

	response.OK(c, http.StatusOK, "Draft saved", r)
}

// ReviewSubmit stores the final review of the caller. Once every reviewer of
// the round has submitted the paper moves to Review Received.
func ReviewSubmit(c *gin.Context, d *internal.Deps) {
	p := middleware.GetPrincipal(c)

	paper, ok := common.LoadPaper(c, d, "paperID")
	if !ok {
		return
	}

	assignment := currentAssignment(paper, p.UserID)
	if assignment == nil {
		response.Fail(c, http.StatusForbidden, "You are not assigned to review this paper")
		return
	}

	var data reviewBody
	if err := c.ShouldBindJSON(&data); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := data.validate(false); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now()

	r := data.toModel(paper.ID, p.UserID, paper.ReviewRound)
	r.Status = model.ReviewSubmitted
	r.SubmittedAt = &now

	var allIn bool

	err := d.DB.Transaction(func(tx *gorm.DB) error {
		// Serializes reviewers of the same paper so exactly one of them sees
		// the last pending assignment disappear
		locked, err := lockPaper(tx, paper.ID)
		if err != nil {
			return err
		}

		if locked.Status != workflow.StatusUnderReview {
			return errNotUnderReview
		}

		if err := saveReview(tx, r); err != nil {
			return err
		}

		err = tx.Model(&model.ReviewAssignment{}).
			Where("id = ?", assignment.ID).
			Updates(map[string]any{
				"status":       model.AssignmentSubmitted,
				"submitted_at": now,
			}).Error
		if err != nil {
			return err
		}

		var pending int64

		err = tx.Model(&model.ReviewAssignment{}).
			Where("paper_id = ? AND round = ? AND status = ?", paper.ID, locked.ReviewRound, model.AssignmentPending).
			Count(&pending).
			Error
		if err != nil {
			return err
		}

		var editorEmail string
		if locked.EditorID != nil {
			if err := tx.Model(&model.User{}).Where("id = ?", *locked.EditorID).Pluck("email", &editorEmail).Error; err != nil {
				return err
			}
		}

		mails := []service.Mail{service.ReviewSubmittedMail(editorEmail, locked)}

		if pending == 0 {
			if err := service.Advance(tx, locked, workflow.EventAllReviewsIn, nil); err != nil {
				return err
			}

			allIn = true
			mails = append(mails, service.AllReviewsInMail(editorEmail, locked))
		}

		return d.Outbox.Enqueue(tx, mails...)
	})
	if err != nil {
		reviewError(c, err)
		return
	}

	status := workflow.StatusUnderReview
	if allIn {
		status = workflow.StatusReviewReceived
	}

	response.OK(c, http.StatusOK, "Review submitted", gin.H{
		"review":       r,
		"allReviewsIn": allIn,
		"paperStatus":  status,
	})
}

func lockPaper(tx *gorm.DB, id uint) (*model.Paper, error) {
	var p model.Paper

	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&p).
		Error
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func reviewError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errNotUnderReview):
		response.Fail(c, http.StatusConflict, "Reviews can only be changed while the paper is under review")
	case errors.Is(err, errAlreadySubmitted):
		response.Fail(c, http.StatusConflict, "The review was already submitted")
	default:
		common.WorkflowError(c, err)
	}
}
