package copyright

import (
	"bitwise74/conference-api/app/common"
	"bitwise74/conference-api/internal"
	"bitwise74/conference-api/internal/model"
	"bitwise74/conference-api/internal/policy"
	"bitwise74/conference-api/internal/workflow"
	"bitwise74/conference-api/pkg/middleware"
	"bitwise74/conference-api/pkg/response"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ensureCopyright returns the copyright record of paper, creating it on first use
func ensureCopyright(db *gorm.DB, paper *model.Paper) (*model.Copyright, error) {
	err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.Copyright{
		SubmissionID: paper.SubmissionID,
		PaperID:      paper.ID,
		AuthorID:     paper.AuthorID,
		Status:       model.CopyrightPending,
	}).Error
	if err != nil {
		return nil, err
	}

	var cr model.Copyright
	if err := db.Where("submission_id = ?", paper.SubmissionID).First(&cr).Error; err != nil {
		return nil, err
	}

	return &cr, nil
}

// loadOwnAccepted loads the paper in paperID and checks it belongs to the
// caller and was accepted
func loadOwnAccepted(c *gin.Context, d *internal.Deps) (*model.Paper, bool) {
	paper, ok := common.LoadPaper(c, d, "paperID")
	if !ok {
		return nil, false
	}

	if !policy.OwnsPaper(middleware.GetPrincipal(c), paper) {
		response.Fail(c, http.StatusForbidden, "You don't own this paper")
		return nil, false
	}

	if paper.Status != workflow.StatusAccepted {
		response.Fail(c, http.StatusConflict, "The copyright form is available once the paper is accepted")
		return nil, false
	}

	return paper, true
}

// CopyrightFetch returns the copyright record of an accepted paper
func CopyrightFetch(c *gin.Context, d *internal.Deps) {
	paper, ok := loadOwnAccepted(c, d)
	if !ok {
		return
	}

	cr, err := ensureCopyright(d.DB, paper)
	if err != nil {
		response.Internal(c, "Failed to load copyright record", err)
		return
	}

	response.OK(c, http.StatusOK, "", cr)
}

func CopyrightList(c *gin.Context, d *internal.Deps) {
	limit, offset := common.Page(c)

	q := d.DB.Order("updated_at DESC").Limit(limit).Offset(offset)
	if s := c.Query("status"); s != "" {
		q = q.Where("status = ?", s)
	}

	var out []model.Copyright
	if err := q.Find(&out).Error; err != nil {
		response.Internal(c, "Failed to list copyright records", err)
		return
	}

	response.OK(c, http.StatusOK, "", out)
}

func SelectedList(c *gin.Context, d *internal.Deps) {
	limit, offset := common.Page(c)

	var out []model.SelectedUser

	err := d.DB.
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&out).
		Error
	if err != nil {
		response.Internal(c, "Failed to list selected users", err)
		return
	}

	response.OK(c, http.StatusOK, "", out)
}
