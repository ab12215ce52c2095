package paper

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
)

// PaperFetchMine lists the caller's own submissions
func PaperFetchMine(c *gin.Context, d *internal.Deps) {
	p := middleware.GetPrincipal(c)

	var papers []model.Paper

	err := d.DB.
		Preload("Versions").
		Where("author_id = ?", p.UserID).
		Order("created_at DESC").
		Find(&papers).
		Error
	if err != nil {
		response.Internal(c, "Failed to fetch papers", err)
		return
	}

	response.OK(c, http.StatusOK, "", papers)
}

// PaperList lists every paper for admins and the assigned ones for editors
func PaperList(c *gin.Context, d *internal.Deps) {
	p := middleware.GetPrincipal(c)
	limit, offset := common.Page(c)

	q := d.DB.Model(&model.Paper{})

	if !p.IsAdmin() {
		q = q.Where("editor_id = ?", p.UserID)
	}

	if s := c.Query("status"); s != "" {
		if !workflow.Status(s).Valid() {
			response.Fail(c, http.StatusBadRequest, "Invalid status")
			return
		}
		q = q.Where("status = ?", s)
	}

	if cat := c.Query("category"); cat != "" {
		q = q.Where("category = ?", cat)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		response.Internal(c, "Failed to count papers", err)
		return
	}

	var papers []model.Paper
	if err := q.Preload("ReviewAssignments").Order("created_at DESC").Limit(limit).Offset(offset).Find(&papers).Error; err != nil {
		response.Internal(c, "Failed to fetch papers", err)
		return
	}

	response.OK(c, http.StatusOK, "", gin.H{
		"papers": papers,
		"total":  total,
	})
}

func PaperFetch(c *gin.Context, d *internal.Deps) {
	paper, ok := common.LoadPaper(c, d, "id")
	if !ok {
		return
	}

	if !policy.CanSeePaper(middleware.GetPrincipal(c), paper) {
		response.Fail(c, http.StatusForbidden, "You don't have access to this paper")
		return
	}

	response.OK(c, http.StatusOK, "", paper)
}
