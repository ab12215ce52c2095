package paper

import (
	"bitwise74/conference-api/app/common"
	"bitwise74/conference-api/internal"
	"bitwise74/conference-api/internal/model"
	"bitwise74/conference-api/internal/policy"
	"bitwise74/conference-api/pkg/middleware"
	"bitwise74/conference-api/pkg/response"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// PaperReviews returns the submitted reviews of a round, the current one by default
func PaperReviews(c *gin.Context, d *internal.Deps) {
	paper, ok := common.LoadPaper(c, d, "id")
	if !ok {
		return
	}

	if !policy.EditsPaper(middleware.GetPrincipal(c), paper) {
		response.Fail(c, http.StatusForbidden, "You are not the editor of this paper")
		return
	}

	round := paper.ReviewRound
	if r := c.Query("round"); r != "" {
		n, err := strconv.Atoi(r)
		if err != nil || n < 1 || n > paper.ReviewRound {
			response.Fail(c, http.StatusBadRequest, "Invalid round")
			return
		}
		round = n
	}

	var reviews []model.Review

	err := d.DB.
		Table(model.ReviewTableFor(round)).
		Where("paper_id = ? AND round = ? AND status = ?", paper.ID, round, model.ReviewSubmitted).
		Order("submitted_at ASC").
		Find(&reviews).
		Error
	if err != nil {
		response.Internal(c, "Failed to fetch reviews", err)
		return
	}

	response.OK(c, http.StatusOK, "", gin.H{
		"round":   round,
		"reviews": reviews,
	})
}
