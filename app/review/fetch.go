package review

import (
	"bitwise74/conference-api/app/common"
	"bitwise74/conference-api/internal"
	"bitwise74/conference-api/pkg/middleware"
	"bitwise74/conference-api/pkg/response"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ReviewFetch returns the caller's draft or submitted review of the current round
func ReviewFetch(c *gin.Context, d *internal.Deps) {
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

	r, err := findReview(d.DB, paper.ID, p.UserID, paper.ReviewRound)
	if err != nil {
		response.Internal(c, "Failed to fetch review", err)
		return
	}

	response.OK(c, http.StatusOK, "", gin.H{
		"assignment": assignment,
		"review":     r,
	})
}
