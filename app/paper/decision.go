package paper

import (
	"bitwise74/conference-api/app/common"
	"bitwise74/conference-api/internal"
	"bitwise74/conference-api/internal/policy"
	"bitwise74/conference-api/internal/service"
	"bitwise74/conference-api/internal/workflow"
	"bitwise74/conference-api/pkg/middleware"
	"bitwise74/conference-api/pkg/response"
	"bitwise74/conference-api/pkg/validators"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type decisionBody struct {
	Decision string `json:"decision"`
	Comments string `json:"comments"`
}

func PaperDecision(c *gin.Context, d *internal.Deps) {
	paper, ok := common.LoadPaper(c, d, "id")
	if !ok {
		return
	}

	if !policy.EditsPaper(middleware.GetPrincipal(c), paper) {
		response.Fail(c, http.StatusForbidden, "You are not the editor of this paper")
		return
	}

	var data decisionBody
	if err := c.ShouldBindJSON(&data); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	decision, err := workflow.ParseDecision(data.Decision)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "Decision must be one of Accept, Reject, Conditionally Accept or Revise & Resubmit")
		return
	}

	if err := validators.TextValidator(data.Comments); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	err = d.DB.Transaction(func(tx *gorm.DB) error {
		err := service.Advance(tx, paper, decision.Event(), map[string]any{
			"final_decision":  string(decision),
			"editor_comments": data.Comments,
		})
		if err != nil {
			return err
		}

		paper.FinalDecision = string(decision)
		paper.EditorComments = data.Comments

		return d.Outbox.Enqueue(tx, service.DecisionMail(paper))
	})
	if err != nil {
		common.WorkflowError(c, err)
		return
	}

	response.OK(c, http.StatusOK, "Decision recorded", paper)
}
