package paper

import (
	"bitwise74/conference-api/app/common"
	"bitwise74/conference-api/internal"
	"bitwise74/conference-api/internal/model"
	"bitwise74/conference-api/internal/policy"
	"bitwise74/conference-api/internal/service"
	"bitwise74/conference-api/internal/workflow"
	"bitwise74/conference-api/pkg/middleware"
	"bitwise74/conference-api/pkg/response"
	"bitwise74/conference-api/pkg/validators"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type editBody struct {
	Title       *string  `json:"title"`
	Abstract    *string  `json:"abstract"`
	Keywords    []string `json:"keywords"`
	LockVersion int      `json:"lockVersion"`
}

// PaperEdit changes metadata of a paper that isn't under review yet
func PaperEdit(c *gin.Context, d *internal.Deps) {
	paper, ok := common.LoadPaper(c, d, "id")
	if !ok {
		return
	}

	if !policy.OwnsPaper(middleware.GetPrincipal(c), paper) {
		response.Fail(c, http.StatusForbidden, "You don't own this paper")
		return
	}

	var data editBody
	if err := c.ShouldBindJSON(&data); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if data.LockVersion != paper.LockVersion {
		response.Fail(c, http.StatusConflict, "The paper was changed by someone else, reload and try again")
		return
	}

	if !workflow.Can(paper.Status, workflow.EventEdit) {
		response.Fail(c, http.StatusConflict, "The paper can't be edited anymore")
		return
	}

	updates := map[string]any{}

	if data.Title != nil {
		t := strings.TrimSpace(*data.Title)
		if err := validators.TitleValidator(t); err != nil {
			response.Fail(c, http.StatusBadRequest, err.Error())
			return
		}

		updates["title"] = t
		paper.Title = t
	}

	if data.Abstract != nil {
		a := strings.TrimSpace(*data.Abstract)
		if err := validators.TextValidator(a); err != nil {
			response.Fail(c, http.StatusBadRequest, err.Error())
			return
		}

		updates["abstract"] = a
		paper.Abstract = a
	}

	if data.Keywords != nil {
		kw := model.ParseStringSlice(strings.Join(data.Keywords, ","))
		updates["keywords"] = kw
		paper.Keywords = kw
	}

	if len(updates) == 0 {
		response.Fail(c, http.StatusBadRequest, "Nothing to update")
		return
	}

	if err := service.Advance(d.DB, paper, workflow.EventEdit, updates); err != nil {
		common.WorkflowError(c, err)
		return
	}

	response.OK(c, http.StatusOK, "Paper updated", paper)
}
