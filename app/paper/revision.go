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
	"gorm.io/gorm"
)

type revisionRequestBody struct {
	Comments string `json:"comments"`
}

// PaperRequestRevision sends the paper back to its author
func PaperRequestRevision(c *gin.Context, d *internal.Deps) {
	paper, ok := common.LoadPaper(c, d, "id")
	if !ok {
		return
	}

	if !policy.EditsPaper(middleware.GetPrincipal(c), paper) {
		response.Fail(c, http.StatusForbidden, "You are not the editor of this paper")
		return
	}

	var data revisionRequestBody
	if err := c.ShouldBindJSON(&data); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validators.TextValidator(data.Comments); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	err := d.DB.Transaction(func(tx *gorm.DB) error {
		err := service.Advance(tx, paper, workflow.EventRequestRevision, map[string]any{"editor_comments": data.Comments})
		if err != nil {
			return err
		}

		return d.Outbox.Enqueue(tx, service.RevisionRequestedMail(paper, data.Comments))
	})
	if err != nil {
		common.WorkflowError(c, err)
		return
	}

	paper.EditorComments = data.Comments

	response.OK(c, http.StatusOK, "Revision requested", paper)
}

// PaperSubmitRevision uploads a new version of the manuscript
func PaperSubmitRevision(c *gin.Context, d *internal.Deps) {
	paper, ok := common.LoadPaper(c, d, "id")
	if !ok {
		return
	}

	if !policy.OwnsPaper(middleware.GetPrincipal(c), paper) {
		response.Fail(c, http.StatusForbidden, "You don't own this paper")
		return
	}

	if !workflow.Can(paper.Status, workflow.EventSubmitRevision) {
		response.Fail(c, http.StatusConflict, "No revision was requested for this paper")
		return
	}

	note := strings.TrimSpace(c.PostForm("note"))
	if err := validators.TextValidator(note); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	obj, ok := common.Upload(c, d, "file", "papers", validators.PDFOnly)
	if !ok {
		return
	}

	version := &model.PaperVersion{
		PaperID: paper.ID,
		Version: len(paper.Versions) + 1,
		FileURL: obj.URL,
		FileKey: obj.Key,
		Note:    note,
	}

	err := d.DB.Transaction(func(tx *gorm.DB) error {
		err := service.Advance(tx, paper, workflow.EventSubmitRevision, map[string]any{
			"file_url": obj.URL,
			"file_key": obj.Key,
		})
		if err != nil {
			return err
		}

		if err := tx.Create(version).Error; err != nil {
			return err
		}

		if paper.EditorID == nil {
			return nil
		}

		var editorEmail string
		if err := tx.Model(&model.User{}).Where("id = ?", *paper.EditorID).Pluck("email", &editorEmail).Error; err != nil {
			return err
		}

		return d.Outbox.Enqueue(tx, service.RevisionSubmittedMail(editorEmail, paper, version.Version))
	})
	if err != nil {
		service.Discard(d.Storage, obj.Key)
		common.WorkflowError(c, err)
		return
	}

	paper.FileURL = obj.URL
	paper.FileKey = obj.Key
	paper.Versions = append(paper.Versions, *version)

	response.OK(c, http.StatusCreated, "Revision submitted", paper)
}
