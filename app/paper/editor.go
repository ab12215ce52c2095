package paper

import (
	"bitwise74/conference-api/app/common"
	"bitwise74/conference-api/internal"
	"bitwise74/conference-api/internal/model"
	"bitwise74/conference-api/internal/service"
	"bitwise74/conference-api/internal/workflow"
	"bitwise74/conference-api/pkg/response"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type editorBody struct {
	EditorID string `json:"editorID"`
}

// PaperAssignEditor hands a paper to an editor. Reassigning later keeps the status.
func PaperAssignEditor(c *gin.Context, d *internal.Deps) {
	paper, ok := common.LoadPaper(c, d, "id")
	if !ok {
		return
	}

	var data editorBody
	if err := c.ShouldBindJSON(&data); err != nil || data.EditorID == "" {
		response.Fail(c, http.StatusBadRequest, "No editor ID provided")
		return
	}

	var editor model.User

	err := d.DB.Where("id = ? AND role = ?", data.EditorID, model.RoleEditor).First(&editor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Fail(c, http.StatusBadRequest, "Editor not found")
			return
		}

		response.Internal(c, "Failed to look up editor", err)
		return
	}

	err = d.DB.Transaction(func(tx *gorm.DB) error {
		err := service.Advance(tx, paper, workflow.EventAssignEditor, map[string]any{"editor_id": editor.ID})
		if err != nil {
			return err
		}

		return d.Outbox.Enqueue(tx, service.EditorAssignedMail(editor.Email, paper))
	})
	if err != nil {
		common.WorkflowError(c, err)
		return
	}

	paper.EditorID = &editor.ID

	response.OK(c, http.StatusOK, "Editor assigned", paper)
}
