package copyright

import (
	"bitwise74/conference-api/app/common"
	"bitwise74/conference-api/internal"
	"bitwise74/conference-api/internal/model"
	"bitwise74/conference-api/internal/service"
	"bitwise74/conference-api/pkg/response"
	"bitwise74/conference-api/pkg/validators"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CopyrightUpload stores the signed copyright form. A rejected form may be
// replaced, an approved one can't.
func CopyrightUpload(c *gin.Context, d *internal.Deps) {
	paper, ok := loadOwnAccepted(c, d)
	if !ok {
		return
	}

	cr, err := ensureCopyright(d.DB, paper)
	if err != nil {
		response.Internal(c, "Failed to load copyright record", err)
		return
	}

	if cr.Status == model.CopyrightApproved {
		response.Fail(c, http.StatusConflict, "The copyright form was already approved")
		return
	}

	obj, ok := common.Upload(c, d, "file", "copyright", validators.Documents)
	if !ok {
		return
	}

	oldKey := cr.FormKey

	res := d.DB.
		Model(&model.Copyright{}).
		Where("id = ? AND status <> ?", cr.ID, model.CopyrightApproved).
		Updates(map[string]any{
			"form_url":      obj.URL,
			"form_key":      obj.Key,
			"status":        model.CopyrightUploaded,
			"admin_comment": "",
		})
	if res.Error != nil || res.RowsAffected == 0 {
		service.Discard(d.Storage, obj.Key)

		if res.Error != nil {
			response.Internal(c, "Failed to update copyright record", res.Error)
			return
		}

		response.Fail(c, http.StatusConflict, "The copyright form was already approved")
		return
	}

	service.Discard(d.Storage, oldKey)

	cr.FormURL = obj.URL
	cr.FormKey = obj.Key
	cr.Status = model.CopyrightUploaded
	cr.AdminComment = ""

	response.OK(c, http.StatusOK, "Copyright form uploaded", cr)
}
