package payment

import (
	"bitwise74/conference-api/app/common"
	"bitwise74/conference-api/internal"
	"bitwise74/conference-api/internal/model"
	"bitwise74/conference-api/pkg/middleware"
	"bitwise74/conference-api/pkg/response"
	"net/http"

	"github.com/gin-gonic/gin"
)

func PaymentListMine(c *gin.Context, d *internal.Deps) {
	p := middleware.GetPrincipal(c)

	var out []model.Payment

	err := d.DB.
		Where("author_id = ?", p.UserID).
		Order("created_at DESC").
		Find(&out).
		Error
	if err != nil {
		response.Internal(c, "Failed to fetch payments", err)
		return
	}

	response.OK(c, http.StatusOK, "", out)
}

func PaymentList(c *gin.Context, d *internal.Deps) {
	limit, offset := common.Page(c)

	q := d.DB.Order("created_at DESC").Limit(limit).Offset(offset)
	if s := c.Query("status"); s != "" {
		q = q.Where("status = ?", s)
	}

	var out []model.Payment
	if err := q.Find(&out).Error; err != nil {
		response.Internal(c, "Failed to list payments", err)
		return
	}

	response.OK(c, http.StatusOK, "", out)
}

func RegistrationList(c *gin.Context, d *internal.Deps) {
	limit, offset := common.Page(c)

	var out []model.Registration

	err := d.DB.
		Order("registered_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&out).
		Error
	if err != nil {
		response.Internal(c, "Failed to list registrations", err)
		return
	}

	response.OK(c, http.StatusOK, "", out)
}
