package admin

import (
	"bitwise74/conference-api/app/common"
	"bitwise74/conference-api/internal"
	"bitwise74/conference-api/internal/model"
	"bitwise74/conference-api/internal/service"
	"bitwise74/conference-api/pkg/response"
	"errors"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
)

var outboxStatuses = []string{model.OutboxPending, model.OutboxSent, model.OutboxDead}

// OutboxList shows queued side effects, mostly used to find dead ones
func OutboxList(c *gin.Context, d *internal.Deps) {
	status := c.Query("status")
	if status != "" && !slices.Contains(outboxStatuses, status) {
		response.Fail(c, http.StatusBadRequest, "Invalid status")
		return
	}

	limit, _ := common.Page(c)

	out, err := d.Outbox.List(c.Request.Context(), status, limit)
	if err != nil {
		response.Internal(c, "Failed to list outbox messages", err)
		return
	}

	response.OK(c, http.StatusOK, "", out)
}

func OutboxRetry(c *gin.Context, d *internal.Deps) {
	err := d.Outbox.Retry(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrOutboxNotDead) {
			response.Fail(c, http.StatusConflict, "Only dead messages can be retried")
			return
		}

		response.Internal(c, "Failed to retry outbox message", err)
		return
	}

	response.OK(c, http.StatusOK, "Message queued again", nil)
}
