package payment

import (
	"bitwise74/conference-api/internal"
	"bitwise74/conference-api/internal/membership"
	"bitwise74/conference-api/pkg/response"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// MembershipLookup returns the membership type behind an ID and the fee it pays
func MembershipLookup(c *gin.Context, d *internal.Deps) {
	if d.Members == nil {
		response.Fail(c, http.StatusServiceUnavailable, "Membership lookup is not available")
		return
	}

	m, err := d.Members.Lookup(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, membership.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, "Membership not found")
			return
		}

		response.Internal(c, "Failed to look up membership", err)
		return
	}

	response.OK(c, http.StatusOK, "", gin.H{
		"membership": m,
		"expired":    m.Expired(time.Now()),
		"fee":        d.Fees.Fee(m.Type),
		"currency":   d.Fees.Currency,
	})
}
