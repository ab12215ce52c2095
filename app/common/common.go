// Package common holds helpers shared by the route handlers
package common

import (
	"bitwise74/conference-api/internal"
	"bitwise74/conference-api/internal/model"
	"bitwise74/conference-api/internal/service"
	"bitwise74/conference-api/internal/workflow"
	"bitwise74/conference-api/pkg/response"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// Page reads the limit and page query parameters
func Page(c *gin.Context) (limit, offset int) {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	limit = min(limit, maxLimit)

	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}

	return limit, (page - 1) * limit
}

// LoadPaper loads the paper named by the route parameter param. On failure
// the response is already written and ok is false.
func LoadPaper(c *gin.Context, d *internal.Deps, param string) (p *model.Paper, ok bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid paper ID")
		return nil, false
	}

	p, err = service.LoadPaper(d.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Fail(c, http.StatusNotFound, "Paper not found")
			return nil, false
		}

		response.Internal(c, "Failed to load paper", err)
		return nil, false
	}

	return p, true
}

// WorkflowError maps errors of a paper status change to a response
func WorkflowError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrConflict):
		response.Fail(c, http.StatusConflict, "The paper was changed by someone else, reload and try again")
	case errors.Is(err, workflow.ErrIllegalTransition):
		response.Fail(c, http.StatusConflict, err.Error())
	default:
		response.Internal(c, "Failed to update paper status", err)
	}
}

// UserEmail returns the address of userID or an empty string
func UserEmail(db *gorm.DB, userID string) string {
	var email string

	db.Model(&model.User{}).Where("id = ?", userID).Pluck("email", &email)
	return email
}
