package paper

import (
	"bitwise74/conference-api/internal"
	"bitwise74/conference-api/internal/service"
	"bitwise74/conference-api/pkg/response"
	"net/http"

	"github.com/gin-gonic/gin"
)

type category struct {
	Name   string `json:"name"`
	Prefix string `json:"prefix"`
}

// PaperCategories lists the configured categories with their submission ID prefix
func PaperCategories(c *gin.Context, d *internal.Deps) {
	out := make([]category, len(d.Settings.Categories))
	for i, name := range d.Settings.Categories {
		out[i] = category{Name: name, Prefix: service.CategoryPrefix(name)}
	}

	response.OK(c, http.StatusOK, "", out)
}
