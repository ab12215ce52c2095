package common

import (
	"bitwise74/conference-api/internal"
	"bitwise74/conference-api/internal/service"
	"bitwise74/conference-api/pkg/response"
	"bitwise74/conference-api/pkg/validators"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}

// Upload validates the multipart file in field and stores it under prefix.
// On failure the response is already written and ok is false. Callers must
// service.Discard the object if the write referencing it fails.
func Upload(c *gin.Context, d *internal.Deps, field, prefix string, allowed []string) (obj *service.StoredObject, ok bool) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			response.Fail(c, http.StatusBadRequest, validators.ErrNoFile.Error())
			return nil, false
		}

		if tooLarge(err) {
			response.Fail(c, http.StatusRequestEntityTooLarge, "Request body size exceeds limit")
			return nil, false
		}

		response.Fail(c, http.StatusBadRequest, "Invalid multipart body")
		return nil, false
	}

	code, mime, f, err := validators.FileValidator(fh, d.Settings.MaxUploadSize, allowed)
	if err != nil {
		if code == http.StatusInternalServerError {
			response.Internal(c, "Failed to validate file", err)
			return nil, false
		}

		response.Fail(c, code, err.Error())
		return nil, false
	}
	defer f.Close()

	obj, err = service.Store(c.Request.Context(), d.Storage, prefix, mime, f, fh.Size)
	if err != nil {
		response.Internal(c, "Failed to store file", err)
		return nil, false
	}

	return obj, true
}
