package root_test

import (
	"bitwise74/conference-api/internal/model"
	"bitwise74/conference-api/internal/testutil"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeartbeat(t *testing.T) {
	e := testutil.New(t)

	w := e.Do(t, "HEAD", "/api/heartbeat", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestValidate(t *testing.T) {
	e := testutil.New(t)
	editor := e.SeedUser(t, model.RoleEditor, "editor@example.com")

	testutil.Status(t, http.StatusUnauthorized, e.Do(t, "GET", "/api/validate", "", nil))

	w := e.Do(t, "GET", "/api/validate", e.Token(t, editor), nil)
	testutil.Status(t, http.StatusOK, w)

	var out struct {
		UserID string     `json:"userID"`
		Role   model.Role `json:"role"`
	}
	testutil.Decode(t, w, &out)
	assert.Equal(t, editor.ID, out.UserID)
	assert.Equal(t, model.RoleEditor, out.Role)
}
