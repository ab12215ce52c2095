// Package policy decides which roles may call which route. Routes are keyed the
// same way gin reports them, e.g. "POST /api/papers/:id/reviewers".
package policy

import (
	"bitwise74/conference-api/internal/model"
	"slices"
	"strings"
)

var (
	author   = []model.Role{model.RoleAuthor}
	editor   = []model.Role{model.RoleEditor, model.RoleAdmin}
	reviewer = []model.Role{model.RoleReviewer}
	admin    = []model.Role{model.RoleAdmin}
	anyone   = []model.Role{model.RoleAuthor, model.RoleEditor, model.RoleReviewer, model.RoleAdmin}
)

// Rules lists every authenticated route. A route missing here is denied.
var Rules = map[string][]model.Role{
	"GET /api/validate": anyone,

	"GET /api/users/me":         anyone,
	"GET /api/users":            editor,
	"POST /api/users/staff":     editor,
	"PATCH /api/users/:id/role": admin,
	"DELETE /api/users/:id":     admin,

	"POST /api/papers":                           author,
	"GET /api/papers/mine":                       author,
	"GET /api/papers":                            editor,
	"GET /api/papers/:id":                        anyone,
	"PATCH /api/papers/:id":                      author,
	"POST /api/papers/:id/editor":                admin,
	"POST /api/papers/:id/reviewers":             editor,
	"POST /api/papers/:id/revision-request":      editor,
	"POST /api/papers/:id/revisions":             author,
	"POST /api/papers/:id/decision":              editor,
	"POST /api/papers/:id/reminders/:reviewerID": editor,
	"GET /api/papers/:id/reviews":                editor,

	"GET /api/reviews/assignments":    reviewer,
	"GET /api/reviews/:paperID":       reviewer,
	"PUT /api/reviews/:paperID/draft": reviewer,
	"POST /api/reviews/:paperID":      reviewer,

	"GET /api/threads/:kind/:paperID":           anyone,
	"POST /api/threads/:kind/:paperID/messages": anyone,

	"GET /api/support":                           anyone,
	"POST /api/support/messages":                 anyone,
	"GET /api/support/threads":                   admin,
	"POST /api/support/threads/:userID/messages": admin,

	"GET /api/copyright/:paperID":         author,
	"POST /api/copyright/:paperID/form":   author,
	"GET /api/copyright":                  admin,
	"POST /api/copyright/:paperID/review": admin,
	"GET /api/selected":                   admin,

	"GET /api/membership/:id":       anyone,
	"POST /api/payments":            author,
	"GET /api/payments/mine":        author,
	"GET /api/payments":             admin,
	"POST /api/payments/:id/verify": admin,
	"POST /api/payments/:id/reject": admin,
	"GET /api/registrations":        admin,

	"GET /api/admin/outbox":            admin,
	"POST /api/admin/outbox/:id/retry": admin,
}

// Key builds a rule key from method and route path.
func Key(method, path string) string {
	return strings.ToUpper(method) + " " + path
}

// Known reports whether the route has a rule at all.
func Known(method, path string) bool {
	_, ok := Rules[Key(method, path)]
	return ok
}

// Allowed reports whether role may call the route.
func Allowed(role model.Role, method, path string) bool {
	roles, ok := Rules[Key(method, path)]
	if !ok {
		return false
	}

	return slices.Contains(roles, role)
}
