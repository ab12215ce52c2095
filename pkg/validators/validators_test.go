package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmailValidator(t *testing.T) {
	assert.NoError(t, EmailValidator("author@example.org"))
	assert.ErrorIs(t, EmailValidator(""), ErrEmailEmpty)
	assert.ErrorIs(t, EmailValidator("not-an-email"), ErrEmailInvalid)
	assert.ErrorIs(t, EmailValidator("Jane <jane@example.org>"), ErrEmailInvalid)
	assert.Equal(t, "jane@example.org", NormalizeEmail("  Jane@Example.ORG "))
}

func TestPasswordValidator(t *testing.T) {
	assert.ErrorIs(t, PasswordValidator(""), ErrPasswordEmpty)
	assert.ErrorIs(t, PasswordValidator("short"), ErrPasswordTooShort)
	assert.NoError(t, PasswordValidator("long enough"))
}

func TestRatingsValidator(t *testing.T) {
	full := Ratings{Originality: 5, Relevance: 4, Technical: 3, Clarity: 2, Overall: 1}
	assert.NoError(t, RatingsValidator(full, false))

	partial := Ratings{Originality: 3}
	assert.Error(t, RatingsValidator(partial, false))
	assert.NoError(t, RatingsValidator(partial, true))

	tooHigh := full
	tooHigh.Overall = 6
	assert.Error(t, RatingsValidator(tooHigh, true))
}

func TestRecommendationValidator(t *testing.T) {
	assert.NoError(t, RecommendationValidator("Minor Revision", false))
	assert.ErrorIs(t, RecommendationValidator("", false), ErrRecommendationInvalid)
	assert.NoError(t, RecommendationValidator("", true))
	assert.ErrorIs(t, RecommendationValidator("Strong Accept", false), ErrRecommendationInvalid)
}
