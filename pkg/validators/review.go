package validators

import (
	"bitwise74/conference-api/internal/workflow"
	"errors"
	"fmt"
)

var ErrRecommendationInvalid = errors.New("invalid recommendation")

type Ratings struct {
	Originality int `json:"originality"`
	Relevance   int `json:"relevance"`
	Technical   int `json:"technical"`
	Clarity     int `json:"clarity"`
	Overall     int `json:"overall"`
}

// RatingsValidator requires every axis to be rated 1 to 5. Drafts may leave
// axes at 0.
func RatingsValidator(r Ratings, draft bool) error {
	axes := []struct {
		name string
		v    int
	}{
		{"originality", r.Originality},
		{"relevance", r.Relevance},
		{"technical", r.Technical},
		{"clarity", r.Clarity},
		{"overall", r.Overall},
	}

	for _, a := range axes {
		if draft && a.v == 0 {
			continue
		}

		if a.v < 1 || a.v > 5 {
			return fmt.Errorf("%s rating must be between 1 and 5", a.name)
		}
	}

	return nil
}

func RecommendationValidator(r string, draft bool) error {
	if draft && r == "" {
		return nil
	}

	if !workflow.Recommendation(r).Valid() {
		return ErrRecommendationInvalid
	}

	return nil
}
