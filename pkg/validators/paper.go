package validators

import (
	"errors"
	"strings"
)

var (
	ErrTitleEmpty      = errors.New("no title provided")
	ErrTitleTooLong    = errors.New("title is too long")
	ErrCategoryEmpty   = errors.New("no category provided")
	ErrCategoryUnknown = errors.New("unknown category")
	ErrCommentsTooLong = errors.New("comments are too long")
	ErrMessageEmpty    = errors.New("message can't be empty")
)

const (
	maxTitleLength = 300
	maxTextLength  = 10000
)

func TitleValidator(t string) error {
	if t == "" {
		return ErrTitleEmpty
	}

	if len(t) > maxTitleLength {
		return ErrTitleTooLong
	}

	return nil
}

// CategoryValidator returns the canonical spelling of c. Any non-empty
// category is accepted when no list is configured.
func CategoryValidator(c string, allowed []string) (string, error) {
	c = strings.TrimSpace(c)
	if c == "" {
		return "", ErrCategoryEmpty
	}

	if len(allowed) == 0 {
		return c, nil
	}

	for _, a := range allowed {
		if strings.EqualFold(a, c) {
			return a, nil
		}
	}

	return "", ErrCategoryUnknown
}

// TextValidator bounds free text such as comments and notes
func TextValidator(t string) error {
	if len(t) > maxTextLength {
		return ErrCommentsTooLong
	}

	return nil
}

func MessageValidator(t string) error {
	if strings.TrimSpace(t) == "" {
		return ErrMessageEmpty
	}

	return TextValidator(t)
}
