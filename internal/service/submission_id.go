package service

import (
	"bitwise74/conference-api/internal/model"
	"fmt"
	"strings"
	"unicode"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CategoryPrefix derives the submission ID prefix of a category: the initials
// of a multi word category ("Computer Science" -> "CS") or the first three
// letters of a single word one ("Management" -> "MAN").
func CategoryPrefix(category string) string {
	words := strings.FieldsFunc(category, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var b strings.Builder

	switch {
	case len(words) == 0:
		return "GEN"
	case len(words) == 1:
		for i, r := range []rune(words[0]) {
			if i == 3 {
				break
			}
			b.WriteRune(unicode.ToUpper(r))
		}
	default:
		for i, w := range words {
			if i == 4 {
				break
			}
			b.WriteRune(unicode.ToUpper([]rune(w)[0]))
		}
	}

	return b.String()
}

// NextSubmissionID allocates the next ID for category. It must run inside the
// transaction that creates the paper: the counter row stays locked until
// commit, so concurrent submissions in one category get distinct numbers.
func NextSubmissionID(tx *gorm.DB, category string) (string, error) {
	prefix := CategoryPrefix(category)

	err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.SubmissionCounter{Prefix: prefix, Seq: 0}).
		Error
	if err != nil {
		return "", fmt.Errorf("failed to create submission counter, %w", err)
	}

	err = tx.Model(&model.SubmissionCounter{}).
		Where("prefix = ?", prefix).
		Update("seq", gorm.Expr("seq + 1")).
		Error
	if err != nil {
		return "", fmt.Errorf("failed to bump submission counter, %w", err)
	}

	var counter model.SubmissionCounter
	if err := tx.Where("prefix = ?", prefix).First(&counter).Error; err != nil {
		return "", fmt.Errorf("failed to read submission counter, %w", err)
	}

	return fmt.Sprintf("%s-%04d", prefix, counter.Seq), nil
}
