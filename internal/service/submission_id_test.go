package service_test

import (
	"bitwise74/conference-api/internal/service"
	"bitwise74/conference-api/internal/testutil"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCategoryPrefix(t *testing.T) {
	tests := map[string]string{
		"Machine Learning":           "ML",
		"Networks":                   "NET",
		"Computer Vision":            "CV",
		"Human-Computer Interaction": "HCI",
		"AI":                         "AI",
		"":                           "GEN",
	}

	for in, want := range tests {
		assert.Equal(t, want, service.CategoryPrefix(in), in)
	}
}

func TestNextSubmissionIDCountsPerPrefix(t *testing.T) {
	db := testutil.NewDB(t)

	next := func(category string) string {
		var id string
		require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
			var err error
			id, err = service.NextSubmissionID(tx, category)
			return err
		}))
		return id
	}

	assert.Equal(t, "ML-0001", next("Machine Learning"))
	assert.Equal(t, "ML-0002", next("Machine Learning"))
	assert.Equal(t, "NET-0001", next("Networks"))
	assert.Equal(t, "ML-0003", next("machine learning"))
}

func TestRolledBackSubmissionKeepsCounter(t *testing.T) {
	db := testutil.NewDB(t)

	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := service.NextSubmissionID(tx, "Networks"); err != nil {
			return err
		}
		return gorm.ErrInvalidData
	})
	require.ErrorIs(t, err, gorm.ErrInvalidData)

	var id string
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		id, err = service.NextSubmissionID(tx, "Networks")
		return err
	}))
	assert.Equal(t, "NET-0001", id)
}
