// Package db opens the primary database
package db

import (
	"bitwise74/conference-api/internal/model"
	"bitwise74/conference-api/pkg/util"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New opens the database configured under db.* and migrates it
func New() (*gorm.DB, error) {
	driver := viper.GetString("db.driver")
	dsn := viper.GetString("db.dsn")

	var dialector gorm.Dialector

	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		if dsn == "" {
			dsn = "database.db"
		}

		// If running in a docker container don't allow the sqlite file to be created.
		// The host should instead mount it using volumes
		if util.IsRunningInDocker() {
			if _, err := os.Stat(dsn); errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("SQLite database file not mounted, please use docker volumes to mount it to /app/%s", dsn)
			}
		}

		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s database, %w", driver, err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates every table, including the second round review table
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.VerificationToken{},
		&model.ResendRequest{},
		&model.Paper{},
		&model.ReviewAssignment{},
		&model.PaperVersion{},
		&model.UserSubmission{},
		&model.SubmissionCounter{},
		&model.Review{},
		&model.Thread{},
		&model.Message{},
		&model.Copyright{},
		&model.SelectedUser{},
		&model.Payment{},
		&model.Registration{},
		&model.OutboxMessage{},
	)
	if err != nil {
		return fmt.Errorf("failed to automigrate tables, %w", err)
	}

	if err := db.Table(model.ReReviewTable).AutoMigrate(&model.Review{}); err != nil {
		return fmt.Errorf("failed to automigrate %s, %w", model.ReReviewTable, err)
	}

	return nil
}
