package db

import (
	"fmt"

	"go_polyseo/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Models lists every table owned by the service.
func Models() []interface{} {
	return []interface{}{
		&model.Language{},
		&model.Content{},
		&model.Term{},
		&model.Redirect{},
		&model.Setting{},
	}
}

// Migrate runs database migrations for all models
func Migrate(db *gorm.DB, log *logrus.Entry) error {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	log.Info("Starting database migration...")

	models := Models()
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Infof("Database migration completed successfully (%d tables)", len(models))
	return nil
}
