package models

import (
	"gorm.io/gorm"
)

// Migrate runs database migrations
func Migrate(db *gorm.DB) error {
	// Older deployments named the creation column "timestamp"
	if db.Migrator().HasTable(&History{}) && db.Migrator().HasColumn(&History{}, "timestamp") {
		if err := db.Migrator().RenameColumn(&History{}, "timestamp", "created_at"); err != nil {
			return err
		}
	}

	return db.AutoMigrate(
		&User{},
		&History{},
	)
}
