package testutil

import (
	"mill-ops-api/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewInMemoryDB creates an in-memory SQLite DB and runs migrations.
func NewInMemoryDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Machine{},
		&models.Allotment{},
		&models.Roll{},
		&models.DispatchPlan{},
		&models.DispatchItem{},
		&models.ChatMessage{},
		&models.Notification{},
	); err != nil {
		return nil, err
	}
	return db, nil
}
