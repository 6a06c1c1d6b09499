package repositories

import (
	"fmt"

	"bloxstore/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate creates the collections the storefront expects.
// Production stores are provisioned by hand; this serves development and tests.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&productRow{},
		&models.Profile{},
		&models.Order{},
		&models.Notification{},
		&models.SiteSettings{},
		&models.Account{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate remote store: %w", err)
	}
	return nil
}
