package store

import (
	"gorm.io/gorm"

	"bus_tracker/internal/models"
)

// AutoMigrate creates or updates every table the service uses.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.Route{}, &models.Stop{}, &models.LocationHistory{})
}
