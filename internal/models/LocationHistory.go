package models

import (
	"time"

	"gorm.io/gorm"
)

// LocationHistory is one position report from the driver of a route.
type LocationHistory struct {
	gorm.Model
	RouteID     uint      `json:"route_id" gorm:"index"`
	DriverID    uint      `json:"driver_id" gorm:"index"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	CurrentStop string    `json:"current_stop"`
	NextStop    string    `json:"next_stop"`
	Timestamp   time.Time `json:"timestamp"`
}
