// Package storetest opens throwaway in-memory databases for tests.
package storetest

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"bus_tracker/internal/models"
)

// NewDB returns a migrated in-memory SQLite database private to t.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&models.User{}, &models.Route{}, &models.Stop{}, &models.LocationHistory{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// PollachiRoute is a three-stop government route owned by driverID.
func PollachiRoute(busNumber string, driverID uint) models.Route {
	return models.Route{
		BusNumber:     busNumber,
		BusName:       "Pollachi Express",
		BusType:       "government",
		GovtAgency:    "TNSTC",
		DriverID:      driverID,
		Source:        "Pollachi",
		Destination:   "Coimbatore",
		TotalDistance: 45,
		TotalDuration: "1 hr 10 mins",
		TotalFare:     60,
		Schedule:      models.Schedule{FirstTrip: "05:30", LastTrip: "22:00", Frequency: "every 20 mins", OperatingDays: models.AllWeekdays},
		CurrentStatus: models.CurrentStatus{IsActive: true, AvailableToday: true},
		Stops: []models.Stop{
			{StopName: "Pollachi", StopOrder: 1, DistanceFromSource: 0, EstimatedTimeFromSource: "0 mins", FareFromSource: 0},
			{StopName: "Ukkadam", StopOrder: 2, DistanceFromSource: 25, EstimatedTimeFromSource: "40 mins", FareFromSource: 35},
			{StopName: "Coimbatore", StopOrder: 3, DistanceFromSource: 45, EstimatedTimeFromSource: "70 mins", FareFromSource: 60},
		},
	}
}
