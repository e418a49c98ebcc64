package models

import (
	"time"

	"gorm.io/gorm"

	"bus_tracker/internal/transit"
)

// Route is a registered bus and the fixed path it runs. A driver owns many
// routes; each route owns its ordered stops.
type Route struct {
	gorm.Model

	BusNumber     string `json:"bus_number" gorm:"uniqueIndex;not null"`
	BusName       string `json:"bus_name" gorm:"not null"`
	BusType       string `json:"bus_type" gorm:"index;not null"`
	GovtAgency    string `json:"govt_agency,omitempty"`
	OperatorName  string `json:"operator_name,omitempty"`
	ContactNumber string `json:"contact_number,omitempty"`

	// Owning driver (a User with role "driver")
	DriverID uint `json:"driver_id" gorm:"index;not null"`

	Source        string  `json:"source" gorm:"index;not null"`
	Destination   string  `json:"destination" gorm:"index;not null"`
	TotalDistance float64 `json:"total_distance"` // km
	TotalDuration string  `json:"total_duration"`
	TotalFare     float64 `json:"total_fare"`

	Schedule      Schedule      `json:"schedule" gorm:"embedded"`
	CurrentStatus CurrentStatus `json:"current_status" gorm:"embedded"`

	// "fixed", "distance_based" or "stop_based"
	FareCalculation string `json:"fare_calculation" gorm:"default:stop_based"`

	// WKB LineString through the stop locations, nil when stops carry no coordinates
	Geometry []byte `json:"-" gorm:"type:bytea"`

	Stops []Stop `json:"stops" gorm:"foreignKey:RouteID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// Schedule is operator-supplied timetable information.
type Schedule struct {
	FirstTrip     string   `json:"first_trip"`
	LastTrip      string   `json:"last_trip"`
	Frequency     string   `json:"frequency"`
	OperatingDays Weekdays `json:"operating_days"`
}

// CurrentStatus holds the availability flags and the last reported position.
type CurrentStatus struct {
	IsActive          bool       `json:"is_active" gorm:"not null"`
	AvailableToday    bool       `json:"available_today" gorm:"not null"`
	CurrentLat        *float64   `json:"current_lat,omitempty"`
	CurrentLng        *float64   `json:"current_lng,omitempty"`
	LocationUpdatedAt *time.Time `json:"location_updated_at,omitempty"`
	CurrentStop       string     `json:"current_stop,omitempty"`
	NextStop          string     `json:"next_stop,omitempty"`
	EstimatedArrival  string     `json:"estimated_arrival,omitempty"`
}

// View returns the query-side representation used by matching and fare logic.
func (r Route) View() transit.Route {
	stops := make([]transit.Stop, len(r.Stops))
	for i, s := range r.Stops {
		stops[i] = s.LedgerStop()
	}
	return transit.Route{
		ID:             r.ID,
		DriverID:       r.DriverID,
		BusType:        transit.BusType(r.BusType),
		Source:         r.Source,
		Destination:    r.Destination,
		IsActive:       r.CurrentStatus.IsActive,
		AvailableToday: r.CurrentStatus.AvailableToday,
		Stops:          stops,
	}
}
