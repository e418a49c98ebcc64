package models

import (
	"gorm.io/gorm"

	"bus_tracker/internal/transit"
)

// Stop is a point along a route with cumulative distance and fare from the
// route origin. StopOrder runs 1..n along the route.
type Stop struct {
	gorm.Model

	RouteID uint `json:"route_id" gorm:"index;not null"`

	StopName                string  `json:"stop_name" gorm:"index;not null"`
	StopOrder               int     `json:"stop_order" gorm:"not null"`
	DistanceFromSource      float64 `json:"distance_from_source"` // km
	EstimatedTimeFromSource string  `json:"estimated_time_from_source"`
	FareFromSource          float64 `json:"fare_from_source"`

	Lat *float64 `json:"lat,omitempty"`
	Lng *float64 `json:"lng,omitempty"`
}

func (s Stop) LedgerStop() transit.Stop {
	return transit.Stop{
		Name:               s.StopName,
		Order:              s.StopOrder,
		DistanceFromSource: s.DistanceFromSource,
		FareFromSource:     s.FareFromSource,
	}
}
