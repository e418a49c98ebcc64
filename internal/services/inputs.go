package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"bus_tracker/internal/models"
	"bus_tracker/internal/transit"
)

// ScheduleInput is the optional timetable of a bus.
type ScheduleInput struct {
	FirstTrip     string   `json:"first_trip"`
	LastTrip      string   `json:"last_trip"`
	Frequency     string   `json:"frequency"`
	OperatingDays []string `json:"operating_days"`
}

// StatusInput carries the availability flags a driver may set.
type StatusInput struct {
	IsActive       *bool `json:"is_active"`
	AvailableToday *bool `json:"available_today"`
}

// RouteInput is the body of a bus registration or full update.
type RouteInput struct {
	transit.RouteSpec

	ContactNumber   string        `json:"contact_number"`
	Schedule        ScheduleInput `json:"schedule"`
	CurrentStatus   *StatusInput  `json:"current_status"`
	FareCalculation string        `json:"fare_calculation"`

	// Optional GeoJSON LineString; derived from stop locations when empty.
	Geometry string `json:"geometry"`
}

var fareMethods = map[string]bool{"": true, "fixed": true, "distance_based": true, "stop_based": true}

// Validate reports every violation in the input at once.
func (in RouteInput) Validate() error {
	var violations []string
	if err := in.RouteSpec.Validate(); err != nil {
		var verr *transit.ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		violations = append(violations, verr.Violations...)
	}
	for _, d := range in.Schedule.OperatingDays {
		if !isWeekday(d) {
			violations = append(violations, fmt.Sprintf("operating_days: %q is not a weekday", d))
		}
	}
	if !fareMethods[in.FareCalculation] {
		violations = append(violations, "fare_calculation must be one of [fixed distance_based stop_based]")
	}
	return transit.NewValidationError(violations)
}

func isWeekday(d string) bool {
	for _, w := range models.AllWeekdays {
		if w == d {
			return true
		}
	}
	return false
}

// toModel builds a new route owned by driverID. Operator fields only apply
// to the bus type they belong to.
func (in RouteInput) toModel(driverID uint) models.Route {
	route := models.Route{
		BusNumber:       strings.TrimSpace(in.BusNumber),
		BusName:         strings.TrimSpace(in.BusName),
		BusType:         in.BusType,
		DriverID:        driverID,
		Source:          strings.TrimSpace(in.Source),
		Destination:     strings.TrimSpace(in.Destination),
		TotalDistance:   in.TotalDistance,
		TotalDuration:   in.TotalDuration,
		TotalFare:       in.TotalFare,
		FareCalculation: in.FareCalculation,
		Schedule: models.Schedule{
			FirstTrip:     in.Schedule.FirstTrip,
			LastTrip:      in.Schedule.LastTrip,
			Frequency:     in.Schedule.Frequency,
			OperatingDays: models.Weekdays(in.Schedule.OperatingDays),
		},
		CurrentStatus: models.CurrentStatus{IsActive: true, AvailableToday: true},
		Stops:         in.stops(),
	}
	if len(route.Schedule.OperatingDays) == 0 {
		route.Schedule.OperatingDays = models.AllWeekdays
	}
	switch transit.BusType(in.BusType) {
	case transit.BusGovernment:
		route.GovtAgency = in.GovtAgency
	case transit.BusPrivate:
		route.OperatorName = in.OperatorName
		route.ContactNumber = in.ContactNumber
	}
	if in.CurrentStatus != nil {
		if in.CurrentStatus.IsActive != nil {
			route.CurrentStatus.IsActive = *in.CurrentStatus.IsActive
		}
		if in.CurrentStatus.AvailableToday != nil {
			route.CurrentStatus.AvailableToday = *in.CurrentStatus.AvailableToday
		}
	}
	return route
}

// stops returns the submitted stops in stop order.
func (in RouteInput) stops() []models.Stop {
	out := make([]models.Stop, len(in.Stops))
	for i, s := range in.Stops {
		out[i] = models.Stop{
			StopName:                strings.TrimSpace(s.StopName),
			StopOrder:               s.StopOrder,
			DistanceFromSource:      s.DistanceFromSource,
			EstimatedTimeFromSource: s.EstimatedTimeFromSource,
			FareFromSource:          s.FareFromSource,
		}
		if s.Location != nil {
			lat, lng := s.Location.Lat, s.Location.Lng
			out[i].Lat, out[i].Lng = &lat, &lng
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StopOrder < out[j].StopOrder })
	return out
}

// LocationInput is a live position report from the driver.
type LocationInput struct {
	Lat              float64 `json:"lat" binding:"gte=-90,lte=90"`
	Lng              float64 `json:"lng" binding:"gte=-180,lte=180"`
	CurrentStop      string  `json:"current_stop"`
	NextStop         string  `json:"next_stop"`
	EstimatedArrival string  `json:"estimated_arrival"`
}

// SignupInput registers a passenger, driver or (when enabled) admin.
type SignupInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
