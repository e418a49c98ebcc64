package transit

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// StopSpec is one stop as submitted by a driver.
type StopSpec struct {
	StopName                string  `json:"stop_name" validate:"required"`
	StopOrder               int     `json:"stop_order" validate:"gte=1"`
	DistanceFromSource      float64 `json:"distance_from_source" validate:"gte=0"`
	EstimatedTimeFromSource string  `json:"estimated_time_from_source" validate:"required"`
	FareFromSource          float64 `json:"fare_from_source" validate:"gte=0"`
	Location                *LatLng `json:"location,omitempty"`
}

// LatLng is an optional WGS84 position.
type LatLng struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

// RouteSpec is a complete bus and route definition as submitted by a driver.
type RouteSpec struct {
	BusNumber     string     `json:"bus_number" validate:"required"`
	BusName       string     `json:"bus_name" validate:"required"`
	BusType       string     `json:"bus_type" validate:"required,oneof=government private contract shuttle"`
	GovtAgency    string     `json:"govt_agency"`
	OperatorName  string     `json:"operator_name"`
	Source        string     `json:"source" validate:"required"`
	Destination   string     `json:"destination" validate:"required"`
	TotalDistance float64    `json:"total_distance" validate:"gt=0"`
	TotalDuration string     `json:"total_duration" validate:"required"`
	TotalFare     float64    `json:"total_fare" validate:"gte=0"`
	Stops         []StopSpec `json:"stops" validate:"min=1,dive"`
}

const fareTolerance = 1e-9

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks every field and every cross-field rule and reports all
// violations at once.
func (s RouteSpec) Validate() error {
	var violations []string

	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		for _, fe := range verrs {
			violations = append(violations, describe(fe))
		}
	}

	switch BusType(s.BusType) {
	case BusGovernment:
		if strings.TrimSpace(s.GovtAgency) == "" {
			violations = append(violations, "govt_agency is required for government buses")
		}
	case BusPrivate:
		if strings.TrimSpace(s.OperatorName) == "" {
			violations = append(violations, "operator_name is required for private buses")
		}
	}

	violations = append(violations, ledgerViolations(s.Stops, s.TotalFare)...)
	return NewValidationError(violations)
}

// ledgerViolations checks that stop orders run 1..n without gaps or
// repeats and that the total fare is the fare of the last stop.
func ledgerViolations(stops []StopSpec, totalFare float64) []string {
	if len(stops) == 0 {
		return nil
	}
	sorted := make([]StopSpec, len(stops))
	copy(sorted, stops)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].StopOrder < sorted[j].StopOrder })

	var out []string
	if sorted[0].StopOrder != 1 {
		out = append(out, "stop_order must start at 1")
	}
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1].StopOrder, sorted[i].StopOrder
		switch {
		case cur == prev:
			out = append(out, fmt.Sprintf("stop_order %d is used more than once", cur))
		case cur != prev+1:
			out = append(out, fmt.Sprintf("stop_order must be contiguous, %d follows %d", cur, prev))
		}
	}
	last := sorted[len(sorted)-1]
	if math.Abs(last.FareFromSource-totalFare) > fareTolerance {
		out = append(out, fmt.Sprintf("total_fare %.2f must equal the fare of the last stop (%.2f)", totalFare, last.FareFromSource))
	}
	return out
}

func describe(fe validator.FieldError) string {
	name := fe.Namespace()
	if i := strings.Index(name, "."); i >= 0 {
		name = name[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", name, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", name, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", name, fe.Param())
	case "min":
		return fmt.Sprintf("%s must contain at least %s item(s)", name, fe.Param())
	default:
		return name + " is invalid"
	}
}

// LedgerStops converts submitted stops to ledger stops.
func (s RouteSpec) LedgerStops() []Stop {
	out := make([]Stop, len(s.Stops))
	for i, st := range s.Stops {
		out[i] = Stop{
			Name:               st.StopName,
			Order:              st.StopOrder,
			DistanceFromSource: st.DistanceFromSource,
			FareFromSource:     st.FareFromSource,
		}
	}
	return out
}
