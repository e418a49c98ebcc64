package transit

import (
	"errors"
	"strings"
	"testing"
)

func validSpec() RouteSpec {
	return RouteSpec{
		BusNumber:     "TN-41-N-1234",
		BusName:       "Pollachi Express",
		BusType:       "government",
		GovtAgency:    "TNSTC",
		Source:        "Pollachi",
		Destination:   "Coimbatore",
		TotalDistance: 45,
		TotalDuration: "1 hr 10 mins",
		TotalFare:     60,
		Stops: []StopSpec{
			{StopName: "Pollachi", StopOrder: 1, DistanceFromSource: 0, EstimatedTimeFromSource: "0 mins", FareFromSource: 0},
			{StopName: "Ukkadam", StopOrder: 2, DistanceFromSource: 25, EstimatedTimeFromSource: "40 mins", FareFromSource: 35},
			{StopName: "Coimbatore", StopOrder: 3, DistanceFromSource: 45, EstimatedTimeFromSource: "70 mins", FareFromSource: 60},
		},
	}
}

func TestValidateAcceptsWellFormedRoute(t *testing.T) {
	if err := validSpec().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateAggregatesViolations(t *testing.T) {
	s := validSpec()
	s.BusNumber = ""
	s.Source = ""
	s.TotalDistance = 0
	s.GovtAgency = ""

	err := s.Validate()
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	for _, want := range []string{
		"bus_number is required",
		"source is required",
		"total_distance must be greater than 0",
		"govt_agency is required for government buses",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("message %q missing %q", err.Error(), want)
		}
	}
	if len(verr.Violations) != 4 {
		t.Errorf("got %d violations, want 4: %v", len(verr.Violations), verr.Violations)
	}
}

func TestValidateLedgerRules(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*RouteSpec)
		want   string
	}{
		{"no stops", func(s *RouteSpec) { s.Stops = nil }, "stops must contain at least 1 item(s)"},
		{"starts at 2", func(s *RouteSpec) {
			for i := range s.Stops {
				s.Stops[i].StopOrder++
			}
		}, "stop_order must start at 1"},
		{"gap", func(s *RouteSpec) { s.Stops[2].StopOrder = 5 }, "stop_order must be contiguous"},
		{"duplicate", func(s *RouteSpec) { s.Stops[2].StopOrder = 2 }, "stop_order 2 is used more than once"},
		{"total fare mismatch", func(s *RouteSpec) { s.TotalFare = 55 }, "must equal the fare of the last stop"},
		{"negative fare", func(s *RouteSpec) { s.Stops[1].FareFromSource = -1 }, "stops[1].fare_from_source must be at least 0"},
		{"private operator", func(s *RouteSpec) { s.BusType = "private" }, "operator_name is required for private buses"},
		{"unknown type", func(s *RouteSpec) { s.BusType = "tram" }, "bus_type must be one of"},
		{"bad latitude", func(s *RouteSpec) { s.Stops[0].Location = &LatLng{Lat: 91} }, "stops[0].location.lat must be at most 90"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := validSpec()
			tc.mutate(&s)
			err := s.Validate()
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("message %q missing %q", err.Error(), tc.want)
			}
		})
	}
}

func TestValidateAllowsDecreasingFares(t *testing.T) {
	s := validSpec()
	s.Stops[1].FareFromSource = 80
	if err := s.Validate(); err != nil {
		t.Fatalf("non-monotonic fares should be accepted, got %v", err)
	}
}
