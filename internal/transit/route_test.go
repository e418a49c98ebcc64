package transit

import "testing"

func pollachiRoute() Route {
	return Route{
		ID:             1,
		DriverID:       7,
		BusType:        BusGovernment,
		Source:         "Pollachi",
		Destination:    "Coimbatore",
		IsActive:       true,
		AvailableToday: true,
		Stops: []Stop{
			{Name: "Coimbatore", Order: 3, DistanceFromSource: 45, FareFromSource: 60},
			{Name: "Pollachi", Order: 1, DistanceFromSource: 0, FareFromSource: 0},
			{Name: "Ukkadam", Order: 2, DistanceFromSource: 25, FareFromSource: 35},
		},
	}
}

func TestIsVisible(t *testing.T) {
	cases := []struct {
		active, today, want bool
	}{
		{true, true, true},
		{true, false, false},
		{false, true, false},
		{false, false, false},
	}
	for _, tc := range cases {
		r := Route{IsActive: tc.active, AvailableToday: tc.today}
		if got := IsVisible(r); got != tc.want {
			t.Errorf("IsVisible(active=%v, today=%v) = %v, want %v", tc.active, tc.today, got, tc.want)
		}
	}
}

func TestLedgerOrdersByStopOrder(t *testing.T) {
	l := NewLedger(pollachiRoute().Stops)
	want := []string{"Pollachi", "Ukkadam", "Coimbatore"}
	for i, name := range want {
		if l[i].Name != name {
			t.Fatalf("ledger[%d] = %q, want %q", i, l[i].Name, name)
		}
	}
}

func TestFindStopByName(t *testing.T) {
	r := pollachiRoute()

	s, ok := FindStopByName(r, "ukka")
	if !ok || s.Name != "Ukkadam" {
		t.Fatalf("expected partial match on Ukkadam, got %+v ok=%v", s, ok)
	}
	s, ok = FindStopByName(r, "COIMBATORE")
	if !ok || s.Order != 3 {
		t.Fatalf("expected case-insensitive match, got %+v ok=%v", s, ok)
	}
	if _, ok := FindStopByName(r, "Madurai"); ok {
		t.Fatal("expected no match for unknown stop")
	}
	if _, ok := FindStopByName(r, "  "); ok {
		t.Fatal("blank query must not match")
	}
}

func TestFindStopByNameReturnsFirstOverlap(t *testing.T) {
	r := Route{Stops: []Stop{
		{Name: "New Central Depot", Order: 2},
		{Name: "Central Station", Order: 1},
	}}
	s, ok := FindStopByName(r, "central")
	if !ok {
		t.Fatal("expected a match")
	}
	if s.Name != "Central Station" {
		t.Errorf("got %q, want the lowest-order match %q", s.Name, "Central Station")
	}
}
