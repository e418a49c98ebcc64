package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"bus_tracker/internal/models"
	"bus_tracker/internal/store/storetest"
	"bus_tracker/internal/transit"
)

func TestRouteStoreCreateAndFind(t *testing.T) {
	ctx := context.Background()
	s := NewRouteStore(storetest.NewDB(t))

	route := storetest.PollachiRoute("TN-01", 7)
	// insert stops out of order; reads must come back in stop order
	route.Stops[0], route.Stops[2] = route.Stops[2], route.Stops[0]
	if err := s.Create(ctx, &route); err != nil {
		t.Fatalf("create: %v", err)
	}
	if route.ID == 0 {
		t.Fatal("expected an id after create")
	}

	got, err := s.FindByID(ctx, route.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got.Stops) != 3 {
		t.Fatalf("got %d stops, want 3", len(got.Stops))
	}
	for i, want := range []string{"Pollachi", "Ukkadam", "Coimbatore"} {
		if got.Stops[i].StopName != want {
			t.Errorf("stop %d = %q, want %q", i, got.Stops[i].StopName, want)
		}
	}
	if len(got.Schedule.OperatingDays) != 7 {
		t.Errorf("operating days not round-tripped: %v", got.Schedule.OperatingDays)
	}
	if got.FareCalculation != "stop_based" {
		t.Errorf("fare calculation default = %q", got.FareCalculation)
	}

	if _, err := s.FindByID(ctx, 9999); !errors.Is(err, transit.ErrNotFound) {
		t.Errorf("unknown id err = %v, want ErrNotFound", err)
	}
}

func TestRouteStoreExistsByNumber(t *testing.T) {
	ctx := context.Background()
	s := NewRouteStore(storetest.NewDB(t))

	route := storetest.PollachiRoute("TN-01", 7)
	if err := s.Create(ctx, &route); err != nil {
		t.Fatal(err)
	}
	exists, err := s.ExistsByNumber(ctx, "TN-01", 0)
	if err != nil || !exists {
		t.Fatalf("ExistsByNumber = %v, %v; want true", exists, err)
	}
	exists, err = s.ExistsByNumber(ctx, "TN-01", route.ID)
	if err != nil || exists {
		t.Fatalf("ExistsByNumber excluding self = %v, %v; want false", exists, err)
	}
}

func TestRouteStoreListVisible(t *testing.T) {
	ctx := context.Background()
	s := NewRouteStore(storetest.NewDB(t))

	visible := storetest.PollachiRoute("TN-01", 7)
	notToday := storetest.PollachiRoute("TN-02", 7)
	notToday.CurrentStatus.AvailableToday = false
	inactive := storetest.PollachiRoute("TN-03", 7)
	inactive.CurrentStatus.IsActive = false
	private := storetest.PollachiRoute("TN-04", 8)
	private.BusType = "private"

	for _, r := range []*models.Route{&visible, &notToday, &inactive, &private} {
		if err := s.Create(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	all, err := s.ListVisible(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].ID != visible.ID || all[1].ID != private.ID {
		t.Fatalf("ListVisible returned %d routes", len(all))
	}
	if len(all[0].Stops) != 3 {
		t.Errorf("stops not preloaded")
	}

	gov, err := s.ListVisible(ctx, "government")
	if err != nil {
		t.Fatal(err)
	}
	if len(gov) != 1 || gov[0].ID != visible.ID {
		t.Fatalf("bus type filter returned %d routes", len(gov))
	}

	n, err := s.CountVisible(ctx)
	if err != nil || n != 2 {
		t.Errorf("CountVisible = %d, %v; want 2", n, err)
	}
	n, err = s.Count(ctx)
	if err != nil || n != 4 {
		t.Errorf("Count = %d, %v; want 4", n, err)
	}
}

func TestRouteStoreFlags(t *testing.T) {
	ctx := context.Background()
	s := NewRouteStore(storetest.NewDB(t))

	route := storetest.PollachiRoute("TN-01", 7)
	if err := s.Create(ctx, &route); err != nil {
		t.Fatal(err)
	}
	if err := s.SetAvailability(ctx, route.ID, false); err != nil {
		t.Fatal(err)
	}
	if err := s.SetAvailability(ctx, route.ID, false); err != nil {
		t.Fatalf("repeating the same value should succeed: %v", err)
	}
	if err := s.SetActive(ctx, route.ID, false); err != nil {
		t.Fatal(err)
	}
	got, err := s.FindByID(ctx, route.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.CurrentStatus.AvailableToday || got.CurrentStatus.IsActive {
		t.Errorf("flags not persisted: %+v", got.CurrentStatus)
	}
	if err := s.SetAvailability(ctx, 9999, true); !errors.Is(err, transit.ErrNotFound) {
		t.Errorf("unknown id err = %v, want ErrNotFound", err)
	}
}

func TestRouteStoreReplace(t *testing.T) {
	ctx := context.Background()
	s := NewRouteStore(storetest.NewDB(t))

	route := storetest.PollachiRoute("TN-01", 7)
	if err := s.Create(ctx, &route); err != nil {
		t.Fatal(err)
	}

	route.BusName = "Pollachi Fast"
	route.TotalFare = 40
	route.Stops = []models.Stop{
		{StopName: "Pollachi", StopOrder: 1},
		{StopName: "Kinathukadavu", StopOrder: 2, DistanceFromSource: 20, FareFromSource: 40},
	}
	if err := s.Replace(ctx, &route); err != nil {
		t.Fatalf("replace: %v", err)
	}

	got, err := s.FindByID(ctx, route.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.BusName != "Pollachi Fast" || got.TotalFare != 40 {
		t.Errorf("fields not replaced: %+v", got)
	}
	if len(got.Stops) != 2 || got.Stops[1].StopName != "Kinathukadavu" {
		t.Errorf("stops not replaced: %+v", got.Stops)
	}
}

func TestRouteStoreLocationAndDelete(t *testing.T) {
	ctx := context.Background()
	s := NewRouteStore(storetest.NewDB(t))

	route := storetest.PollachiRoute("TN-01", 7)
	if err := s.Create(ctx, &route); err != nil {
		t.Fatal(err)
	}
	at := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	pos := Position{Lat: 10.8, Lng: 77.0, CurrentStop: "Ukkadam", NextStop: "Coimbatore", At: at}
	if err := s.UpdateLocation(ctx, route.ID, 7, pos); err != nil {
		t.Fatalf("update location: %v", err)
	}

	got, err := s.FindByID(ctx, route.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.CurrentStatus.CurrentStop != "Ukkadam" || got.CurrentStatus.CurrentLat == nil || *got.CurrentStatus.CurrentLat != 10.8 {
		t.Errorf("position not stored: %+v", got.CurrentStatus)
	}
	history, err := s.RecentLocations(ctx, route.ID, 5)
	if err != nil || len(history) != 1 {
		t.Fatalf("history = %d, %v; want 1", len(history), err)
	}

	if err := s.Delete(ctx, route.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.FindByID(ctx, route.ID); !errors.Is(err, transit.ErrNotFound) {
		t.Errorf("deleted route err = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, route.ID); !errors.Is(err, transit.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
	exists, _ := s.ExistsByNumber(ctx, "TN-01", 0)
	if exists {
		t.Error("bus number should be free after delete")
	}
}

func TestRouteStoreListPage(t *testing.T) {
	ctx := context.Background()
	s := NewRouteStore(storetest.NewDB(t))

	for _, n := range []string{"TN-01", "TN-02", "TN-03"} {
		r := storetest.PollachiRoute(n, 7)
		if err := s.Create(ctx, &r); err != nil {
			t.Fatal(err)
		}
	}
	routes, total, err := s.ListPage(ctx, "", Page{Page: 2, Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 || len(routes) != 1 {
		t.Fatalf("got %d routes of %d, want 1 of 3", len(routes), total)
	}
	if (Page{Limit: 2}).TotalPages(total) != 2 {
		t.Errorf("TotalPages = %d, want 2", (Page{Limit: 2}).TotalPages(total))
	}
	_, total, err = s.ListPage(ctx, "private", Page{})
	if err != nil || total != 0 {
		t.Errorf("private total = %d, %v; want 0", total, err)
	}
}

func TestPageNormalize(t *testing.T) {
	p := Page{Page: -3, Limit: 500}.Normalize()
	if p.Page != 1 || p.Limit != maxLimit {
		t.Errorf("Normalize = %+v", p)
	}
	if (Page{Page: 3, Limit: 10}).Offset() != 20 {
		t.Errorf("Offset wrong")
	}
}
