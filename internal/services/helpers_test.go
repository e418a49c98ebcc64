package services

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"bus_tracker/internal/realtime"
	"bus_tracker/internal/store"
	"bus_tracker/internal/store/storetest"
	"bus_tracker/internal/transit"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (p *recordingPublisher) Publish(e realtime.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []realtime.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]realtime.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type fakeTokens struct{}

func (fakeTokens) GenerateToken(userID uint, role transit.Role) (string, error) {
	return fmt.Sprintf("token-%d-%s", userID, role), nil
}

type fixture struct {
	routes    *store.RouteStore
	users     *store.UserStore
	publisher *recordingPublisher
	svc       *RouteService
}

func newFixture(t *testing.T, cache CacheOptions) *fixture {
	t.Helper()
	db := storetest.NewDB(t)
	f := &fixture{
		routes:    store.NewRouteStore(db),
		users:     store.NewUserStore(db),
		publisher: &recordingPublisher{},
	}
	f.svc = NewRouteService(f.routes, f.publisher, cache)
	f.svc.now = func() time.Time { return time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC) }
	return f
}

var (
	driver      = transit.Actor{ID: 7, Role: transit.RoleDriver}
	otherDriver = transit.Actor{ID: 8, Role: transit.RoleDriver}
	admin       = transit.Actor{ID: 1, Role: transit.RoleAdmin}
	passenger   = transit.Actor{ID: 20, Role: transit.RolePassenger}
)

func pollachiInput(busNumber string) RouteInput {
	return RouteInput{
		RouteSpec: transit.RouteSpec{
			BusNumber:     busNumber,
			BusName:       "Pollachi Express",
			BusType:       "government",
			GovtAgency:    "TNSTC",
			Source:        "Pollachi",
			Destination:   "Coimbatore",
			TotalDistance: 45,
			TotalDuration: "1 hr 10 mins",
			TotalFare:     60,
			Stops: []transit.StopSpec{
				{StopName: "Pollachi", StopOrder: 1, DistanceFromSource: 0, EstimatedTimeFromSource: "0 mins", FareFromSource: 0},
				{StopName: "Ukkadam", StopOrder: 2, DistanceFromSource: 25, EstimatedTimeFromSource: "40 mins", FareFromSource: 35},
				{StopName: "Coimbatore", StopOrder: 3, DistanceFromSource: 45, EstimatedTimeFromSource: "70 mins", FareFromSource: 60},
			},
		},
	}
}

func boolPtr(b bool) *bool { return &b }
