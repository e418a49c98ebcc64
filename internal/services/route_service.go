package services

import (
	"context"
	"fmt"
	"time"

	"github.com/bluele/gcache"
	"github.com/sirupsen/logrus"

	"bus_tracker/internal/models"
	"bus_tracker/internal/realtime"
	"bus_tracker/internal/store"
	"bus_tracker/internal/transit"
)

// RouteRepository is the persistence the route service needs.
type RouteRepository interface {
	Create(ctx context.Context, route *models.Route) error
	ExistsByNumber(ctx context.Context, busNumber string, excludeID uint) (bool, error)
	FindByID(ctx context.Context, id uint) (*models.Route, error)
	ListVisible(ctx context.Context, busType string) ([]models.Route, error)
	ListByDriver(ctx context.Context, driverID uint) ([]models.Route, error)
	Replace(ctx context.Context, route *models.Route) error
	SetAvailability(ctx context.Context, id uint, available bool) error
	SetActive(ctx context.Context, id uint, active bool) error
	UpdateLocation(ctx context.Context, id, driverID uint, pos store.Position) error
	RecentLocations(ctx context.Context, id uint, limit int) ([]models.LocationHistory, error)
	Delete(ctx context.Context, id uint) error
}

// Publisher receives route status events.
type Publisher interface {
	Publish(e realtime.Event)
}

// CacheOptions sizes the search result cache. Size 0 disables it.
type CacheOptions struct {
	Size int
	TTL  time.Duration
}

// RouteService implements search, fare estimation and route management.
type RouteService struct {
	routes    RouteRepository
	publisher Publisher
	cache     gcache.Cache
	now       func() time.Time
}

func NewRouteService(routes RouteRepository, publisher Publisher, opts CacheOptions) *RouteService {
	s := &RouteService{routes: routes, publisher: publisher, now: time.Now}
	if opts.Size > 0 {
		b := gcache.New(opts.Size).LRU()
		if opts.TTL > 0 {
			b = b.Expiration(opts.TTL)
		}
		s.cache = b.Build()
	}
	return s
}

// InvalidateSearch drops every cached search result.
func (s *RouteService) InvalidateSearch() {
	if s.cache != nil {
		s.cache.Purge()
	}
}

func (s *RouteService) publish(t realtime.EventType, route *models.Route, data interface{}) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(realtime.Event{
		Type:      t,
		RouteID:   route.ID,
		BusNumber: route.BusNumber,
		Data:      data,
		At:        s.now().UTC(),
	})
}

// SearchRoutes returns visible routes whose source and destination contain
// the query text. An empty result is not an error.
func (s *RouteService) SearchRoutes(ctx context.Context, q transit.SearchQuery) ([]models.Route, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	q = q.Normalize()
	key := q.Key()

	if s.cache != nil {
		if v, err := s.cache.Get(key); err == nil {
			return cloneRoutes(v.([]models.Route)), nil
		}
	}

	candidates, err := s.routes.ListVisible(ctx, q.BusType)
	if err != nil {
		return nil, err
	}
	views := make([]transit.Route, len(candidates))
	byID := make(map[uint]models.Route, len(candidates))
	for i, r := range candidates {
		views[i] = r.View()
		byID[r.ID] = r
	}
	matched, err := transit.MatchRoutes(views, q)
	if err != nil {
		return nil, err
	}
	out := make([]models.Route, 0, len(matched))
	for _, m := range matched {
		out = append(out, byID[m.ID])
	}

	if s.cache != nil {
		if err := s.cache.Set(key, cloneRoutes(out)); err != nil {
			logrus.WithError(err).Warn("SearchRoutes: cache set failed")
		}
	}
	return out, nil
}

// cloneRoutes copies routes and their stops so cached results never alias
// what callers hold.
func cloneRoutes(in []models.Route) []models.Route {
	out := make([]models.Route, len(in))
	for i, r := range in {
		r.Stops = append([]models.Stop(nil), r.Stops...)
		out[i] = r
	}
	return out
}

// FareResult is a fare quote together with the route it was computed on.
type FareResult struct {
	Route *models.Route
	Quote transit.FareQuote
}

// CalculateFare quotes the fare and distance between two stops of a route.
func (s *RouteService) CalculateFare(ctx context.Context, routeID uint, fromStop, toStop string) (FareResult, error) {
	route, err := s.routes.FindByID(ctx, routeID)
	if err != nil {
		return FareResult{}, err
	}
	quote, err := transit.CalculateFare(route.View(), fromStop, toStop)
	if err != nil {
		return FareResult{}, err
	}
	return FareResult{Route: route, Quote: quote}, nil
}

// ListStops returns the route with its stops in stop order.
func (s *RouteService) ListStops(ctx context.Context, routeID uint) (*models.Route, error) {
	return s.routes.FindByID(ctx, routeID)
}

// GetRoute returns a single route.
func (s *RouteService) GetRoute(ctx context.Context, routeID uint) (*models.Route, error) {
	return s.routes.FindByID(ctx, routeID)
}

// RegisterRoute validates and stores a new bus owned by the actor.
func (s *RouteService) RegisterRoute(ctx context.Context, actor transit.Actor, in RouteInput) (*models.Route, error) {
	if !actor.Role.Can(transit.CapRegisterRoute) {
		return nil, transit.ErrAuthorization
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	route := in.toModel(actor.ID)

	exists, err := s.routes.ExistsByNumber(ctx, route.BusNumber, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: bus with number %s", transit.ErrDuplicateKey, route.BusNumber)
	}

	geometry, err := routeGeometry(in.Geometry, route.Stops)
	if err != nil {
		return nil, transit.NewValidationError([]string{err.Error()})
	}
	route.Geometry = geometry

	if err := s.routes.Create(ctx, &route); err != nil {
		return nil, err
	}
	s.InvalidateSearch()
	s.publish(realtime.EventUpdated, &route, nil)

	logrus.WithFields(logrus.Fields{"route_id": route.ID, "bus_number": route.BusNumber, "driver_id": actor.ID}).
		Info("bus registered")
	return &route, nil
}

// ListMyRoutes returns the routes owned by the actor.
func (s *RouteService) ListMyRoutes(ctx context.Context, actor transit.Actor) ([]models.Route, error) {
	if !actor.Role.Can(transit.CapManageOwnRoute) {
		return nil, transit.ErrAuthorization
	}
	return s.routes.ListByDriver(ctx, actor.ID)
}

// owned loads the route and checks the actor is its driver.
func (s *RouteService) owned(ctx context.Context, routeID uint, actor transit.Actor) (*models.Route, error) {
	route, err := s.routes.FindByID(ctx, routeID)
	if err != nil {
		return nil, err
	}
	if !actor.Role.Can(transit.CapManageOwnRoute) || !actor.Owns(route.View()) {
		return nil, fmt.Errorf("%w to update this bus", transit.ErrAuthorization)
	}
	return route, nil
}

// ToggleAvailability sets the route's "available today" flag. Only the
// owning driver may do this. Setting the current value again succeeds
// without writing.
func (s *RouteService) ToggleAvailability(ctx context.Context, routeID uint, actor transit.Actor, available bool) (*models.Route, error) {
	route, err := s.owned(ctx, routeID, actor)
	if err != nil {
		return nil, err
	}
	if route.CurrentStatus.AvailableToday == available {
		return route, nil
	}
	if err := s.routes.SetAvailability(ctx, route.ID, available); err != nil {
		return nil, err
	}
	route.CurrentStatus.AvailableToday = available
	s.InvalidateSearch()
	s.publish(realtime.EventAvailability, route, map[string]bool{"available_today": available})
	return route, nil
}

// UpdateRoute replaces every field and stop of an owned route. The active
// flag and the live position are kept.
func (s *RouteService) UpdateRoute(ctx context.Context, routeID uint, actor transit.Actor, in RouteInput) (*models.Route, error) {
	route, err := s.owned(ctx, routeID, actor)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	next := in.toModel(route.DriverID)

	if next.BusNumber != route.BusNumber {
		exists, err := s.routes.ExistsByNumber(ctx, next.BusNumber, route.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("%w: bus with number %s", transit.ErrDuplicateKey, next.BusNumber)
		}
	}

	geometry, err := routeGeometry(in.Geometry, next.Stops)
	if err != nil {
		return nil, transit.NewValidationError([]string{err.Error()})
	}

	status := route.CurrentStatus
	if in.CurrentStatus != nil && in.CurrentStatus.AvailableToday != nil {
		status.AvailableToday = *in.CurrentStatus.AvailableToday
	}
	next.Model = route.Model
	next.CurrentStatus = status
	next.Geometry = geometry

	if err := s.routes.Replace(ctx, &next); err != nil {
		return nil, err
	}
	s.InvalidateSearch()
	s.publish(realtime.EventUpdated, &next, nil)
	return s.routes.FindByID(ctx, next.ID)
}

// UpdateLocation records the driver's live position. Stop names are
// resolved against the route so subscribers see canonical names.
func (s *RouteService) UpdateLocation(ctx context.Context, routeID uint, actor transit.Actor, in LocationInput) (*models.Route, error) {
	route, err := s.owned(ctx, routeID, actor)
	if err != nil {
		return nil, err
	}
	view := route.View()
	current, err := canonicalStop(view, in.CurrentStop)
	if err != nil {
		return nil, err
	}
	next, err := canonicalStop(view, in.NextStop)
	if err != nil {
		return nil, err
	}

	pos := store.Position{
		Lat:              in.Lat,
		Lng:              in.Lng,
		CurrentStop:      current,
		NextStop:         next,
		EstimatedArrival: in.EstimatedArrival,
		At:               s.now().UTC(),
	}
	if err := s.routes.UpdateLocation(ctx, route.ID, actor.ID, pos); err != nil {
		return nil, err
	}
	s.InvalidateSearch()

	route.CurrentStatus.CurrentLat = &pos.Lat
	route.CurrentStatus.CurrentLng = &pos.Lng
	route.CurrentStatus.LocationUpdatedAt = &pos.At
	route.CurrentStatus.CurrentStop = pos.CurrentStop
	route.CurrentStatus.NextStop = pos.NextStop
	route.CurrentStatus.EstimatedArrival = pos.EstimatedArrival
	s.publish(realtime.EventLocation, route, route.CurrentStatus)
	return route, nil
}

const maxLocationHistory = 100

// LocationHistory returns the newest position reports of a route, newest
// first. The owning driver and admins may read it.
func (s *RouteService) LocationHistory(ctx context.Context, routeID uint, actor transit.Actor, limit int) ([]models.LocationHistory, error) {
	route, err := s.routes.FindByID(ctx, routeID)
	if err != nil {
		return nil, err
	}
	if !actor.Role.Can(transit.CapAdministerRoutes) && !(actor.Role.Can(transit.CapManageOwnRoute) && actor.Owns(route.View())) {
		return nil, fmt.Errorf("%w to view this bus's locations", transit.ErrAuthorization)
	}
	if limit < 1 || limit > maxLocationHistory {
		limit = maxLocationHistory
	}
	return s.routes.RecentLocations(ctx, route.ID, limit)
}

func canonicalStop(r transit.Route, name string) (string, error) {
	if name == "" {
		return "", nil
	}
	stop, ok := transit.FindStopByName(r, name)
	if !ok {
		return "", fmt.Errorf("%w: %q is not on this route", transit.ErrInvalidStopName, name)
	}
	return stop.Name, nil
}

// DeleteRoute removes a route. The owning driver and admins may delete.
func (s *RouteService) DeleteRoute(ctx context.Context, routeID uint, actor transit.Actor) error {
	route, err := s.routes.FindByID(ctx, routeID)
	if err != nil {
		return err
	}
	if !actor.Role.Can(transit.CapAdministerRoutes) && !(actor.Role.Can(transit.CapManageOwnRoute) && actor.Owns(route.View())) {
		return fmt.Errorf("%w to delete this bus", transit.ErrAuthorization)
	}
	if err := s.routes.Delete(ctx, route.ID); err != nil {
		return err
	}
	s.InvalidateSearch()
	s.publish(realtime.EventDeleted, route, nil)
	logrus.WithFields(logrus.Fields{"route_id": route.ID, "actor_id": actor.ID, "role": actor.Role}).Info("bus deleted")
	return nil
}

// SetActive activates or deactivates a route. Admin only.
func (s *RouteService) SetActive(ctx context.Context, routeID uint, actor transit.Actor, active bool) (*models.Route, error) {
	if !actor.Role.Can(transit.CapAdministerRoutes) {
		return nil, transit.ErrAuthorization
	}
	route, err := s.routes.FindByID(ctx, routeID)
	if err != nil {
		return nil, err
	}
	if route.CurrentStatus.IsActive == active {
		return route, nil
	}
	if err := s.routes.SetActive(ctx, route.ID, active); err != nil {
		return nil, err
	}
	route.CurrentStatus.IsActive = active
	s.InvalidateSearch()
	s.publish(realtime.EventActive, route, map[string]bool{"is_active": active})
	return route, nil
}
