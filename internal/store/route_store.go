package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"bus_tracker/internal/models"
)

// RouteStore persists routes and their stops.
type RouteStore struct {
	db *gorm.DB
}

func NewRouteStore(db *gorm.DB) *RouteStore {
	return &RouteStore{db: db}
}

func orderedStops(db *gorm.DB) *gorm.DB {
	return db.Order("stop_order ASC, id ASC")
}

func (s *RouteStore) withStops(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Preload("Stops", orderedStops)
}

// Create inserts the route and its stops atomically.
func (s *RouteStore) Create(ctx context.Context, route *models.Route) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(route).Error
	})
	return translate(err)
}

// ExistsByNumber reports whether another route already uses busNumber.
// excludeID skips the route being edited; pass 0 on registration.
func (s *RouteStore) ExistsByNumber(ctx context.Context, busNumber string, excludeID uint) (bool, error) {
	var count int64
	q := s.db.WithContext(ctx).Model(&models.Route{}).Where("bus_number = ?", busNumber)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

// FindByID loads a route with its stops in stop order.
func (s *RouteStore) FindByID(ctx context.Context, id uint) (*models.Route, error) {
	var route models.Route
	if err := s.withStops(ctx).First(&route, id).Error; err != nil {
		return nil, translate(err)
	}
	return &route, nil
}

// ListVisible returns routes that pass the availability gate, optionally
// restricted to one bus type, in id order.
func (s *RouteStore) ListVisible(ctx context.Context, busType string) ([]models.Route, error) {
	q := s.withStops(ctx).
		Where("is_active = ? AND available_today = ?", true, true)
	if busType != "" {
		q = q.Where("bus_type = ?", busType)
	}
	var routes []models.Route
	if err := q.Order("id ASC").Find(&routes).Error; err != nil {
		return nil, translate(err)
	}
	return routes, nil
}

// ListByDriver returns every route owned by the driver.
func (s *RouteStore) ListByDriver(ctx context.Context, driverID uint) ([]models.Route, error) {
	var routes []models.Route
	if err := s.withStops(ctx).Where("driver_id = ?", driverID).Order("id ASC").Find(&routes).Error; err != nil {
		return nil, translate(err)
	}
	return routes, nil
}

// ListPage returns newest routes first together with the unpaged total.
func (s *RouteStore) ListPage(ctx context.Context, busType string, p Page) ([]models.Route, int64, error) {
	p = p.Normalize()
	filter := func(db *gorm.DB) *gorm.DB {
		if busType != "" {
			return db.Where("bus_type = ?", busType)
		}
		return db
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Route{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	var routes []models.Route
	err := s.withStops(ctx).
		Scopes(filter).
		Order("created_at DESC, id DESC").
		Limit(p.Limit).
		Offset(p.Offset()).
		Find(&routes).Error
	if err != nil {
		return nil, 0, translate(err)
	}
	return routes, total, nil
}

// Replace overwrites the route's fields and swaps its stops in one
// transaction. Last writer wins.
func (s *RouteStore) Replace(ctx context.Context, route *models.Route) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("route_id = ?", route.ID).Delete(&models.Stop{}).Error; err != nil {
			return err
		}
		if err := tx.Omit("Stops").Save(route).Error; err != nil {
			return err
		}
		for i := range route.Stops {
			route.Stops[i].ID = 0
			route.Stops[i].RouteID = route.ID
		}
		if len(route.Stops) == 0 {
			return nil
		}
		return tx.Create(&route.Stops).Error
	})
	return translate(err)
}

func (s *RouteStore) updateColumns(ctx context.Context, id uint, values map[string]interface{}) error {
	res := s.db.WithContext(ctx).Model(&models.Route{}).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound)
	}
	return nil
}

// SetAvailability sets the operator-controlled "available today" flag.
func (s *RouteStore) SetAvailability(ctx context.Context, id uint, available bool) error {
	return s.updateColumns(ctx, id, map[string]interface{}{"available_today": available})
}

// SetActive sets the administrative active flag.
func (s *RouteStore) SetActive(ctx context.Context, id uint, active bool) error {
	return s.updateColumns(ctx, id, map[string]interface{}{"is_active": active})
}

// Position is a live location report for a route.
type Position struct {
	Lat              float64
	Lng              float64
	CurrentStop      string
	NextStop         string
	EstimatedArrival string
	At               time.Time
}

// UpdateLocation records the position on the route and appends it to the
// location history.
func (s *RouteStore) UpdateLocation(ctx context.Context, id, driverID uint, pos Position) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Route{}).Where("id = ?", id).Updates(map[string]interface{}{
			"current_lat":         pos.Lat,
			"current_lng":         pos.Lng,
			"location_updated_at": pos.At,
			"current_stop":        pos.CurrentStop,
			"next_stop":           pos.NextStop,
			"estimated_arrival":   pos.EstimatedArrival,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Create(&models.LocationHistory{
			RouteID:     id,
			DriverID:    driverID,
			Latitude:    pos.Lat,
			Longitude:   pos.Lng,
			CurrentStop: pos.CurrentStop,
			NextStop:    pos.NextStop,
			Timestamp:   pos.At,
		}).Error
	})
	return translate(err)
}

// RecentLocations returns the newest position reports for a route.
func (s *RouteStore) RecentLocations(ctx context.Context, id uint, limit int) ([]models.LocationHistory, error) {
	var out []models.LocationHistory
	err := s.db.WithContext(ctx).
		Where("route_id = ?", id).
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&out).Error
	return out, translate(err)
}

// Delete removes the route, its stops and its location history.
func (s *RouteStore) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var route models.Route
		if err := tx.Select("id").First(&route, id).Error; err != nil {
			return err
		}
		return deleteRoutes(tx, []uint{route.ID})
	})
	return translate(err)
}

func deleteRoutes(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Unscoped().Where("route_id IN ?", ids).Delete(&models.Stop{}).Error; err != nil {
		return err
	}
	if err := tx.Unscoped().Where("route_id IN ?", ids).Delete(&models.LocationHistory{}).Error; err != nil {
		return err
	}
	return tx.Unscoped().Where("id IN ?", ids).Delete(&models.Route{}).Error
}

// Count returns the number of registered routes.
func (s *RouteStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Route{}).Count(&n).Error
	return n, translate(err)
}

// CountVisible returns the number of routes passing the availability gate.
func (s *RouteStore) CountVisible(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Route{}).
		Where("is_active = ? AND available_today = ?", true, true).
		Count(&n).Error
	return n, translate(err)
}
