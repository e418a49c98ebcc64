package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"bus_tracker/internal/models"
	"bus_tracker/internal/store"
	"bus_tracker/internal/transit"
)

// AdminRouteRepository is the route persistence used for statistics and listings.
type AdminRouteRepository interface {
	ListPage(ctx context.Context, busType string, p store.Page) ([]models.Route, int64, error)
	Count(ctx context.Context) (int64, error)
	CountVisible(ctx context.Context) (int64, error)
}

// UserRepository is the user persistence used by admin and auth.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ListPage(ctx context.Context, role string, p store.Page) ([]models.User, int64, error)
	CountByRole(ctx context.Context, role string) (int64, error)
	Delete(ctx context.Context, id uint) error
}

// AdminService serves the admin dashboard.
type AdminService struct {
	routes AdminRouteRepository
	users  UserRepository
	// called after writes that remove routes
	invalidate func()
}

func NewAdminService(routes AdminRouteRepository, users UserRepository, invalidate func()) *AdminService {
	if invalidate == nil {
		invalidate = func() {}
	}
	return &AdminService{routes: routes, users: users, invalidate: invalidate}
}

// Totals are the headline counts on the dashboard.
type Totals struct {
	Users       int64 `json:"users"`
	Drivers     int64 `json:"drivers"`
	Admins      int64 `json:"admins"`
	Buses       int64 `json:"buses"`
	ActiveBuses int64 `json:"active_buses"`
}

// DashboardStats is the admin overview.
type DashboardStats struct {
	Totals       Totals         `json:"totals"`
	RecentRoutes []models.Route `json:"recent_routes"`
}

const recentRoutes = 5

// Stats counts users by role and buses, and lists the newest buses.
func (s *AdminService) Stats(ctx context.Context, actor transit.Actor) (DashboardStats, error) {
	if !actor.Role.Can(transit.CapViewStats) {
		return DashboardStats{}, transit.ErrAuthorization
	}
	var (
		t   Totals
		err error
	)
	if t.Users, err = s.users.CountByRole(ctx, string(transit.RolePassenger)); err != nil {
		return DashboardStats{}, err
	}
	if t.Drivers, err = s.users.CountByRole(ctx, string(transit.RoleDriver)); err != nil {
		return DashboardStats{}, err
	}
	if t.Admins, err = s.users.CountByRole(ctx, string(transit.RoleAdmin)); err != nil {
		return DashboardStats{}, err
	}
	if t.Buses, err = s.routes.Count(ctx); err != nil {
		return DashboardStats{}, err
	}
	if t.ActiveBuses, err = s.routes.CountVisible(ctx); err != nil {
		return DashboardStats{}, err
	}
	recent, _, err := s.routes.ListPage(ctx, "", store.Page{Page: 1, Limit: recentRoutes})
	if err != nil {
		return DashboardStats{}, err
	}
	return DashboardStats{Totals: t, RecentRoutes: recent}, nil
}

// Pagination describes one page of a listing.
type Pagination struct {
	Current int   `json:"current"`
	Total   int64 `json:"total"`
	Results int64 `json:"results"`
}

func pagination(p store.Page, total int64) Pagination {
	n := p.Normalize()
	return Pagination{Current: n.Page, Total: n.TotalPages(total), Results: total}
}

// ListRoutes pages through every bus, optionally of one type. "all" means no filter.
func (s *AdminService) ListRoutes(ctx context.Context, actor transit.Actor, busType string, p store.Page) ([]models.Route, Pagination, error) {
	if !actor.Role.Can(transit.CapAdministerRoutes) {
		return nil, Pagination{}, transit.ErrAuthorization
	}
	if busType == "all" {
		busType = ""
	}
	if busType != "" {
		if _, ok := transit.ParseBusType(busType); !ok {
			return nil, Pagination{}, transit.NewValidationError([]string{fmt.Sprintf("unknown bus type %q", busType)})
		}
	}
	routes, total, err := s.routes.ListPage(ctx, busType, p)
	if err != nil {
		return nil, Pagination{}, err
	}
	return routes, pagination(p, total), nil
}

// ListUsers pages through users, optionally of one role. "all" means no filter.
func (s *AdminService) ListUsers(ctx context.Context, actor transit.Actor, role string, p store.Page) ([]models.User, Pagination, error) {
	if !actor.Role.Can(transit.CapAdministerUsers) {
		return nil, Pagination{}, transit.ErrAuthorization
	}
	if role == "all" {
		role = ""
	}
	if role != "" {
		r, err := transit.ParseRole(role)
		if err != nil {
			return nil, Pagination{}, transit.NewValidationError([]string{fmt.Sprintf("unknown role %q", role)})
		}
		role = string(r)
	}
	users, total, err := s.users.ListPage(ctx, role, p)
	if err != nil {
		return nil, Pagination{}, err
	}
	return users, pagination(p, total), nil
}

// DeleteUser removes a user and the buses they drive. Admins cannot
// delete themselves.
func (s *AdminService) DeleteUser(ctx context.Context, actor transit.Actor, userID uint) error {
	if !actor.Role.Can(transit.CapAdministerUsers) {
		return transit.ErrAuthorization
	}
	if userID == actor.ID {
		return transit.NewValidationError([]string{"cannot delete your own account"})
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	s.invalidate()
	logrus.WithFields(logrus.Fields{"user_id": userID, "admin_id": actor.ID}).Info("user deleted")
	return nil
}
