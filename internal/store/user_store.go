package store

import (
	"context"

	"gorm.io/gorm"

	"bus_tracker/internal/models"
)

// UserStore persists passengers, drivers and admins.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	return translate(s.db.WithContext(ctx).Create(user).Error)
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *UserStore) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// ExistsByEmail reports whether the email is already registered.
func (s *UserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&n).Error
	return n > 0, translate(err)
}

// ListPage returns newest users first, optionally filtered by role.
func (s *UserStore) ListPage(ctx context.Context, role string, p Page) ([]models.User, int64, error) {
	p = p.Normalize()
	filter := func(db *gorm.DB) *gorm.DB {
		if role != "" {
			return db.Where("role = ?", role)
		}
		return db
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	var users []models.User
	err := s.db.WithContext(ctx).
		Scopes(filter).
		Order("created_at DESC, id DESC").
		Limit(p.Limit).
		Offset(p.Offset()).
		Find(&users).Error
	if err != nil {
		return nil, 0, translate(err)
	}
	return users, total, nil
}

// CountByRole counts users holding the role.
func (s *UserStore) CountByRole(ctx context.Context, role string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", role).Count(&n).Error
	return n, translate(err)
}

// Delete removes the user and every route they drive.
func (s *UserStore) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Select("id").First(&user, id).Error; err != nil {
			return err
		}
		var routeIDs []uint
		if err := tx.Model(&models.Route{}).Where("driver_id = ?", user.ID).Pluck("id", &routeIDs).Error; err != nil {
			return err
		}
		if err := deleteRoutes(tx, routeIDs); err != nil {
			return err
		}
		return tx.Unscoped().Delete(&models.User{}, user.ID).Error
	})
	return translate(err)
}
