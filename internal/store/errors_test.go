package store

import (
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"bus_tracker/internal/transit"
)

func TestTranslateDuplicateHidesDriverDetail(t *testing.T) {
	for _, err := range []error{
		&pq.Error{Code: "23505", Message: `duplicate key value violates unique constraint "idx_routes_bus_number"`, Constraint: "idx_routes_bus_number"},
		&pgconn.PgError{Code: "23505", Message: `duplicate key value violates unique constraint "idx_users_email"`, ConstraintName: "idx_users_email"},
		gorm.ErrDuplicatedKey,
	} {
		got := translate(err)
		if !errors.Is(got, transit.ErrDuplicateKey) {
			t.Errorf("translate(%v) = %v, want ErrDuplicateKey", err, got)
		}
		if strings.Contains(got.Error(), "idx_") || strings.Contains(got.Error(), "23505") {
			t.Errorf("translate(%v) leaks %q", err, got.Error())
		}
	}
}

func TestTranslate(t *testing.T) {
	if translate(nil) != nil {
		t.Error("nil must stay nil")
	}
	if got := translate(gorm.ErrRecordNotFound); !errors.Is(got, transit.ErrNotFound) {
		t.Errorf("not found = %v", got)
	}
	if got := translate(errors.New("connection refused")); !errors.Is(got, transit.ErrInternal) {
		t.Errorf("other = %v", got)
	}
}
