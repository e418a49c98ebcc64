package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bus_tracker/internal/transit"
)

const uniqueViolation = "23505"

// translate maps persistence errors onto the transit error taxonomy.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return transit.ErrNotFound
	case isUniqueViolation(err):
		// constraint names stay in the log, out of responses
		logrus.WithError(err).Debug("unique constraint violated")
		return transit.ErrDuplicateKey
	default:
		return fmt.Errorf("%w: %v", transit.ErrInternal, err)
	}
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// Page is a 1-based page request.
type Page struct {
	Page  int
	Limit int
}

const (
	defaultLimit = 10
	maxLimit     = 100
)

// Normalize clamps the page into a usable range.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}

func (p Page) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// TotalPages returns the number of pages needed for total rows.
func (p Page) TotalPages(total int64) int64 {
	limit := int64(p.Normalize().Limit)
	return (total + limit - 1) / limit
}
