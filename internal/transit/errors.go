package transit

import (
	"errors"
	"strings"
)

var (
	// ErrMissingParameter is returned when a required query value is empty.
	ErrMissingParameter = errors.New("missing parameter")

	// ErrNotFound is returned when a route, stop or user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidStopName is returned when a stop name resolves to no stop on the route.
	ErrInvalidStopName = errors.New("invalid stop names provided")

	// ErrInvalidOrdering is returned when the boarding stop does not precede the alighting stop.
	ErrInvalidOrdering = errors.New("source stop must come before destination stop")

	// ErrValidation is the sentinel behind every *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrAuthorization is returned when the actor does not own the resource or lacks the role.
	ErrAuthorization = errors.New("not authorized")

	// ErrDuplicateKey is returned when a bus number or email is already registered.
	ErrDuplicateKey = errors.New("already exists")

	// ErrInternal wraps unexpected persistence failures.
	ErrInternal = errors.New("internal error")
)

// ValidationError carries every field violation found in one input.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Violations, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError returns nil when there are no violations.
func NewValidationError(violations []string) error {
	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: violations}
}
