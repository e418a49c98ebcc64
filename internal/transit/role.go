package transit

import (
	"fmt"
	"strings"
)

// Role is the closed set of actor roles carried in identity tokens.
type Role string

const (
	RolePassenger Role = "user"
	RoleDriver    Role = "driver"
	RoleAdmin     Role = "admin"
)

// ParseRole normalises a role string. Empty input means passenger.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "user", "passenger":
		return RolePassenger, nil
	case "driver":
		return RoleDriver, nil
	case "admin":
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("%w: invalid role %q", ErrValidation, s)
	}
}

func (r Role) String() string { return string(r) }

// Capability is an action an actor may be allowed to perform.
type Capability int

const (
	CapSearchRoutes Capability = iota
	CapRegisterRoute
	CapManageOwnRoute
	CapAdministerRoutes
	CapAdministerUsers
	CapViewStats
)

// Can reports whether the role grants the capability.
func (r Role) Can(c Capability) bool {
	switch c {
	case CapSearchRoutes:
		return r == RolePassenger || r == RoleDriver || r == RoleAdmin
	case CapRegisterRoute, CapManageOwnRoute:
		return r == RoleDriver || r == RoleAdmin
	case CapAdministerRoutes, CapAdministerUsers, CapViewStats:
		return r == RoleAdmin
	default:
		return false
	}
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   uint
	Role Role
}

// Owns reports whether the actor is the driver recorded on the route.
func (a Actor) Owns(r Route) bool {
	return a.ID != 0 && r.DriverID == a.ID
}
