package transit

import (
	"sort"
	"strings"
)

// BusType classifies the operator of a bus.
type BusType string

const (
	BusGovernment BusType = "government"
	BusPrivate    BusType = "private"
	BusContract   BusType = "contract"
	BusShuttle    BusType = "shuttle"
)

// BusTypes lists every accepted bus type.
var BusTypes = []BusType{BusGovernment, BusPrivate, BusContract, BusShuttle}

// ParseBusType reports whether s names a known bus type.
func ParseBusType(s string) (BusType, bool) {
	for _, t := range BusTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Stop is a named point on a route with cumulative distance (km) and fare
// measured from the route origin.
type Stop struct {
	Name               string
	Order              int
	DistanceFromSource float64
	FareFromSource     float64
}

// Route is the query-side view of a bus route.
type Route struct {
	ID             uint
	DriverID       uint
	BusType        BusType
	Source         string
	Destination    string
	IsActive       bool
	AvailableToday bool
	Stops          []Stop
}

// IsVisible is the availability gate: only active routes that are
// available today can be matched by a search.
func IsVisible(r Route) bool {
	return r.IsActive && r.AvailableToday
}

// Ledger is a route's stops in ascending stop order.
type Ledger []Stop

// NewLedger copies stops and orders them by stop order. Stops sharing an
// order keep their input order.
func NewLedger(stops []Stop) Ledger {
	l := make(Ledger, len(stops))
	copy(l, stops)
	sort.SliceStable(l, func(i, j int) bool { return l[i].Order < l[j].Order })
	return l
}

// Find returns the first stop whose name contains query, ignoring case.
// Overlapping names resolve to whichever stop comes first in the ledger.
func (l Ledger) Find(query string) (Stop, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return Stop{}, false
	}
	for _, s := range l {
		if strings.Contains(strings.ToLower(s.Name), q) {
			return s, true
		}
	}
	return Stop{}, false
}

// FindStopByName looks up a stop on the route by partial, case-insensitive name.
func FindStopByName(r Route, query string) (Stop, bool) {
	return NewLedger(r.Stops).Find(query)
}
