package transit

import (
	"fmt"
	"sort"
	"strings"
)

// SearchQuery is a passenger's free-text route search.
type SearchQuery struct {
	Source      string
	Destination string
	BusType     string // optional
}

// Normalize trims every field.
func (q SearchQuery) Normalize() SearchQuery {
	return SearchQuery{
		Source:      strings.TrimSpace(q.Source),
		Destination: strings.TrimSpace(q.Destination),
		BusType:     strings.TrimSpace(q.BusType),
	}
}

// Validate rejects a query without a source or destination. Neither is
// ever treated as a wildcard.
func (q SearchQuery) Validate() error {
	n := q.Normalize()
	switch {
	case n.Source == "" && n.Destination == "":
		return fmt.Errorf("%w: source and destination are required", ErrMissingParameter)
	case n.Source == "":
		return fmt.Errorf("%w: source is required", ErrMissingParameter)
	case n.Destination == "":
		return fmt.Errorf("%w: destination is required", ErrMissingParameter)
	}
	return nil
}

// Key is a case-folded identity for the query, used for caching.
func (q SearchQuery) Key() string {
	n := q.Normalize()
	return strings.ToLower(n.Source) + "\x00" + strings.ToLower(n.Destination) + "\x00" + n.BusType
}

// Matches applies the availability gate, the text containment test and
// the optional bus type filter.
func (q SearchQuery) Matches(r Route) bool {
	if !IsVisible(r) {
		return false
	}
	n := q.Normalize()
	if n.BusType != "" && string(r.BusType) != n.BusType {
		return false
	}
	return containsFold(r.Source, n.Source) && containsFold(r.Destination, n.Destination)
}

// MatchRoutes returns the routes matching q ordered by route id. No match
// is an empty result, not an error.
func MatchRoutes(routes []Route, q SearchQuery) ([]Route, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	out := make([]Route, 0)
	for _, r := range routes {
		if q.Matches(r) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
