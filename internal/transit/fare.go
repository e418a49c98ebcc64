package transit

import (
	"fmt"
	"math"
	"strings"
)

// FareQuote is the fare and distance between two stops of one route.
type FareQuote struct {
	From     Stop
	To       Stop
	Fare     float64
	Distance float64
}

// EstimatedMinutes is a rough travel time for display, two minutes per km.
func (q FareQuote) EstimatedMinutes() int {
	return int(math.Round(q.Distance * 2))
}

// CalculateFare resolves both stop names on the route and returns the
// difference in cumulative fare and distance between them. The boarding
// stop must come strictly before the alighting stop. Deltas are absolute,
// so a route entered with decreasing fares still yields a positive quote.
func CalculateFare(r Route, fromStop, toStop string) (FareQuote, error) {
	if strings.TrimSpace(fromStop) == "" || strings.TrimSpace(toStop) == "" {
		return FareQuote{}, fmt.Errorf("%w: fromStop and toStop are required", ErrMissingParameter)
	}

	ledger := NewLedger(r.Stops)
	from, okFrom := ledger.Find(fromStop)
	to, okTo := ledger.Find(toStop)
	if !okFrom || !okTo {
		return FareQuote{}, ErrInvalidStopName
	}
	if from.Order >= to.Order {
		return FareQuote{}, ErrInvalidOrdering
	}

	return FareQuote{
		From:     from,
		To:       to,
		Fare:     math.Abs(to.FareFromSource - from.FareFromSource),
		Distance: math.Abs(to.DistanceFromSource - from.DistanceFromSource),
	}, nil
}
