// README: Route metrics and ranked taxi candidates.
package matching

import (
	"errors"
	"time"

	"safetaxi/internal/modules/fleet"
	"safetaxi/internal/types"
)

// ErrNoRouteAvailable means no taxi in the input produced a usable route.
var ErrNoRouteAvailable = errors.New("no route available")

// RouteMetric is the routing service's answer for one taxi.
type RouteMetric struct {
	TaxiID    types.ID      `json:"taxi_id"`
	DistanceM int           `json:"distance_m"`
	Duration  time.Duration `json:"duration"`
	Fare      types.Money   `json:"fare"`
}

type RankedCandidate struct {
	Taxi   fleet.Taxi  `json:"taxi"`
	Metric RouteMetric `json:"metric"`
}
