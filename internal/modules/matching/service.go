// README: Matching service ranks taxis by driving distance to a destination.
package matching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"safetaxi/internal/config"
	"safetaxi/internal/maps"
	"safetaxi/internal/modules/fleet"
	"safetaxi/internal/modules/location"
	"safetaxi/internal/types"
)

type Service struct {
	router maps.Router
	cfg    config.MatchingConfig
}

func NewService(router maps.Router, cfg config.MatchingConfig) *Service {
	return &Service{router: router, cfg: cfg}
}

// Rank asks the router for every taxi's route to destination and returns the
// taxis whose lookup succeeded, shortest driving distance first. Equal
// distances keep input order. A failed lookup only drops that taxi; when every
// lookup fails the error wraps ErrNoRouteAvailable and one lookup failure.
func (s *Service) Rank(ctx context.Context, taxis []fleet.Taxi, destination types.Point) ([]RankedCandidate, error) {
	if len(taxis) == 0 {
		return nil, ErrNoRouteAvailable
	}

	results := make([]*RankedCandidate, len(taxis))
	failures := make([]error, len(taxis))

	var g errgroup.Group
	if s.cfg.Concurrency > 0 {
		g.SetLimit(s.cfg.Concurrency)
	}
	for i, t := range taxis {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			route, err := s.router.Route(ctx, t.Position, destination)
			if err != nil {
				slog.WarnContext(ctx, "route lookup failed, excluding taxi",
					"taxi_id", t.ID, "error", err)
				failures[i] = err
				return nil
			}
			results[i] = &RankedCandidate{
				Taxi: t,
				Metric: RouteMetric{
					TaxiID:    t.ID,
					DistanceM: route.DistanceM,
					Duration:  route.Duration,
					Fare:      route.Fare,
				},
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ranked := make([]RankedCandidate, 0, len(results))
	for _, r := range results {
		if r != nil {
			ranked = append(ranked, *r)
		}
	}
	if len(ranked) == 0 {
		if cause := lookupCause(failures); cause != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoRouteAvailable, cause)
		}
		return nil, ErrNoRouteAvailable
	}

	location.SortByDistance(ranked, func(c RankedCandidate) float64 { return float64(c.Metric.DistanceM) })
	return ranked, nil
}

// lookupCause picks the error reported when no lookup succeeded. An outage of
// the routing service outranks per-route failures; otherwise the last failure
// in input order is kept.
func lookupCause(failures []error) error {
	var last error
	for _, err := range failures {
		if err == nil {
			continue
		}
		if errors.Is(err, maps.ErrExternalService) {
			return err
		}
		last = err
	}
	return last
}

// TopK returns the first k candidates.
func TopK(ranked []RankedCandidate, k int) []RankedCandidate {
	if k <= 0 {
		return []RankedCandidate{}
	}
	if k > len(ranked) {
		k = len(ranked)
	}
	return ranked[:k]
}
