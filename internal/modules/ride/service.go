// README: Ride service ties the fleet, the ranker and the fare resolver together.
package ride

import (
	"context"
	"fmt"
	"log/slog"

	"safetaxi/internal/config"
	"safetaxi/internal/modules/fleet"
	"safetaxi/internal/modules/matching"
	"safetaxi/internal/modules/trip"
	"safetaxi/internal/types"
)

type FleetService interface {
	List(ctx context.Context) ([]fleet.Taxi, error)
	Reseed(ctx context.Context, cmd fleet.ReseedCommand) ([]fleet.Taxi, error)
	DefaultCommand(center types.Point) fleet.ReseedCommand
}

type Ranker interface {
	Rank(ctx context.Context, taxis []fleet.Taxi, destination types.Point) ([]matching.RankedCandidate, error)
}

type FareResolver interface {
	ResolveFare(ctx context.Context, address string, pickup types.Point) (trip.Quote, error)
}

type Service struct {
	fleet  FleetService
	ranker Ranker
	trips  FareResolver
	cfg    config.MatchingConfig
}

func NewService(fleet FleetService, ranker Ranker, trips FareResolver, cfg config.MatchingConfig) *Service {
	return &Service{fleet: fleet, ranker: ranker, trips: trips, cfg: cfg}
}

// riderPoint picks the request's rider position or the configured reference point.
func (s *Service) riderPoint(rider *types.Point) (types.Point, error) {
	if rider == nil {
		return s.cfg.Rider, nil
	}
	if !rider.Valid() {
		return types.Point{}, ErrBadRequest
	}
	return *rider, nil
}

// NearestTaxi ranks the current fleet by driving distance to the rider and
// returns the closest taxi.
func (s *Service) NearestTaxi(ctx context.Context, rider *types.Point) (matching.RankedCandidate, error) {
	dest, err := s.riderPoint(rider)
	if err != nil {
		return matching.RankedCandidate{}, err
	}

	taxis, err := s.fleet.List(ctx)
	if err != nil {
		return matching.RankedCandidate{}, fmt.Errorf("list fleet: %w", err)
	}
	if len(taxis) == 0 {
		return matching.RankedCandidate{}, ErrNoFleet
	}

	ranked, err := s.ranker.Rank(ctx, taxis, dest)
	if err != nil {
		return matching.RankedCandidate{}, err
	}
	return ranked[0], nil
}

// CallTaxi reseeds the fleet around the rider, ranks the new taxis and prices
// the trip from the best one to the destination. Any failure fails the call.
func (s *Service) CallTaxi(ctx context.Context, req CallRequest) (CallResult, error) {
	rider, err := s.riderPoint(req.Rider)
	if err != nil {
		return CallResult{}, err
	}

	taxis, err := s.fleet.Reseed(ctx, s.fleet.DefaultCommand(rider))
	if err != nil {
		return CallResult{}, fmt.Errorf("reseed fleet: %w", err)
	}
	if len(taxis) == 0 {
		return CallResult{}, ErrNoFleet
	}

	ranked, err := s.ranker.Rank(ctx, taxis, rider)
	if err != nil {
		return CallResult{}, err
	}
	result := CallResult{Candidates: matching.TopK(ranked, s.cfg.CandidateCount)}

	if req.DestinationAddress != "" {
		quote, err := s.trips.ResolveFare(ctx, req.DestinationAddress, ranked[0].Taxi.Position)
		if err != nil {
			return CallResult{}, err
		}
		result.Quote = &quote
	}

	slog.InfoContext(ctx, "taxi called",
		"candidates", len(result.Candidates), "best_taxi", ranked[0].Taxi.ID,
		"destination", req.DestinationAddress)
	return result, nil
}
