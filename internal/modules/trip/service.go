// README: Trip fare resolver geocodes a destination and prices the ride to it.
package trip

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"safetaxi/internal/maps"
	"safetaxi/internal/types"
)

var (
	ErrInvalidAddress   = errors.New("address could not be resolved")
	ErrRouteUnavailable = errors.New("route unavailable")
)

// Quote is the fare and travel time from a pickup point to a resolved address.
type Quote struct {
	Destination maps.Location `json:"destination"`
	DistanceM   int           `json:"distance_m"`
	Duration    time.Duration `json:"duration"`
	Fare        types.Money   `json:"fare"`
	Toll        types.Money   `json:"toll"`
	Estimated   bool          `json:"fare_estimated"`
}

type Service struct {
	geocoder maps.Geocoder
	router   maps.Router
}

func NewService(geocoder maps.Geocoder, router maps.Router) *Service {
	return &Service{geocoder: geocoder, router: router}
}

// ResolveFare geocodes address, taking the first match, and routes pickup to it.
func (s *Service) ResolveFare(ctx context.Context, address string, pickup types.Point) (Quote, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return Quote{}, ErrInvalidAddress
	}

	locs, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		return Quote{}, fmt.Errorf("geocode destination: %w", err)
	}
	if len(locs) == 0 {
		return Quote{}, ErrInvalidAddress
	}
	dest := locs[0]

	route, err := s.router.Route(ctx, pickup, dest.Point)
	if err != nil {
		if errors.Is(err, maps.ErrRouteFailed) {
			return Quote{}, fmt.Errorf("%w: %v", ErrRouteUnavailable, err)
		}
		return Quote{}, fmt.Errorf("route to destination: %w", err)
	}

	return Quote{
		Destination: dest,
		DistanceM:   route.DistanceM,
		Duration:    route.Duration,
		Fare:        route.Fare,
		Toll:        route.Toll,
		Estimated:   route.FareEstimated,
	}, nil
}

// Coordinate geocodes address and returns the first match.
func (s *Service) Coordinate(ctx context.Context, address string) (maps.Location, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return maps.Location{}, ErrInvalidAddress
	}
	locs, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		return maps.Location{}, fmt.Errorf("geocode: %w", err)
	}
	if len(locs) == 0 {
		return maps.Location{}, ErrInvalidAddress
	}
	return locs[0], nil
}

// Address reverse geocodes p. Zero matches is ErrInvalidAddress.
func (s *Service) Address(ctx context.Context, p types.Point) (maps.Location, error) {
	if !p.Valid() {
		return maps.Location{}, ErrInvalidAddress
	}
	locs, err := s.geocoder.ReverseGeocode(ctx, p)
	if err != nil {
		return maps.Location{}, fmt.Errorf("reverse geocode: %w", err)
	}
	if len(locs) == 0 {
		return maps.Location{}, ErrInvalidAddress
	}
	return locs[0], nil
}
