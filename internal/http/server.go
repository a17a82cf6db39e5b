// README: API gateway; holds the module services the routes delegate to.
package http

import (
	"context"

	"safetaxi/internal/http/handlers"
	"safetaxi/internal/types"
)

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

type ServerDeps struct {
	Fleet   handlers.FleetService
	Ride    handlers.RideService
	Geocode handlers.GeocodeService
	// Center is the default point for reseeds and nearby searches.
	Center types.Point
	Checks map[string]HealthCheck
}

type Server struct {
	taxi    *handlers.TaxiHandler
	ride    *handlers.RideHandler
	geocode *handlers.GeocodeHandler
	checks  map[string]HealthCheck
}

func NewServer(deps ServerDeps) *Server {
	return &Server{
		taxi:    handlers.NewTaxiHandler(deps.Fleet, deps.Center),
		ride:    handlers.NewRideHandler(deps.Ride),
		geocode: handlers.NewGeocodeHandler(deps.Geocode),
		checks:  deps.Checks,
	}
}
